// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	zmq "github.com/pebbe/zmq4"
)

// NewSignalPair - create an in-process signalling pair
//
// push is used to signal the shutdown, pull is polled by the loop that
// must stop
func NewSignalPair(signal string) (push *zmq.Socket, pull *zmq.Socket, err error) {

	// PAIR server, half of signalling channel
	pull, err = zmq.NewSocket(zmq.PAIR)
	if nil != err {
		return nil, nil, err
	}
	pull.SetLinger(0)
	err = pull.Bind(signal)
	if nil != err {
		pull.Close()
		return nil, nil, err
	}

	// PAIR client, half of signalling channel
	push, err = zmq.NewSocket(zmq.PAIR)
	if nil != err {
		pull.Close()
		return nil, nil, err
	}
	push.SetLinger(0)
	err = push.Connect(signal)
	if nil != err {
		pull.Close()
		push.Close()
		return nil, nil, err
	}

	return push, pull, nil
}
