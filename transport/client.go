// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"
)

// Client - the requesting side of a channel
//
// one REQ socket per counterparty; Send blocks until the matching
// acknowledgment or the receive timeout
type Client struct {
	sync.Mutex

	log     *logger.L
	address string
	socket  *zmq.Socket
	timeout time.Duration
}

// NewClient - connect to a counterparty listener
func NewClient(address string, timeout time.Duration) (*Client, error) {

	socket, err := zmq.NewSocket(zmq.REQ)
	if nil != err {
		return nil, err
	}

	socket.SetLinger(0)
	socket.SetSndtimeo(timeout)
	socket.SetRcvtimeo(timeout)

	err = socket.Connect(address)
	if nil != err {
		socket.Close()
		return nil, err
	}

	client := &Client{
		log:     logger.New("transport-client"),
		address: address,
		socket:  socket,
		timeout: timeout,
	}
	client.log.Infof("connected to: %q", address)
	return client, nil
}

// Send - deliver one packet frame and wait for its acknowledgment
//
// a receive timeout surfaces as an error; the caller reports it as
// telemetry, the protocol itself never retries
func (client *Client) Send(channelID string, payload []byte) ([]byte, error) {
	client.Lock()
	defer client.Unlock()

	_, err := client.socket.SendMessage(channelID, payload)
	if nil != err {
		return nil, err
	}

	data, err := client.socket.RecvMessageBytes(0)
	if nil != err {
		return nil, err
	}
	if 0 == len(data) {
		return nil, nil
	}
	return data[0], nil
}

// Close - disconnect from the counterparty
func (client *Client) Close() {
	client.Lock()
	defer client.Unlock()

	if nil != client.socket {
		client.socket.Close()
		client.socket = nil
	}
}
