// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transport - the ordered channel between two chain daemons
//
// a REQ/REP socket pair carries multipart frames of the form
// [channel id, payload]; every request is answered with exactly one
// packed acknowledgment so ordering and pairing come from the socket
// semantics themselves
package transport

import (
	"sync"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/sovereign-net/accountd/background"
	"github.com/sovereign-net/accountd/counter"
	"github.com/sovereign-net/accountd/fault"
)

const (
	listenerSignal = "inproc://accountd-listener-signal"
)

// Handler - produce the packed acknowledgment for one inbound frame
type Handler func(channelID string, payload []byte) []byte

// the listening side of a channel
type listener struct {
	log     *logger.L
	push    *zmq.Socket // signal send
	pull    *zmq.Socket // signal receive
	socket  *zmq.Socket // REP traffic
	handler Handler
}

// globals for background process
type transportData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	lstn listener

	requestCounter counter.Counter

	// for background processes
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData transportData

// Initialise - bind the listening socket and start the serve loop
func Initialise(listen string, handler Handler) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}
	if nil == handler {
		return fault.ErrNotInitialised
	}

	globalData.log = logger.New("transport")
	globalData.log.Info("starting…")

	if err := globalData.lstn.initialise(listen, handler); nil != err {
		return err
	}

	globalData.initialised = true

	processes := background.Processes{
		globalData.lstn.run,
	}
	globalData.background = background.Start(processes, globalData.log)
	return nil
}

// Finalise - stop the serve loop and close the socket
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	background.Stop(globalData.background)

	globalData.log.Info("finalised")
	globalData.initialised = false
	return nil
}

// RequestCount - frames served so far
func RequestCount() uint64 {
	return globalData.requestCounter.Uint64()
}

func (lstn *listener) initialise(listen string, handler Handler) error {

	log := logger.New("listener")
	lstn.log = log
	lstn.handler = handler

	// signalling channel
	push, pull, err := NewSignalPair(listenerSignal)
	if nil != err {
		return err
	}
	lstn.push = push
	lstn.pull = pull

	socket, err := zmq.NewSocket(zmq.REP)
	if nil != err {
		return err
	}
	socket.SetLinger(0)
	err = socket.Bind(listen)
	if nil != err {
		socket.Close()
		return err
	}
	lstn.socket = socket

	log.Infof("listening on: %q", listen)
	return nil
}

// wait for incoming requests, process them and reply
func (lstn *listener) run(args interface{}, shutdown <-chan bool, done chan<- bool) {

	log := lstn.log
	log.Info("starting…")

	go func() {
		defer close(done)

		poller := zmq.NewPoller()
		poller.Add(lstn.socket, zmq.POLLIN)
		poller.Add(lstn.pull, zmq.POLLIN)
	loop:
		for {
			sockets, _ := poller.Poll(-1)
			for _, socket := range sockets {
				switch s := socket.Socket; s {
				case lstn.socket:
					lstn.process()
				case lstn.pull:
					s.RecvMessageBytes(0)
					break loop
				}
			}
		}
		log.Info("shutting down")
		lstn.pull.Close()
		lstn.socket.Close()
		log.Info("stopped")
	}()

	// wait for shutdown
	<-shutdown
	lstn.push.SendMessage("stop")
	lstn.push.Close()
}

// receive one frame and return its acknowledgment
func (lstn *listener) process() {

	log := lstn.log

	data, err := lstn.socket.RecvMessageBytes(0)
	if nil != err {
		log.Errorf("receive error: %v", err)
		return
	}

	if 2 != len(data) {
		log.Errorf("invalid frame count: %d", len(data))
		lstn.socket.SendBytes([]byte{}, 0)
		return
	}

	globalData.requestCounter.Increment()

	channelID := string(data[0])
	ack := lstn.handler(channelID, data[1])

	_, err = lstn.socket.SendBytes(ack, 0)
	if nil != err {
		log.Errorf("send error: %v", err)
	}
}
