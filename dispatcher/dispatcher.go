// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dispatcher - delivers queued outbound packets
//
// drains the dispatch queue into one transport client per configured
// channel and routes each acknowledgment back through the client
// protocol; a send failure is reported as a timeout and the pending
// call stays operator visible
package dispatcher

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/sovereign-net/accountd/background"
	"github.com/sovereign-net/accountd/client"
	"github.com/sovereign-net/accountd/counter"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/messagebus"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/transport"
	"github.com/sovereign-net/accountd/util"
)

// retry interval while the shared transaction is held elsewhere
const transactionRetryDelay = 10 * time.Millisecond

// Connection - one counterparty channel endpoint
type Connection struct {
	ChannelID string
	Address   string
}

// one configured counterparty, dialled on first send
type endpoint struct {
	address string
	timeout time.Duration
	conn    *transport.Client
}

// the queue consumer
type sender struct {
	log       *logger.L
	endpoints map[string]*endpoint
}

// globals for background process
type dispatcherData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	snd sender

	sentCounter counter.Counter

	// for background processes
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData dispatcherData

// Initialise - start the queue consumer
//
// connections are dialled lazily on first send so a counterparty that
// is still starting up does not block the daemon
func Initialise(connections []Connection, timeout time.Duration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}
	if 0 == len(connections) {
		return fault.ErrNotInitialised
	}

	globalData.log = logger.New("dispatcher")
	globalData.log.Info("starting…")

	globalData.snd.log = logger.New("sender")
	globalData.snd.endpoints = make(map[string]*endpoint)
	for _, connection := range connections {
		if "" == connection.ChannelID || "" == connection.Address {
			return fault.ErrChannelNotFound
		}
		globalData.snd.endpoints[connection.ChannelID] = &endpoint{
			address: connection.Address,
			timeout: timeout,
		}
	}

	globalData.initialised = true

	processes := background.Processes{
		globalData.snd.run,
	}
	globalData.background = background.Start(processes, globalData.log)
	return nil
}

// Finalise - stop the queue consumer and drop all connections
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	background.Stop(globalData.background)

	for _, e := range globalData.snd.endpoints {
		if nil != e.conn {
			e.conn.Close()
			e.conn = nil
		}
	}

	globalData.log.Info("finalised")
	globalData.initialised = false
	return nil
}

// SentCount - packets delivered and acknowledged so far
func SentCount() uint64 {
	return globalData.sentCounter.Uint64()
}

// drain the dispatch queue until shutdown
func (snd *sender) run(args interface{}, shutdown <-chan bool, done chan<- bool) {
	defer close(done)

	log := snd.log
	log.Info("starting…")

	queue := messagebus.Bus.Dispatch.Chan()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case message := <-queue:
			snd.process(message, shutdown)
		}
	}
	log.Info("stopped")
}

// one queued packet: send, then route the acknowledgment
func (snd *sender) process(message messagebus.Message, shutdown <-chan bool) {

	log := snd.log

	if "packet" != message.Command {
		log.Errorf("ignored message: %q", message.Command)
		return
	}
	if 3 != len(message.Parameters) {
		log.Errorf("invalid parameter count: %d", len(message.Parameters))
		return
	}

	correlation, count := util.FromVarint64(message.Parameters[0])
	if 0 == count {
		log.Error("invalid correlation")
		return
	}
	channelID := string(message.Parameters[1])
	payload := message.Parameters[2]

	e, ok := snd.endpoints[channelID]
	if !ok {
		log.Errorf("no connection for channel: %q", channelID)
		client.ReceiveTimeout(correlation)
		return
	}

	if nil == e.conn {
		conn, err := transport.NewClient(e.address, e.timeout)
		if nil != err {
			log.Errorf("connect: %q error: %s", e.address, err)
			client.ReceiveTimeout(correlation)
			return
		}
		e.conn = conn
	}

	data, err := e.conn.Send(channelID, payload)
	if nil != err {
		log.Warnf("send on channel: %q error: %s", channelID, err)
		client.ReceiveTimeout(correlation)

		// a REQ socket is poisoned after a lost reply
		e.conn.Close()
		e.conn = nil
		return
	}

	ack, err := packet.UnpackAck(data)
	if nil != err {
		log.Errorf("ack unpack error: %s", err)
		client.ReceiveTimeout(correlation)
		return
	}

	trx := acquireTransaction(shutdown)
	if nil == trx {
		return // shutting down
	}
	if _, err := client.ReceiveAck(trx, correlation, ack); nil != err {
		log.Errorf("correlation: %d ack error: %s", correlation, err)
		trx.Abort()
		return
	}
	if err := trx.Commit(); nil != err {
		trx.Abort()
		log.Criticalf("correlation: %d commit error: %s", correlation, err)
		return
	}

	globalData.sentCounter.Increment()
	log.Debugf("correlation: %d acknowledged ok: %t", correlation, ack.Ok)
}

// the shared transaction is exclusive; retry until it is free or the
// process is shutting down
func acquireTransaction(shutdown <-chan bool) storage.Transaction {
	for {
		trx, err := storage.NewDBTransaction()
		if nil == err {
			return trx
		}
		if !fault.IsErrProcess(err) {
			return nil
		}
		select {
		case <-shutdown:
			return nil
		case <-time.After(transactionRetryDelay):
		}
	}
}
