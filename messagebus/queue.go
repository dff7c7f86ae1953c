// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

// Message - the record for messages on the bus
type Message struct {
	Command    string   // the message type
	Parameters [][]byte // all the binary data
}

// Queue - a named queue
type Queue struct {
	c chan Message
}

// size of each queue
const (
	dispatchSize  = 1000
	effectSize    = 100
	telemetrySize = 100
	testSize      = 50
)

// busses - all available queues
type busses struct {
	Dispatch  *Queue // outbound packets awaiting the transport
	Effect    *Queue // deferred side effects, e.g. proxy account creation
	Telemetry *Queue // operator visible conditions, never retried
	TestQueue *Queue // for testing use
}

// Bus - the exported message bus
var Bus busses

func init() {
	Bus.Dispatch = &Queue{c: make(chan Message, dispatchSize)}
	Bus.Effect = &Queue{c: make(chan Message, effectSize)}
	Bus.Telemetry = &Queue{c: make(chan Message, telemetrySize)}
	Bus.TestQueue = &Queue{c: make(chan Message, testSize)}
}

// Send - place a message on a queue
func (queue *Queue) Send(command string, parameters ...[]byte) {
	queue.c <- Message{
		Command:    command,
		Parameters: parameters,
	}
}

// Chan - channel to read from a queue
func (queue *Queue) Chan() <-chan Message {
	return queue.c
}

// Drop - drain one message if present, for testing
func (queue *Queue) Drop() (Message, bool) {
	select {
	case message := <-queue.c:
		return message, true
	default:
		return Message{}, false
	}
}
