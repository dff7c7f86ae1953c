// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package packet

import (
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/util"
)

// acknowledgment flag byte
const (
	ackErr = byte(0x00)
	ackOk  = byte(0x01)
)

// Ack - result envelope for one packet
type Ack struct {
	Ok      bool
	Payload []byte // only when Ok
	Message string // only when not Ok
}

// OkAck - success carrying a payload
func OkAck(payload []byte) Ack {
	return Ack{
		Ok:      true,
		Payload: payload,
	}
}

// ErrAck - failure carrying a message
func ErrAck(message string) Ack {
	return Ack{
		Ok:      false,
		Message: message,
	}
}

// Pack - 0x01 payload or 0x00 message, content length prefixed
func (ack Ack) Pack() []byte {
	if ack.Ok {
		return appendBytes([]byte{ackOk}, ack.Payload)
	}
	return appendBytes([]byte{ackErr}, []byte(ack.Message))
}

// UnpackAck - decode an acknowledgment envelope
func UnpackAck(buffer []byte) (Ack, error) {
	if len(buffer) < 1 {
		return Ack{}, fault.ErrCannotDecodePacket
	}
	content, _, err := unpackBytes(buffer[1:])
	if nil != err {
		return Ack{}, err
	}
	switch buffer[0] {
	case ackOk:
		return OkAck(content), nil
	case ackErr:
		return ErrAck(string(content)), nil
	default:
		return Ack{}, fault.ErrCannotDecodePacket
	}
}

// QueryResult - outcome of one request inside a query batch
type QueryResult struct {
	Ok      bool
	Data    []byte // only when Ok
	Message string // only when not Ok
}

// PackQueryResults - Varint64(count) {flag content}…
func PackQueryResults(results []QueryResult) []byte {
	buffer := util.ToVarint64(uint64(len(results)))
	for _, result := range results {
		if result.Ok {
			buffer = append(buffer, ackOk)
			buffer = appendBytes(buffer, result.Data)
		} else {
			buffer = append(buffer, ackErr)
			buffer = appendBytes(buffer, []byte(result.Message))
		}
	}
	return buffer
}

// UnpackQueryResults - decode a batch of per-item results
func UnpackQueryResults(buffer []byte) ([]QueryResult, error) {
	count, n := util.FromVarint64(buffer)
	if 0 == n || count > maxBatchRequests {
		return nil, fault.ErrCannotDecodePacket
	}
	results := make([]QueryResult, 0, count)
	for i := uint64(0); i < count; i += 1 {
		if len(buffer[n:]) < 1 {
			return nil, fault.ErrCannotDecodePacket
		}
		flag := buffer[n]
		n += 1
		content, length, err := unpackBytes(buffer[n:])
		if nil != err {
			return nil, err
		}
		n += length
		switch flag {
		case ackOk:
			results = append(results, QueryResult{Ok: true, Data: content})
		case ackErr:
			results = append(results, QueryResult{Ok: false, Message: string(content)})
		default:
			return nil, fault.ErrCannotDecodePacket
		}
	}
	return results, nil
}
