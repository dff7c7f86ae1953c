// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package channel - per-channel handshake state machine
//
// state moves Unopened -> Open and never further: closing is refused
// because an account projection must stay addressable once it exists
// on a chain; the Closed state exists only so a decoded record with
// that value is representable
package channel

import (
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// State - the lifecycle position of one channel
type State byte

// channel states
const (
	Unopened = State(0x00)
	Open     = State(0x01)
	Closed   = State(0x02)
)

// Channel - one ordered transport between this chain and a counterparty
type Channel struct {
	ID    string
	State State
	Chain chainname.Name // set by the WhoAmI handshake, empty before
}

// OpenChannel - guarded Unopened -> Open transition
//
// ordering and version are validated together; the negotiated version
// is always the protocol's own, never the counterparty proposal
func OpenChannel(trx storage.Transaction, id string, order string, version string) (string, error) {

	if existing := get(trx, id); nil != existing && Unopened != existing.State {
		return "", fault.ErrChannelAlreadyOpen
	}

	negotiated, err := packet.Negotiate(order, version)
	if nil != err {
		return "", err
	}

	store(trx, &Channel{
		ID:    id,
		State: Open,
	})
	return negotiated, nil
}

// CloseChannel - always refused for this protocol
func CloseChannel(trx storage.Transaction, id string) error {
	return fault.ErrChannelCloseNotSupported
}

// Bind - record which chain is on the far end of an open channel
func Bind(trx storage.Transaction, id string, chain chainname.Name) error {
	ch := get(trx, id)
	if nil == ch {
		return fault.ErrChannelNotFound
	}
	if Open != ch.State {
		return fault.ErrChannelNotOpen
	}
	if err := chain.Valid(); nil != err {
		return err
	}
	ch.Chain = chain
	store(trx, ch)
	return nil
}

// Get - load a channel record
func Get(trx storage.Transaction, id string) (*Channel, error) {
	ch := get(trx, id)
	if nil == ch {
		return nil, fault.ErrChannelNotFound
	}
	return ch, nil
}

// IsOpen - true if the channel has completed its handshake
func IsOpen(trx storage.Transaction, id string) bool {
	ch := get(trx, id)
	return nil != ch && Open == ch.State
}

func get(trx storage.Transaction, id string) *Channel {
	packed := trx.Get(storage.Pool.Channels, []byte(id))
	if nil == packed {
		return nil
	}
	ch, err := unpack(id, packed)
	if nil != err {
		return nil
	}
	return ch
}

func store(trx storage.Transaction, ch *Channel) {
	trx.Put(storage.Pool.Channels, []byte(ch.ID), ch.pack())
}

// state byte then length prefixed chain name
func (ch *Channel) pack() []byte {
	buffer := []byte{byte(ch.State)}
	buffer = append(buffer, util.ToVarint64(uint64(len(ch.Chain)))...)
	return append(buffer, ch.Chain...)
}

func unpack(id string, buffer []byte) (*Channel, error) {
	if len(buffer) < 2 {
		return nil, fault.ErrCannotDecodePacket
	}
	state := State(buffer[0])
	length, offset := util.FromVarint64(buffer[1:])
	if 0 == offset || uint64(len(buffer[1+offset:])) < length {
		return nil, fault.ErrCannotDecodePacket
	}
	chain := chainname.Name(buffer[1+offset : 1+offset+int(length)])
	if 0 != length {
		if err := chain.Valid(); nil != err {
			return nil, err
		}
	}
	return &Channel{
		ID:    id,
		State: state,
		Chain: chain,
	}, nil
}
