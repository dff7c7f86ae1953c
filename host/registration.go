// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package host

import (
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// a channel registration is stored under the channel id and account
// identifier together; the value keeps the origin proxy address and
// the acknowledgment the counterparty will receive for this pair

func registrationKey(channelID string, id accountid.AccountID) []byte {
	key := util.ToVarint64(uint64(len(channelID)))
	key = append(key, channelID...)
	return append(key, id.Pack()...)
}

// value: Varint64(address length) address ack
func packRegistration(proxyAddress []byte, ack packet.Ack) []byte {
	buffer := util.ToVarint64(uint64(len(proxyAddress)))
	buffer = append(buffer, proxyAddress...)
	return append(buffer, ack.Pack()...)
}

func unpackRegistration(buffer []byte) ([]byte, packet.Ack, error) {
	length, offset := util.FromVarint64(buffer)
	if 0 == offset || uint64(len(buffer[offset:])) < length {
		return nil, packet.Ack{}, fault.ErrCannotDecodePacket
	}
	proxyAddress := buffer[offset : offset+int(length)]
	ack, err := packet.UnpackAck(buffer[offset+int(length):])
	if nil != err {
		return nil, packet.Ack{}, err
	}
	return proxyAddress, ack, nil
}

// Registration - look up a stored channel registration
//
// returns the origin proxy address and the current acknowledgment
// content for the pair
func Registration(trx storage.Transaction, channelID string, id accountid.AccountID) ([]byte, packet.Ack, error) {
	stored := trx.Get(storage.Pool.ChannelRegistrations, registrationKey(channelID, id))
	if nil == stored {
		return nil, packet.Ack{}, fault.ErrRemoteAccountNotFound
	}
	return unpackRegistration(stored)
}
