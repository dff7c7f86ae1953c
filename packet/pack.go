// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package packet

import (
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/util"
)

// limits applied while unpacking
const (
	maxFieldLength   = 2048
	maxBatchRequests = 64
)

// append a length prefixed byte string
func appendBytes(buffer []byte, data []byte) []byte {
	buffer = append(buffer, util.ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

// Pack - Register: Varint64(tag) account proxy-address name description link
func (r *Register) Pack() []byte {
	buffer := util.ToVarint64(uint64(RegisterTag))
	buffer = append(buffer, r.Account.Pack()...)
	buffer = appendBytes(buffer, r.ProxyAddress.Bytes())
	buffer = appendBytes(buffer, []byte(r.Name))
	buffer = appendBytes(buffer, []byte(r.Description))
	return appendBytes(buffer, []byte(r.Link))
}

// Pack - Query: Varint64(tag) Varint64(count) {request}…
func (q *Query) Pack() []byte {
	buffer := util.ToVarint64(uint64(QueryTag))
	buffer = append(buffer, util.ToVarint64(uint64(len(q.Requests)))...)
	for _, request := range q.Requests {
		buffer = appendBytes(buffer, request)
	}
	return buffer
}

// Pack - WhoAmI: Varint64(tag) chain client
func (w *WhoAmI) Pack() []byte {
	buffer := util.ToVarint64(uint64(WhoAmITag))
	buffer = appendBytes(buffer, []byte(w.Chain))
	return appendBytes(buffer, w.Client.Bytes())
}

// Pack - Execute: Varint64(tag) account Varint64(count) {action}…
func (e *Execute) Pack() []byte {
	buffer := util.ToVarint64(uint64(ExecuteTag))
	buffer = append(buffer, e.Account.Pack()...)
	buffer = append(buffer, util.ToVarint64(uint64(len(e.Actions)))...)
	for _, action := range e.Actions {
		buffer = appendBytes(buffer, action)
	}
	return buffer
}

// Pack - Deposit: Varint64(tag) account Varint64(amount)
func (d *Deposit) Pack() []byte {
	buffer := util.ToVarint64(uint64(DepositTag))
	buffer = append(buffer, d.Account.Pack()...)
	return append(buffer, util.ToVarint64(d.Amount)...)
}

// unpack a length prefixed byte string
func unpackBytes(buffer []byte) ([]byte, int, error) {
	length, offset := util.FromVarint64(buffer)
	if 0 == offset || length > maxFieldLength || uint64(len(buffer[offset:])) < length {
		return nil, 0, fault.ErrCannotDecodePacket
	}
	return buffer[offset : offset+int(length)], offset + int(length), nil
}

// unpack a length prefixed identity
func unpackIdentity(buffer []byte) (*identity.Identity, int, error) {
	data, n, err := unpackBytes(buffer)
	if nil != err {
		return nil, 0, err
	}
	id, err := identity.IdentityFromBytes(data)
	if nil != err {
		return nil, 0, err
	}
	return id, n, nil
}

// unpack a counted list of length prefixed byte strings
func unpackBytesList(buffer []byte) ([][]byte, int, error) {
	count, n := util.FromVarint64(buffer)
	if 0 == n || count > maxBatchRequests {
		return nil, 0, fault.ErrCannotDecodePacket
	}
	list := make([][]byte, 0, count)
	for i := uint64(0); i < count; i += 1 {
		item, length, err := unpackBytes(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		list = append(list, item)
		n += length
	}
	return list, n, nil
}

// Unpack - decode one packet from a buffer
//
// also returns the number of bytes consumed
func Unpack(buffer []byte) (Packet, int, error) {

	tag, n := util.ClippedVarint64(buffer, 1, int(invalidTag)-1)
	if 0 == n {
		return nil, 0, fault.ErrCannotDecodePacket
	}

	switch Tag(tag) {

	case RegisterTag:
		account, length, err := accountid.Unpack(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		proxy, length, err := unpackIdentity(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		name, length, err := unpackBytes(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		description, length, err := unpackBytes(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		link, length, err := unpackBytes(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		return &Register{
			Account:      account,
			ProxyAddress: proxy,
			Name:         string(name),
			Description:  string(description),
			Link:         string(link),
		}, n, nil

	case QueryTag:
		requests, length, err := unpackBytesList(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		return &Query{Requests: requests}, n + length, nil

	case WhoAmITag:
		chain, length, err := unpackBytes(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		name := chainname.Name(chain)
		if err := name.Valid(); nil != err {
			return nil, 0, err
		}
		client, length, err := unpackIdentity(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		return &WhoAmI{Chain: name, Client: client}, n + length, nil

	case ExecuteTag:
		account, length, err := accountid.Unpack(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		actions, length, err := unpackBytesList(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		return &Execute{Account: account, Actions: actions}, n + length, nil

	case DepositTag:
		account, length, err := accountid.Unpack(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		amount, amountLength := util.FromVarint64(buffer[n:])
		if 0 == amountLength {
			return nil, 0, fault.ErrCannotDecodePacket
		}
		return &Deposit{Account: account, Amount: amount}, n + amountLength, nil

	default:
		return nil, 0, fault.ErrCannotDecodePacket
	}
}
