// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package governance

import (
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/util"
)

// Packed - a binary encoded governance value or record
type Packed []byte

// field length limits for unpacking
const (
	maxFieldLength = 1024
)

// append a length prefixed string
func appendString(buffer Packed, s string) Packed {
	length := util.ToVarint64(uint64(len(s)))
	buffer = append(buffer, length...)
	return append(buffer, s...)
}

// append a length prefixed identity
func appendIdentity(buffer Packed, id *identity.Identity) Packed {
	data := id.Bytes()
	length := util.ToVarint64(uint64(len(data)))
	buffer = append(buffer, length...)
	return append(buffer, data...)
}

// Pack - Monarchy: Varint64(tag) owner
func (m Monarchy) Pack() []byte {
	buffer := Packed(util.ToVarint64(uint64(MonarchyTag)))
	return appendIdentity(buffer, m.Owner)
}

// Pack - SubAccount: Varint64(tag) parent-id
func (s SubAccount) Pack() []byte {
	buffer := Packed(util.ToVarint64(uint64(SubAccountTag)))
	return append(buffer, s.Parent.Pack()...)
}

// Pack - NFT: Varint64(tag) collection token-id
func (n NFT) Pack() []byte {
	buffer := Packed(util.ToVarint64(uint64(NFTTag)))
	buffer = appendIdentity(buffer, n.Collection)
	return appendString(buffer, n.TokenID)
}

// Pack - External: Varint64(tag) address kind
func (e External) Pack() []byte {
	buffer := Packed(util.ToVarint64(uint64(ExternalTag)))
	buffer = appendIdentity(buffer, e.Address)
	return appendString(buffer, e.Kind)
}

// Pack - Renounced: Varint64(tag)
func (r Renounced) Pack() []byte {
	return util.ToVarint64(uint64(RenouncedTag))
}

// unpack a length prefixed identity
func unpackIdentity(buffer Packed) (*identity.Identity, int, error) {
	length, offset := util.ClippedVarint64(buffer, 1, maxFieldLength)
	if 0 == offset || len(buffer[offset:]) < length {
		return nil, 0, fault.ErrCannotDecodePacket
	}
	id, err := identity.IdentityFromBytes(buffer[offset : offset+length])
	if nil != err {
		return nil, 0, err
	}
	return id, offset + length, nil
}

// unpack a length prefixed string, empty string allowed
func unpackString(buffer Packed) (string, int, error) {
	length, offset := util.FromVarint64(buffer)
	if 0 == offset || length > maxFieldLength || uint64(len(buffer[offset:])) < length {
		return "", 0, fault.ErrCannotDecodePacket
	}
	return string(buffer[offset : offset+int(length)]), offset + int(length), nil
}

// UnpackValue - turn a byte slice back into a governance value
//
// also returns the number of bytes consumed
func UnpackValue(buffer Packed) (Value, int, error) {

	tag, n := util.ClippedVarint64(buffer, 1, int(invalidTag)-1)
	if 0 == n {
		return nil, 0, fault.ErrCannotDecodePacket
	}

	switch Tag(tag) {

	case MonarchyTag:
		owner, length, err := unpackIdentity(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		return Monarchy{Owner: owner}, n + length, nil

	case SubAccountTag:
		parent, length, err := accountid.Unpack(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		return SubAccount{Parent: parent}, n + length, nil

	case NFTTag:
		collection, length, err := unpackIdentity(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		tokenID, length, err := unpackString(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		return NFT{Collection: collection, TokenID: tokenID}, n + length, nil

	case ExternalTag:
		address, length, err := unpackIdentity(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		n += length
		kind, length, err := unpackString(buffer[n:])
		if nil != err {
			return nil, 0, err
		}
		return External{Address: address, Kind: kind}, n + length, nil

	case RenouncedTag:
		return Renounced{}, n, nil

	default:
		return nil, 0, fault.ErrCannotDecodePacket
	}
}

// PackRecord - binary form of a full ownership record
//
// current 0x00
// or: current 0x01 pending Varint64(expiry)
func (record *Record) Pack() []byte {
	buffer := Packed(record.Current.Pack())
	if nil == record.Pending {
		return append(buffer, 0x00)
	}
	buffer = append(buffer, 0x01)
	buffer = append(buffer, record.Pending.Pack()...)
	return append(buffer, util.ToVarint64(record.PendingExpiry)...)
}

// UnpackRecord - decode a stored ownership record
func UnpackRecord(buffer Packed) (*Record, error) {

	current, n, err := UnpackValue(buffer)
	if nil != err {
		return nil, err
	}

	if len(buffer[n:]) < 1 {
		return nil, fault.ErrCannotDecodePacket
	}
	flag := buffer[n]
	n += 1

	record := &Record{
		Current: current,
	}

	switch flag {
	case 0x00:
		return record, nil

	case 0x01:
		pending, length, err := UnpackValue(buffer[n:])
		if nil != err {
			return nil, err
		}
		n += length

		expiry, expiryLength := util.FromVarint64(buffer[n:])
		if 0 == expiryLength {
			return nil, fault.ErrCannotDecodePacket
		}

		record.Pending = pending
		record.PendingExpiry = expiry
		return record, nil

	default:
		return nil, fault.ErrCannotDecodePacket
	}
}
