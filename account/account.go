// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - the programmable on-chain identity
//
// an account composes an ownership record, display metadata, a
// whitelist of installed modules and a sub-account index; all
// operations run inside a single storage transaction so a later
// failure reverts every earlier write of the same call
package account

import (
	"encoding/binary"

	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/governance"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// DefaultMaxNesting - sub-account resolution depth unless the
// configuration overrides it
const DefaultMaxNesting = 2

// metadata field limits
const (
	minNameLength        = 1
	maxNameLength        = 64
	maxDescriptionLength = 256
	maxLinkLength        = 128
)

// Metadata - display information carried by every account
type Metadata struct {
	Name        string // required
	Description string // optional
	Link        string // optional
}

// Verify - check the metadata field limits
func (meta Metadata) Verify() error {
	if len(meta.Name) < minNameLength {
		return fault.ErrNameTooShort
	}
	if len(meta.Name) > maxNameLength {
		return fault.ErrNameTooLong
	}
	if len(meta.Description) > maxDescriptionLength {
		return fault.ErrDescriptionTooLong
	}
	if len(meta.Link) > maxLinkLength {
		return fault.ErrLinkTooLong
	}
	return nil
}

// Pack - binary form: three length prefixed strings
func (meta Metadata) Pack() []byte {
	buffer := appendString(nil, meta.Name)
	buffer = appendString(buffer, meta.Description)
	return appendString(buffer, meta.Link)
}

// UnpackMetadata - decode stored metadata
func UnpackMetadata(buffer []byte) (Metadata, error) {
	name, n, err := unpackString(buffer)
	if nil != err {
		return Metadata{}, err
	}
	description, length, err := unpackString(buffer[n:])
	if nil != err {
		return Metadata{}, err
	}
	n += length
	link, _, err := unpackString(buffer[n:])
	if nil != err {
		return Metadata{}, err
	}
	return Metadata{
		Name:        name,
		Description: description,
		Link:        link,
	}, nil
}

// append a length prefixed string
func appendString(buffer []byte, s string) []byte {
	buffer = append(buffer, util.ToVarint64(uint64(len(s)))...)
	return append(buffer, s...)
}

// unpack a length prefixed string, empty string allowed
func unpackString(buffer []byte) (string, int, error) {
	length, offset := util.FromVarint64(buffer)
	if 0 == offset || length > maxDescriptionLength || uint64(len(buffer[offset:])) < length {
		return "", 0, fault.ErrCannotDecodePacket
	}
	return string(buffer[offset : offset+int(length)]), offset + int(length), nil
}

// NFTQuerier - lookup of the current holder of an NFT
//
// token ownership lives in an external collection contract, only the
// read surface is needed here
type NFTQuerier interface {
	NFTOwner(collection *identity.Identity, tokenID string) (*identity.Identity, error)
}

// storeQuerier - governance resolution backed by the storage pools
type storeQuerier struct {
	trx storage.Transaction
	nft NFTQuerier
}

// StoreQuerier - build a governance querier over a transaction
func StoreQuerier(trx storage.Transaction, nft NFTQuerier) governance.Querier {
	return storeQuerier{
		trx: trx,
		nft: nft,
	}
}

func (q storeQuerier) OwnershipOf(id accountid.AccountID) (*governance.Record, error) {
	packed := q.trx.Get(storage.Pool.Ownership, id.Pack())
	if nil == packed {
		return nil, fault.ErrAccountNotFound
	}
	return governance.UnpackRecord(packed)
}

func (q storeQuerier) NFTOwner(collection *identity.Identity, tokenID string) (*identity.Identity, error) {
	if nil == q.nft {
		return nil, fault.ErrInvalidGovernance
	}
	return q.nft.NFTOwner(collection, tokenID)
}

// Ownership - load the ownership record of an account
func Ownership(trx storage.Transaction, id accountid.AccountID) (*governance.Record, error) {
	packed := trx.Get(storage.Pool.Ownership, id.Pack())
	if nil == packed {
		return nil, fault.ErrAccountNotFound
	}
	return governance.UnpackRecord(packed)
}

// Meta - load the display metadata of an account
func Meta(trx storage.Transaction, id accountid.AccountID) (Metadata, error) {
	packed := trx.Get(storage.Pool.Accounts, id.Pack())
	if nil == packed {
		return Metadata{}, fault.ErrAccountNotFound
	}
	return UnpackMetadata(packed)
}

// Exists - true if the account has been created
func Exists(trx storage.Transaction, id accountid.AccountID) bool {
	return trx.Has(storage.Pool.Accounts, id.Pack())
}

// the next sequence number, incremented in the same transaction
var sequenceKey = []byte("sequence")

func nextSequence(trx storage.Transaction) uint32 {
	sequence := uint32(1)
	packed := trx.Get(storage.Pool.Control, sequenceKey)
	if 4 == len(packed) {
		sequence = binary.BigEndian.Uint32(packed) + 1
	}
	next := make([]byte, 4)
	binary.BigEndian.PutUint32(next, sequence)
	trx.Put(storage.Pool.Control, sequenceKey, next)
	return sequence
}
