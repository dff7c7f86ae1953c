// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package governance

import (
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
)

// Record - the per-entity ownership state
//
// invariant: Pending is nil whenever Current is renounced; all
// transitions below preserve this
type Record struct {
	Current       Value
	Pending       Value  // nil if there is no pending transfer
	PendingExpiry uint64 // unix seconds, zero means no deadline
}

// Initialize - build the record stored at account instantiation
//
// the owner value is verified before it is accepted; there is never a
// pending transfer on a fresh record
func Initialize(owner Value, q Querier) (*Record, error) {
	if nil == owner || RenouncedTag == owner.Tag() {
		return nil, fault.ErrInvalidGovernance
	}
	if err := owner.Verify(q); nil != err {
		return nil, err
	}
	return &Record{
		Current:       owner,
		Pending:       nil,
		PendingExpiry: 0,
	}, nil
}

// Transfer - propose a new owner, with an optional deadline
//
// the deadline is deliberately not validated against the current time:
// a past deadline only means the pending owner can never accept, and
// the current owner can overwrite the pending transfer at any time
func (record *Record) Transfer(sender *identity.Identity, newOwner Value, expiry uint64, q Querier, maxDepth int) error {

	// NFT governed accounts change hands by moving the token, never here
	if NFTTag == record.Current.Tag() {
		return fault.ErrTransferOfNftOwned
	}

	current, err := record.Current.Resolve(q, maxDepth)
	if nil != err {
		return err
	}
	if !SameIdentity(sender, current) {
		return fault.ErrNotOwner
	}

	if nil == newOwner || RenouncedTag == newOwner.Tag() {
		return fault.ErrTransferToRenounced
	}
	if err := newOwner.Verify(q); nil != err {
		return err
	}

	// the proposed owner must resolve to somebody who could accept
	if _, err := newOwner.Resolve(q, maxDepth); nil != err {
		return fault.ErrInvalidGovernance
	}

	// an NFT target has no holder to accept on behalf of a token, the
	// collection is authoritative so the value is written directly
	if NFTTag == newOwner.Tag() {
		record.Current = newOwner
		record.Pending = nil
		record.PendingExpiry = 0
		return nil
	}

	record.Pending = newOwner
	record.PendingExpiry = expiry
	return nil
}

// Accept - complete a pending transfer
//
// now is the block time at the moment of the call; an expired transfer
// blocks here forever until overwritten by another Transfer
func (record *Record) Accept(sender *identity.Identity, now uint64, q Querier, maxDepth int) error {

	if nil == record.Pending {
		return fault.ErrTransferNotFound
	}

	// if the pending value no longer resolves (e.g. a burned NFT) the
	// transfer is treated as not found rather than accidentally
	// renouncing the account
	pending, err := record.Pending.Resolve(q, maxDepth)
	if nil != err {
		return fault.ErrTransferNotFound
	}

	if !SameIdentity(sender, pending) {
		return fault.ErrNotPendingOwner
	}

	if 0 != record.PendingExpiry && now > record.PendingExpiry {
		return fault.ErrTransferExpired
	}

	record.Current = record.Pending
	record.Pending = nil
	record.PendingExpiry = 0
	return nil
}

// Renounce - give up control permanently
//
// terminal: a renounced record accepts no further transitions; callers
// owning sub-account indexes must refuse this while children exist, the
// state machine itself has no notion of sub-accounts
func (record *Record) Renounce(sender *identity.Identity, q Querier, maxDepth int) error {

	if RenouncedTag == record.Current.Tag() {
		return fault.ErrNoOwner
	}

	if NFTTag == record.Current.Tag() {
		return fault.ErrTransferOfNftOwned
	}

	current, err := record.Current.Resolve(q, maxDepth)
	if nil != err {
		return err
	}
	if !SameIdentity(sender, current) {
		return fault.ErrNotOwner
	}

	record.Current = Renounced{}
	record.Pending = nil
	record.PendingExpiry = 0
	return nil
}
