// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/governance"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/storage"
)

// Create - instantiate a fresh account on this chain
//
// the sequence number is allocated here; the owner value is verified by
// the governance layer before anything is stored
func Create(trx storage.Transaction, owner governance.Value, meta Metadata, nft NFTQuerier) (accountid.AccountID, error) {
	id := accountid.Local(nextSequence(trx))
	if err := createWithID(trx, id, owner, meta, nft); nil != err {
		return accountid.AccountID{}, err
	}
	return id, nil
}

// CreateWithID - instantiate an account under a caller supplied
// identifier
//
// used when a remote registration provisions a proxy: the proxy keeps
// the identifier the origin chain assigned, extended by its hop
func CreateWithID(trx storage.Transaction, id accountid.AccountID, owner governance.Value, meta Metadata, nft NFTQuerier) error {
	if err := id.Verify(); nil != err {
		return err
	}
	return createWithID(trx, id, owner, meta, nft)
}

func createWithID(trx storage.Transaction, id accountid.AccountID, owner governance.Value, meta Metadata, nft NFTQuerier) error {

	if Exists(trx, id) {
		return fault.ErrAccountAlreadyExists
	}
	if err := meta.Verify(); nil != err {
		return err
	}

	record, err := governance.Initialize(owner, StoreQuerier(trx, nft))
	if nil != err {
		return err
	}

	trx.Put(storage.Pool.Ownership, id.Pack(), record.Pack())
	trx.Put(storage.Pool.Accounts, id.Pack(), meta.Pack())

	if sub, ok := owner.(governance.SubAccount); ok {
		return addSubAccount(trx, sub.Parent, id)
	}
	return nil
}

// CreateSubAccount - instantiate an account owned by another account
//
// the creator must be the parent's resolved controller; resolution
// walks nested sub-accounts up to maxDepth hops
func CreateSubAccount(trx storage.Transaction, creator *identity.Identity, parent accountid.AccountID, meta Metadata, nft NFTQuerier, maxDepth int) (accountid.AccountID, error) {

	q := StoreQuerier(trx, nft)

	parentRecord, err := q.OwnershipOf(parent)
	if nil != err {
		return accountid.AccountID{}, err
	}

	controller, err := parentRecord.Current.Resolve(q, maxDepth)
	if nil != err {
		return accountid.AccountID{}, err
	}
	if !governance.SameIdentity(creator, controller) {
		return accountid.AccountID{}, fault.ErrSubAccountCreatorNotAccount
	}

	return Create(trx, governance.SubAccount{Parent: parent}, meta, nft)
}

// Transfer - propose or, for NFT targets, immediately apply a change
// of owner
func Transfer(trx storage.Transaction, id accountid.AccountID, sender *identity.Identity, newOwner governance.Value, expiry uint64, nft NFTQuerier, maxDepth int) error {

	record, err := Ownership(trx, id)
	if nil != err {
		return err
	}
	previous := record.Current

	q := StoreQuerier(trx, nft)
	if err := record.Transfer(sender, newOwner, expiry, q, maxDepth); nil != err {
		return err
	}

	trx.Put(storage.Pool.Ownership, id.Pack(), record.Pack())

	// an NFT target is written directly, so the current value can change
	// here; keep the index paired with the change
	return reindex(trx, id, previous, record.Current)
}

// Accept - complete a pending transfer
func Accept(trx storage.Transaction, id accountid.AccountID, sender *identity.Identity, now uint64, nft NFTQuerier, maxDepth int) error {

	record, err := Ownership(trx, id)
	if nil != err {
		return err
	}
	previous := record.Current

	q := StoreQuerier(trx, nft)
	if err := record.Accept(sender, now, q, maxDepth); nil != err {
		return err
	}

	trx.Put(storage.Pool.Ownership, id.Pack(), record.Pack())

	return reindex(trx, id, previous, record.Current)
}

// Renounce - give up control permanently
//
// refused while the account still owns live sub-accounts, a renounced
// root would orphan the whole tree below it
func Renounce(trx storage.Transaction, id accountid.AccountID, sender *identity.Identity, nft NFTQuerier, maxDepth int) error {

	if HasSubAccounts(trx, id) {
		return fault.ErrRenounceWithSubAccounts
	}

	record, err := Ownership(trx, id)
	if nil != err {
		return err
	}
	previous := record.Current

	q := StoreQuerier(trx, nft)
	if err := record.Renounce(sender, q, maxDepth); nil != err {
		return err
	}

	trx.Put(storage.Pool.Ownership, id.Pack(), record.Pack())

	return reindex(trx, id, previous, record.Current)
}

// keep the sub-account index consistent with a change of the current
// governance value; insert and remove always happen in the same
// transaction as the change itself
func reindex(trx storage.Transaction, id accountid.AccountID, previous governance.Value, current governance.Value) error {

	oldSub, wasSub := previous.(governance.SubAccount)
	newSub, isSub := current.(governance.SubAccount)

	if wasSub && isSub && oldSub.Parent.Equal(newSub.Parent) {
		return nil
	}

	if wasSub {
		if err := removeSubAccount(trx, oldSub.Parent, id); nil != err {
			return err
		}
	}
	if isSub {
		return addSubAccount(trx, newSub.Parent, id)
	}
	return nil
}

// TopLevelOwner - walk nested sub-account governance to the first
// non-account controller
func TopLevelOwner(trx storage.Transaction, id accountid.AccountID, nft NFTQuerier, maxDepth int) (*identity.Identity, error) {

	q := StoreQuerier(trx, nft)

	record, err := Ownership(trx, id)
	if nil != err {
		return nil, err
	}

	depth := maxDepth
	for governance.SubAccountTag == record.Current.Tag() {
		if depth <= 0 {
			return nil, fault.ErrTopLevelOwnerUnresolved
		}
		depth -= 1
		parent := record.Current.(governance.SubAccount).Parent
		record, err = Ownership(trx, parent)
		if nil != err {
			return nil, err
		}
	}

	return record.Current.Resolve(q, 1)
}
