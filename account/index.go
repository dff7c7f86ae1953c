// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// the sub-account index is stored as one packed list per parent:
// Varint64(count) followed by each packed child identifier
//
// invariant: the list for a parent contains a child exactly when the
// child's current governance is sub-account of that parent; the
// operations in this package always update the list in the same
// transaction as the governance change

// SubAccountsOf - the child accounts currently owned by a parent
func SubAccountsOf(trx storage.Transaction, parent accountid.AccountID) ([]accountid.AccountID, error) {
	packed := trx.Get(storage.Pool.SubAccounts, parent.Pack())
	if nil == packed {
		return nil, nil
	}
	return unpackIDList(packed)
}

// HasSubAccounts - true if any child account is live
func HasSubAccounts(trx storage.Transaction, parent accountid.AccountID) bool {
	children, err := SubAccountsOf(trx, parent)
	if nil != err {
		return false
	}
	return len(children) > 0
}

// add a child to a parent's index, duplicates are never stored
func addSubAccount(trx storage.Transaction, parent accountid.AccountID, child accountid.AccountID) error {
	children, err := SubAccountsOf(trx, parent)
	if nil != err {
		return err
	}
	for _, c := range children {
		if c.Equal(child) {
			return nil
		}
	}
	children = append(children, child)
	trx.Put(storage.Pool.SubAccounts, parent.Pack(), packIDList(children))
	return nil
}

// remove a child from a parent's index
func removeSubAccount(trx storage.Transaction, parent accountid.AccountID, child accountid.AccountID) error {
	children, err := SubAccountsOf(trx, parent)
	if nil != err {
		return err
	}
	for i, c := range children {
		if c.Equal(child) {
			children = append(children[:i], children[i+1:]...)
			if 0 == len(children) {
				trx.Delete(storage.Pool.SubAccounts, parent.Pack())
			} else {
				trx.Put(storage.Pool.SubAccounts, parent.Pack(), packIDList(children))
			}
			return nil
		}
	}
	return fault.ErrSubAccountNotFound
}

func packIDList(ids []accountid.AccountID) []byte {
	buffer := util.ToVarint64(uint64(len(ids)))
	for _, id := range ids {
		buffer = append(buffer, id.Pack()...)
	}
	return buffer
}

func unpackIDList(buffer []byte) ([]accountid.AccountID, error) {
	count, n := util.FromVarint64(buffer)
	if 0 == n {
		return nil, fault.ErrCannotDecodePacket
	}
	ids := make([]accountid.AccountID, 0, count)
	for i := uint64(0); i < count; i += 1 {
		id, length, err := accountid.Unpack(buffer[n:])
		if nil != err {
			return nil, err
		}
		ids = append(ids, id)
		n += length
	}
	return ids, nil
}
