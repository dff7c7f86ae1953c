// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// Transaction - all-or-nothing batch of writes across pools
//
// every mutating account or protocol operation runs inside exactly one
// transaction; execution per ledger is single threaded so only one
// transaction is in flight at a time
type Transaction interface {
	Begin() error
	Put(*PoolHandle, []byte, []byte)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	Has(*PoolHandle, []byte) bool
	Commit() error
	Abort()
	InUse() bool
}

type transactionImpl struct {
	dataAccess DataAccess
}

func newTransaction(access DataAccess) Transaction {
	return &transactionImpl{
		dataAccess: access,
	}
}

func (t *transactionImpl) Begin() error {
	return t.dataAccess.Begin()
}

func (t *transactionImpl) Put(pool *PoolHandle, key []byte, value []byte) {
	pool.Put(key, value)
}

func (t *transactionImpl) Delete(pool *PoolHandle, key []byte) {
	pool.Delete(key)
}

func (t *transactionImpl) Get(pool *PoolHandle, key []byte) []byte {
	return pool.Get(key)
}

func (t *transactionImpl) Has(pool *PoolHandle, key []byte) bool {
	return pool.Has(key)
}

func (t *transactionImpl) Commit() error {
	return t.dataAccess.Commit()
}

func (t *transactionImpl) Abort() {
	t.dataAccess.Abort()
}

func (t *transactionImpl) InUse() bool {
	return t.dataAccess.InUse()
}
