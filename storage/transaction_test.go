// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/storage"
)

// a transaction must read its own pending writes
func TestTransactionReadsOwnWrites(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")

	trx.Put(p, []byte("in-flight"), []byte("pending"))
	assert.Equal(t, []byte("pending"), trx.Get(p, []byte("in-flight")), "pending write not visible")
	assert.True(t, trx.Has(p, []byte("in-flight")), "pending write not visible to Has")

	trx.Delete(p, []byte("in-flight"))
	assert.False(t, trx.Has(p, []byte("in-flight")), "pending delete not visible")

	trx.Abort()
}

// an aborted transaction must leave no trace
func TestTransactionAbort(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")
	trx.Put(p, []byte("doomed"), []byte("data"))
	trx.Abort()

	assert.False(t, p.Has([]byte("doomed")), "aborted write was committed")
}

// only one transaction at a time
func TestTransactionExclusive(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")

	_, err = storage.NewDBTransaction()
	assert.Equal(t, fault.ErrTransactionInUse, err, "second begin was allowed")

	trx.Abort()

	trx, err = storage.NewDBTransaction()
	assert.Nil(t, err, "begin after abort failed")
	trx.Abort()
}
