// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account_test

import (
	"crypto/rand"
	"os"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/storage"
)

// test database file
const (
	databaseFileName = "test"
)

// common test setup routines

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseFileName + "-accounts.leveldb")
}

// configure for testing
func setup(t *testing.T) {
	removeFiles()
	err := storage.Initialise(databaseFileName)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	storage.Finalise()
	removeFiles()
}

// begin an exclusive transaction
func beginTransaction(t *testing.T) storage.Transaction {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}
	return trx
}

// generate a fresh test identity
func makeIdentity(t *testing.T) *identity.Identity {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		t.Fatalf("key generation failed: %s", err)
	}
	return &identity.Identity{
		IdentityInterface: &identity.ED25519Identity{
			Test:      true,
			PublicKey: publicKey,
		},
	}
}

// NFT collections for tests
type mockNFT struct {
	owners map[string]*identity.Identity
}

func newMockNFT() *mockNFT {
	return &mockNFT{
		owners: make(map[string]*identity.Identity),
	}
}

func (m *mockNFT) NFTOwner(collection *identity.Identity, tokenID string) (*identity.Identity, error) {
	owner, ok := m.owners[collection.String()+"/"+tokenID]
	if !ok {
		return nil, fault.ErrAccountNotFound
	}
	return owner, nil
}
