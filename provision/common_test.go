// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package provision_test

import (
	"crypto/rand"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/ed25519"

	"github.com/sovereign-net/accountd/chain"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/host"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/mode"
	"github.com/sovereign-net/accountd/provision"
	"github.com/sovereign-net/accountd/storage"
)

// test database file
const (
	databaseFileName = "test"
)

// the host's own chain for all tests
const localChain = "hostchain"

// identity of the host daemon itself
var hostIdentity *identity.Identity

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseFileName + "-accounts.leveldb")
	os.RemoveAll("test.log")
}

// configure for testing
func setup(t *testing.T) {
	removeFiles()

	logger.Initialise(logger.Configuration{
		Directory: ".",
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	err := storage.Initialise(databaseFileName)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}

	err = mode.Initialise(chain.Testing)
	if nil != err {
		t.Fatalf("mode initialise error: %s", err)
	}
	mode.Set(mode.Normal)

	hostIdentity = makeIdentity(t)
	err = host.Initialise(localChain, hostIdentity, nil, testQuery, 2)
	if nil != err {
		t.Fatalf("host initialise error: %s", err)
	}

	err = provision.Initialise()
	if nil != err {
		t.Fatalf("provision initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	provision.Finalise()
	host.Finalise()
	mode.Finalise()
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

// begin an exclusive transaction, retrying while the background
// consumer holds it
func beginTransaction(t *testing.T) storage.Transaction {
	deadline := time.Now().Add(5 * time.Second)
	for {
		trx, err := storage.NewDBTransaction()
		if nil == err {
			return trx
		}
		if !fault.IsErrProcess(err) || time.Now().After(deadline) {
			t.Fatalf("transaction begin error: %s", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
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

// the raw query boundary for tests; unused by these tests
func testQuery(request []byte) ([]byte, error) {
	return nil, fault.ErrAccountNotFound
}
