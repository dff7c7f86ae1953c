// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package host_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/ed25519"

	"github.com/sovereign-net/accountd/chain"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/host"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/mode"
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
}

// post test cleanup
func teardown(t *testing.T) {
	host.Finalise()
	mode.Finalise()
	storage.Finalise()
	logger.Finalise()
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

// the raw query boundary for tests: echo requests beginning 0x01,
// reject everything else
func testQuery(request []byte) ([]byte, error) {
	if len(request) > 0 && 0x01 == request[0] {
		return bytes.ToUpper(request), nil
	}
	return nil, fault.ErrAccountNotFound
}
