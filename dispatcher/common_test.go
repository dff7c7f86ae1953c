// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatcher_test

import (
	"crypto/rand"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/ed25519"

	"github.com/sovereign-net/accountd/client"
	"github.com/sovereign-net/accountd/dispatcher"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/transport"
)

// test database file
const (
	databaseFileName = "test"
)

// the origin chain for all tests
const localChain = "juno"

// a port distinct from the transport package tests
const listenAddress = "tcp://127.0.0.1:19666"

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseFileName + "-accounts.leveldb")
	os.RemoveAll("test.log")
}

// configure for testing; handler answers inbound frames on the local
// listener standing in for the counterparty daemon
func setup(t *testing.T, handler transport.Handler, connections []dispatcher.Connection) {
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

	err = client.Initialise(localChain)
	if nil != err {
		t.Fatalf("client initialise error: %s", err)
	}

	err = transport.Initialise(listenAddress, handler)
	if nil != err {
		t.Fatalf("transport initialise error: %s", err)
	}

	err = dispatcher.Initialise(connections, 2*time.Second)
	if nil != err {
		t.Fatalf("dispatcher initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	dispatcher.Finalise()
	transport.Finalise()
	client.Finalise()
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
