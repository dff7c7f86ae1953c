// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sovereign-net/accountd/channel"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
)

// test database file
const (
	databaseFileName = "test"
)

func removeFiles() {
	os.RemoveAll(databaseFileName + "-accounts.leveldb")
}

func setup(t *testing.T) {
	removeFiles()
	err := storage.Initialise(databaseFileName)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	storage.Finalise()
	removeFiles()
}

func beginTransaction(t *testing.T) storage.Transaction {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}
	return trx
}

func TestOpenChannel(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()

	// ordering and version are both guarded
	_, err := channel.OpenChannel(trx, "channel-1", "unordered", packet.Version)
	assert.Equal(t, fault.ErrInvalidChannelOrder, err, "wrong ordering accepted")

	_, err = channel.OpenChannel(trx, "channel-1", packet.Ordering, "other-protocol-9")
	assert.Equal(t, fault.ErrUnsupportedVersion, err, "wrong version accepted")

	negotiated, err := channel.OpenChannel(trx, "channel-1", packet.Ordering, packet.Version)
	assert.Nil(t, err, "open error")
	assert.Equal(t, packet.Version, negotiated, "negotiated version")
	assert.True(t, channel.IsOpen(trx, "channel-1"), "channel not open")

	// a second open of the same channel is refused
	_, err = channel.OpenChannel(trx, "channel-1", packet.Ordering, packet.Version)
	assert.Equal(t, fault.ErrChannelAlreadyOpen, err, "double open accepted")
}

func TestCloseRefused(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()

	_, err := channel.OpenChannel(trx, "channel-2", packet.Ordering, packet.Version)
	assert.Nil(t, err, "open error")

	err = channel.CloseChannel(trx, "channel-2")
	assert.Equal(t, fault.ErrChannelCloseNotSupported, err, "close accepted")
	assert.True(t, channel.IsOpen(trx, "channel-2"), "channel closed")
}

func TestBind(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()

	err := channel.Bind(trx, "channel-3", "osmosis")
	assert.Equal(t, fault.ErrChannelNotFound, err, "bind before open accepted")

	_, err = channel.OpenChannel(trx, "channel-3", packet.Ordering, packet.Version)
	assert.Nil(t, err, "open error")

	assert.Nil(t, channel.Bind(trx, "channel-3", "osmosis"), "bind error")

	ch, err := channel.Get(trx, "channel-3")
	assert.Nil(t, err, "get error")
	assert.Equal(t, channel.Open, ch.State, "state")
	assert.Equal(t, "osmosis", string(ch.Chain), "chain")
}
