// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package provision_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sovereign-net/accountd/account"
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/channel"
	"github.com/sovereign-net/accountd/governance"
	"github.com/sovereign-net/accountd/host"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/messagebus"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/provision"
	"github.com/sovereign-net/accountd/storage"
)

const channelID = "channel-1"

// open the test channel
func openChannel(t *testing.T, trx storage.Transaction) {
	_, err := channel.OpenChannel(trx, channelID, packet.Ordering, packet.Version)
	if nil != err {
		t.Fatalf("channel open error: %s", err)
	}
}

// a register packet from a remote chain
func makeRegister(t *testing.T, sequence uint32) *packet.Register {
	return &packet.Register{
		Account: accountid.AccountID{
			Sequence: sequence,
			Trace:    []chainname.Name{"juno"},
		},
		ProxyAddress: makeIdentity(t),
		Name:         "treasury",
	}
}

// wait until the stored acknowledgment is no longer the pending one
func awaitOutcome(t *testing.T, id accountid.AccountID) packet.Ack {
	deadline := time.Now().Add(5 * time.Second)
	for {
		trx := beginTransaction(t)
		_, ack, err := host.Registration(trx, channelID, id)
		trx.Abort()
		if nil != err {
			t.Fatalf("registration lookup error: %s", err)
		}
		if "registration pending" != ack.Message {
			return ack
		}
		if time.Now().After(deadline) {
			t.Fatal("effect never completed")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestProxyCreateEffect(t *testing.T) {
	setup(t)
	defer teardown(t)

	r := makeRegister(t, 1)
	proxiedBefore := provision.ProxiedCount()

	trx := beginTransaction(t)
	openChannel(t, trx)
	ack := host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, ack.Ok, "premature success acknowledgment")
	if err := trx.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}

	// the background consumer creates the proxy and overwrites the
	// stored acknowledgment with its address
	outcome := awaitOutcome(t, r.Account)
	assert.True(t, outcome.Ok, "registration did not complete")
	proxy, err := identity.IdentityFromBytes(outcome.Payload)
	assert.Nil(t, err, "acknowledgment payload is not an identity")
	assert.NotNil(t, proxy, "no proxy address")

	trx = beginTransaction(t)
	defer trx.Abort()
	assert.True(t, account.Exists(trx, r.Account), "proxy account missing")

	assert.Equal(t, 0, host.PendingEffects(), "pending effect leaked")
	assert.Equal(t, proxiedBefore+1, provision.ProxiedCount(), "proxied counter")
}

func TestProxyCreateConflict(t *testing.T) {
	setup(t)
	defer teardown(t)

	r := makeRegister(t, 2)
	failedBefore := provision.FailedCount()

	// occupy the identifier before the effect runs
	trx := beginTransaction(t)
	openChannel(t, trx)
	owner := governance.Monarchy{Owner: makeIdentity(t)}
	err := account.CreateWithID(trx, r.Account, owner, account.Metadata{Name: "squatter"}, nil)
	if nil != err {
		t.Fatalf("create error: %s", err)
	}
	ack := host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, ack.Ok, "premature success acknowledgment")
	if err := trx.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}

	// the consumer must convert the creation failure into a durable
	// failure acknowledgment, never leave the registration pending
	outcome := awaitOutcome(t, r.Account)
	assert.False(t, outcome.Ok, "conflicting registration succeeded")
	assert.Equal(t, "account already exists", outcome.Message, "failure message")

	assert.Equal(t, 0, host.PendingEffects(), "pending effect leaked")
	assert.Equal(t, failedBefore+1, provision.FailedCount(), "failed counter")
}

func TestApplyEffects(t *testing.T) {
	setup(t)
	defer teardown(t)

	appliedBefore := provision.AppliedCount()
	id := accountid.AccountID{Sequence: 3, Trace: []chainname.Name{"juno"}}
	execute := &packet.Execute{Account: id, Actions: [][]byte{{0x01}}}
	deposit := &packet.Deposit{Account: id, Amount: 1000}

	messagebus.Bus.Effect.Send("proxy-execute", []byte(channelID), execute.Pack())
	messagebus.Bus.Effect.Send("proxy-deposit", []byte(channelID), deposit.Pack())

	deadline := time.Now().Add(5 * time.Second)
	for provision.AppliedCount() < appliedBefore+2 {
		if time.Now().After(deadline) {
			t.Fatalf("applied count: %d", provision.AppliedCount())
		}
		time.Sleep(20 * time.Millisecond)
	}
}
