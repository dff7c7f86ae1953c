// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package host_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sovereign-net/accountd/account"
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/channel"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/host"
	"github.com/sovereign-net/accountd/messagebus"
	"github.com/sovereign-net/accountd/mode"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
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
func makeRegister(t *testing.T) *packet.Register {
	return &packet.Register{
		Account: accountid.AccountID{
			Sequence: 1,
			Trace:    []chainname.Name{"juno"},
		},
		ProxyAddress: makeIdentity(t),
		Name:         "treasury",
	}
}

// drain the proxy creation effect and return its correlation id
func dropEffect(t *testing.T) uint64 {
	message, ok := messagebus.Bus.Effect.Drop()
	if !ok {
		t.Fatal("no effect message")
	}
	assert.Equal(t, "proxy-create", message.Command, "effect command")
	correlation, n := util.FromVarint64(message.Parameters[0])
	if 0 == n {
		t.Fatal("invalid correlation")
	}
	return correlation
}

func TestRegisterLifecycle(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()
	openChannel(t, trx)

	r := makeRegister(t)

	// the first packet stores the registration, enqueues the effect and
	// acknowledges failure as the safe default
	ack := host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, ack.Ok, "premature success acknowledgment")
	correlation := dropEffect(t)

	// a replayed packet is a lookup, never a second effect
	replay := host.ReceivePacket(trx, channelID, r.Pack())
	assert.Equal(t, ack, replay, "replay changed the acknowledgment")
	_, ok := messagebus.Bus.Effect.Drop()
	assert.False(t, ok, "replay enqueued a second effect")

	// completion creates the proxy account and overwrites the stored
	// acknowledgment with the new local address
	proxy := makeIdentity(t)
	err := host.CompleteRegistration(trx, correlation, proxy)
	assert.Nil(t, err, "completion error")
	assert.True(t, account.Exists(trx, r.Account), "proxy account missing")

	replay = host.ReceivePacket(trx, channelID, r.Pack())
	assert.True(t, replay.Ok, "acknowledgment not overwritten")
	assert.True(t, bytes.Equal(proxy.Bytes(), replay.Payload), "payload is not the proxy address")

	// the pending effect entry is gone
	err = host.CompleteRegistration(trx, correlation, proxy)
	assert.Equal(t, fault.ErrPendingEffectNotFound, err, "double completion accepted")
}

func TestRegisterEffectFailure(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()
	openChannel(t, trx)

	r := makeRegister(t)

	ack := host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, ack.Ok, "premature success acknowledgment")
	correlation := dropEffect(t)

	err := host.FailRegistration(trx, correlation, "fee charge failed")
	assert.Nil(t, err, "fail error")
	assert.False(t, account.Exists(trx, r.Account), "proxy created despite failure")

	// a retried packet maps to the recorded failure
	replay := host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, replay.Ok, "failed registration acknowledged ok")
	assert.Equal(t, "fee charge failed", replay.Message, "message")
}

func TestRegisterRequiresRemote(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()
	openChannel(t, trx)

	r := makeRegister(t)
	r.Account = accountid.Local(1)

	ack := host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, ack.Ok, "local account registered")
	assert.Equal(t, fault.ErrMustBeRemote.Error(), ack.Message, "message")

	_, ok := messagebus.Bus.Effect.Drop()
	assert.False(t, ok, "effect enqueued for rejected packet")
}

func TestQueryBatchPartialFailure(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()
	openChannel(t, trx)

	q := &packet.Query{
		Requests: [][]byte{
			{0x01, 'a'},
			{0x02},
			{0x01, 'b'},
		},
	}

	ack := host.ReceivePacket(trx, channelID, q.Pack())
	assert.True(t, ack.Ok, "batch failed")

	results, err := packet.UnpackQueryResults(ack.Payload)
	assert.Nil(t, err, "results unpack error")
	assert.Equal(t, 3, len(results), "result count")
	assert.True(t, results[0].Ok, "first result failed")
	assert.False(t, results[1].Ok, "second result succeeded")
	assert.Equal(t, fault.ErrAccountNotFound.Error(), results[1].Message, "second message")
	assert.True(t, results[2].Ok, "third result failed")
}

func TestWhoAmI(t *testing.T) {
	setup(t)
	defer teardown(t)

	client := makeIdentity(t)
	err := host.RegisterClient("juno", client)
	assert.Nil(t, err, "register client error")

	// duplicate chain registration is refused
	err = host.RegisterClient("juno", makeIdentity(t))
	assert.Equal(t, fault.ErrRemoteChainExists, err, "duplicate chain registered")

	trx := beginTransaction(t)
	defer trx.Abort()
	openChannel(t, trx)

	// a stranger claiming the chain is refused
	w := &packet.WhoAmI{Chain: "juno", Client: makeIdentity(t)}
	ack := host.ReceivePacket(trx, channelID, w.Pack())
	assert.False(t, ack.Ok, "stranger accepted")
	assert.Equal(t, fault.ErrClientMismatch.Error(), ack.Message, "message")

	// the registered client binds the channel and learns the host chain
	w = &packet.WhoAmI{Chain: "juno", Client: client}
	ack = host.ReceivePacket(trx, channelID, w.Pack())
	assert.True(t, ack.Ok, "registered client refused")
	assert.Equal(t, localChain, string(ack.Payload), "host chain name")

	ch, err := channel.Get(trx, channelID)
	assert.Nil(t, err, "channel get error")
	assert.Equal(t, "juno", string(ch.Chain), "channel binding")
}

func TestDispatchRequiresRegistration(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()
	openChannel(t, trx)

	e := &packet.Execute{
		Account: accountid.AccountID{
			Sequence: 9,
			Trace:    []chainname.Name{"juno"},
		},
		Actions: [][]byte{{0x01}},
	}

	ack := host.ReceivePacket(trx, channelID, e.Pack())
	assert.False(t, ack.Ok, "unregistered execute accepted")
	assert.Equal(t, fault.ErrRemoteAccountNotFound.Error(), ack.Message, "message")
}

func TestChannelGating(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := beginTransaction(t)
	defer trx.Abort()

	// no handshake, no packets
	r := makeRegister(t)
	ack := host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, ack.Ok, "packet on unopened channel accepted")

	openChannel(t, trx)

	// packets are refused outside normal mode
	mode.Set(mode.Resynchronise)
	ack = host.ReceivePacket(trx, channelID, r.Pack())
	assert.False(t, ack.Ok, "packet accepted while resynchronising")
	mode.Set(mode.Normal)
}

func TestTimeoutAndClose(t *testing.T) {
	setup(t)
	defer teardown(t)

	before := host.TimeoutCount()
	host.ReceiveTimeout(channelID)
	assert.Equal(t, before+1, host.TimeoutCount(), "timeout counter")

	message, ok := messagebus.Bus.Telemetry.Drop()
	assert.True(t, ok, "no telemetry message")
	assert.Equal(t, "packet-timeout", message.Command, "telemetry command")

	err := host.ReceiveClose(channelID)
	assert.Equal(t, fault.ErrChannelCloseNotSupported, err, "close accepted")
}
