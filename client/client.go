// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"strconv"

	cache "github.com/patrickmn/go-cache"

	"github.com/sovereign-net/accountd/account"
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/messagebus"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// PendingCall - one dispatched packet awaiting its acknowledgment
type PendingCall struct {
	Correlation uint64
	Kind        packet.Tag
	ChannelID   string
	Account     accountid.AccountID
	Destination chainname.Name
}

// RegisterRemoteAccount - ask a destination chain to provision a proxy
//
// nothing durable is written here; the trace extension and the remote
// address are recorded only when a success acknowledgment arrives
func RegisterRemoteAccount(trx storage.Transaction, id accountid.AccountID, proxy *identity.Identity, destination chainname.Name, channelID string, meta account.Metadata) (uint64, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.ErrNotInitialised
	}
	if !account.Exists(trx, id) {
		return 0, fault.ErrAccountNotFound
	}
	if err := destination.Valid(); nil != err {
		return 0, err
	}
	if err := meta.Verify(); nil != err {
		return 0, err
	}

	// the identifier on the wire carries this chain as an extra hop so
	// the host sees where the account truly lives
	p := &packet.Register{
		Account:      id.ExtendTrace(globalData.chain),
		ProxyAddress: proxy,
		Name:         meta.Name,
		Description:  meta.Description,
		Link:         meta.Link,
	}

	return dispatch(p, packet.RegisterTag, channelID, id, destination), nil
}

// ExecuteOnRemote - run actions on an already registered proxy
func ExecuteOnRemote(trx storage.Transaction, id accountid.AccountID, destination chainname.Name, channelID string, actions [][]byte) (uint64, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.ErrNotInitialised
	}
	if !trx.Has(storage.Pool.RemoteAccounts, remoteKey(id, destination)) {
		return 0, fault.ErrRemoteAccountNotFound
	}

	p := &packet.Execute{
		Account: id.ExtendTrace(globalData.chain),
		Actions: actions,
	}
	return dispatch(p, packet.ExecuteTag, channelID, id, destination), nil
}

// Deposit - move funds to an already registered proxy
func Deposit(trx storage.Transaction, id accountid.AccountID, destination chainname.Name, channelID string, amount uint64) (uint64, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.ErrNotInitialised
	}
	if !trx.Has(storage.Pool.RemoteAccounts, remoteKey(id, destination)) {
		return 0, fault.ErrRemoteAccountNotFound
	}

	p := &packet.Deposit{
		Account: id.ExtendTrace(globalData.chain),
		Amount:  amount,
	}
	return dispatch(p, packet.DepositTag, channelID, id, destination), nil
}

// place the packet on the outbound queue and remember the call
func dispatch(p packet.Packet, kind packet.Tag, channelID string, id accountid.AccountID, destination chainname.Name) uint64 {

	correlation := globalData.correlation.Increment()

	globalData.pending.Set(correlationKey(correlation), &PendingCall{
		Correlation: correlation,
		Kind:        kind,
		ChannelID:   channelID,
		Account:     id,
		Destination: destination,
	}, cache.NoExpiration)

	messagebus.Bus.Dispatch.Send("packet",
		util.ToVarint64(correlation),
		[]byte(channelID),
		p.Pack(),
	)

	globalData.log.Infof("dispatch: %s for: %s correlation: %d", kind, id, correlation)
	return correlation
}

// ReceiveAck - an acknowledgment arrived for a dispatched packet
//
// a successful registration extends the account's recorded projections
// with the destination chain and caches the remote proxy address; a
// failure acknowledgment passes through untouched, there is no
// optimistic state to roll back
func ReceiveAck(trx storage.Transaction, correlation uint64, ack packet.Ack) (packet.Ack, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return packet.Ack{}, fault.ErrNotInitialised
	}

	item, ok := globalData.pending.Get(correlationKey(correlation))
	if !ok {
		return packet.Ack{}, fault.ErrPendingEffectNotFound
	}
	call := item.(*PendingCall)
	globalData.pending.Delete(correlationKey(correlation))

	if packet.RegisterTag == call.Kind && ack.Ok {

		// the payload carries the proxy address the host created
		if _, err := identity.IdentityFromBytes(ack.Payload); nil != err {
			return packet.Ack{}, err
		}
		trx.Put(storage.Pool.RemoteAccounts, remoteKey(call.Account, call.Destination), ack.Payload)

		globalData.log.Infof("registered: %s on chain: %s", call.Account, call.Destination)
	}

	return ack, nil
}

// ReceiveTimeout - a dispatched packet timed out in transit
//
// telemetry only: the pending entry is deliberately kept so the stuck
// call stays operator visible, the protocol never retries on its own
func ReceiveTimeout(correlation uint64) {
	globalData.timeoutCounter.Increment()
	messagebus.Bus.Telemetry.Send("packet-timeout", util.ToVarint64(correlation))
	if nil != globalData.log {
		globalData.log.Warnf("packet timeout correlation: %d", correlation)
	}
}

// RemoteAddress - the proxy address for an account on a chain
func RemoteAddress(trx storage.Transaction, id accountid.AccountID, destination chainname.Name) (*identity.Identity, error) {
	stored := trx.Get(storage.Pool.RemoteAccounts, remoteKey(id, destination))
	if nil == stored {
		return nil, fault.ErrRemoteAccountNotFound
	}
	return identity.IdentityFromBytes(stored)
}

// Stuck - all calls still waiting for an acknowledgment
//
// a registration the host never answers stays here permanently; that
// leak is the operator's signal of a liveness problem
func Stuck() []PendingCall {
	globalData.RLock()
	defer globalData.RUnlock()

	if nil == globalData.pending {
		return nil
	}
	items := globalData.pending.Items()
	calls := make([]PendingCall, 0, len(items))
	for _, item := range items {
		calls = append(calls, *item.Object.(*PendingCall))
	}
	return calls
}

func remoteKey(id accountid.AccountID, destination chainname.Name) []byte {
	key := id.Pack()
	key = append(key, util.ToVarint64(uint64(len(destination)))...)
	return append(key, destination...)
}

func correlationKey(correlation uint64) string {
	return strconv.FormatUint(correlation, 10)
}
