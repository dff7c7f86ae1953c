// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package host

import (
	"strconv"

	cache "github.com/patrickmn/go-cache"

	"github.com/sovereign-net/accountd/account"
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/channel"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/governance"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/messagebus"
	"github.com/sovereign-net/accountd/mode"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// ReceivePacket - process one inbound packet on an open channel
//
// delivery is at least once: the registration store is the
// de-duplication boundary, a replayed Register returns the stored
// acknowledgment content without a second effect
func ReceivePacket(trx storage.Transaction, channelID string, payload []byte) packet.Ack {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return packet.ErrAck(fault.ErrNotInitialised.Error())
	}
	if mode.IsNot(mode.Normal) {
		return packet.ErrAck("not in normal mode")
	}
	if !channel.IsOpen(trx, channelID) {
		return packet.ErrAck(fault.ErrChannelNotOpen.Error())
	}

	globalData.packetCounter.Increment()

	p, _, err := packet.Unpack(payload)
	if nil != err {
		return packet.ErrAck(err.Error())
	}

	switch p := p.(type) {

	case *packet.Register:
		globalData.registerCounter.Increment()
		return receiveRegister(trx, channelID, p)

	case *packet.Query:
		globalData.queryCounter.Increment()
		return receiveQuery(p)

	case *packet.WhoAmI:
		return receiveWhoAmI(trx, channelID, p)

	case *packet.Execute:
		return receiveDispatch(trx, channelID, p.Account, "proxy-execute", p.Pack())

	case *packet.Deposit:
		return receiveDispatch(trx, channelID, p.Account, "proxy-deposit", p.Pack())

	default:
		return packet.ErrAck(fault.ErrCannotDecodePacket.Error())
	}
}

// registration packets are acknowledged with a failure immediately and
// the stored acknowledgment is overwritten once the asynchronous proxy
// creation completes; from the counterparty's view the packet cycle
// stays synchronous
func receiveRegister(trx storage.Transaction, channelID string, r *packet.Register) packet.Ack {

	log := globalData.log

	if err := r.Account.VerifyRemote(); nil != err {
		return packet.ErrAck(err.Error())
	}

	key := registrationKey(channelID, r.Account)

	// a registration is immutable once created, a retried packet is a
	// lookup of the stored acknowledgment, never a second creation
	if stored := trx.Get(storage.Pool.ChannelRegistrations, key); nil != stored {
		_, ack, err := unpackRegistration(stored)
		if nil != err {
			log.Criticalf("corrupt registration for: %s", r.Account)
			return packet.ErrAck(err.Error())
		}
		return ack
	}

	correlation := globalData.correlation.Increment()

	ack := packet.ErrAck("registration pending")
	trx.Put(storage.Pool.ChannelRegistrations, key, packRegistration(r.ProxyAddress.Bytes(), ack))

	globalData.pending.Set(correlationKey(correlation), &pendingEffect{
		channelID: channelID,
		register:  r,
	}, cache.NoExpiration)

	messagebus.Bus.Effect.Send("proxy-create",
		util.ToVarint64(correlation),
		[]byte(channelID),
		r.Account.Pack(),
	)

	log.Infof("register: %s on channel: %q correlation: %d", r.Account, channelID, correlation)
	return ack
}

// CompleteRegistration - the proxy-creation effect finished
//
// creates the proxy account under the identifier the origin chain
// assigned and overwrites the stored acknowledgment with success
// carrying the new local address
func CompleteRegistration(trx storage.Transaction, correlation uint64, proxy *identity.Identity) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	item, ok := globalData.pending.Get(correlationKey(correlation))
	if !ok {
		return fault.ErrPendingEffectNotFound
	}
	effect := item.(*pendingEffect)
	r := effect.register

	owner := governance.External{
		Address: globalData.address,
		Kind:    proxyGovernanceKind,
	}
	meta := account.Metadata{
		Name:        r.Name,
		Description: r.Description,
		Link:        r.Link,
	}
	if err := account.CreateWithID(trx, r.Account, owner, meta, globalData.nft); nil != err {
		return err
	}

	key := registrationKey(effect.channelID, r.Account)
	trx.Put(storage.Pool.ChannelRegistrations, key,
		packRegistration(r.ProxyAddress.Bytes(), packet.OkAck(proxy.Bytes())))

	globalData.pending.Delete(correlationKey(correlation))

	globalData.log.Infof("registration complete: %s proxy: %s", r.Account, proxy)
	return nil
}

// FailRegistration - the proxy-creation effect failed permanently
//
// the stored acknowledgment keeps a failure, only the message changes;
// the registration entry itself stays so a retried packet still maps to
// the same outcome
func FailRegistration(trx storage.Transaction, correlation uint64, message string) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	item, ok := globalData.pending.Get(correlationKey(correlation))
	if !ok {
		return fault.ErrPendingEffectNotFound
	}
	effect := item.(*pendingEffect)

	key := registrationKey(effect.channelID, effect.register.Account)
	trx.Put(storage.Pool.ChannelRegistrations, key,
		packRegistration(effect.register.ProxyAddress.Bytes(), packet.ErrAck(message)))

	globalData.pending.Delete(correlationKey(correlation))

	globalData.log.Warnf("registration failed: %s: %s", effect.register.Account, message)
	return nil
}

// each request runs through the raw query boundary; a single failure
// becomes one failed item, never a failed batch
func receiveQuery(q *packet.Query) packet.Ack {

	results := make([]packet.QueryResult, 0, len(q.Requests))
	for _, request := range q.Requests {
		data, err := globalData.query(request)
		if nil != err {
			results = append(results, packet.QueryResult{
				Ok:      false,
				Message: err.Error(),
			})
			continue
		}
		results = append(results, packet.QueryResult{
			Ok:   true,
			Data: data,
		})
	}
	return packet.OkAck(packet.PackQueryResults(results))
}

// the counterparty claims a chain name; it must match the client this
// host registered for that chain
func receiveWhoAmI(trx storage.Transaction, channelID string, w *packet.WhoAmI) packet.Ack {

	expected, ok := globalData.clients[w.Chain]
	if !ok || !governance.SameIdentity(expected, w.Client) {
		return packet.ErrAck(fault.ErrClientMismatch.Error())
	}

	if err := channel.Bind(trx, channelID, w.Chain); nil != err {
		return packet.ErrAck(err.Error())
	}

	globalData.log.Infof("channel: %q bound to chain: %s", channelID, w.Chain)
	return packet.OkAck([]byte(globalData.chain))
}

// execute and deposit need an existing registration; the eventual
// outcome is produced by the deferred effect, the acknowledgment here
// is a pass-through accepted marker
func receiveDispatch(trx storage.Transaction, channelID string, id accountid.AccountID, command string, payload []byte) packet.Ack {

	key := registrationKey(channelID, id)
	if !trx.Has(storage.Pool.ChannelRegistrations, key) {
		return packet.ErrAck(fault.ErrRemoteAccountNotFound.Error())
	}

	messagebus.Bus.Effect.Send(command, []byte(channelID), payload)
	return packet.OkAck(nil)
}

// ReceiveTimeout - a packet timed out in transit
//
// intentionally a no-op beyond telemetry: a stuck in-flight
// registration is a liveness condition to report, not one the protocol
// recovers from
func ReceiveTimeout(channelID string) {
	globalData.timeoutCounter.Increment()
	messagebus.Bus.Telemetry.Send("packet-timeout", []byte(channelID))
	if nil != globalData.log {
		globalData.log.Warnf("packet timeout on channel: %q", channelID)
	}
}

// ReceiveClose - always refused for this protocol
func ReceiveClose(channelID string) error {
	return fault.ErrChannelCloseNotSupported
}

func correlationKey(correlation uint64) string {
	return strconv.FormatUint(correlation, 10)
}
