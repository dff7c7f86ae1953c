// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package host - host side of the remote registration protocol
//
// runs on the chain that hosts proxy accounts: deduplicates
// registration packets, defers proxy creation to an asynchronous
// effect, answers query batches and identifies itself to counterparty
// clients
package host

import (
	"sync"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"

	"github.com/sovereign-net/accountd/account"
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/counter"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/packet"
)

// QueryHandler - the raw query boundary
//
// executes one opaque read-only request against local state; the host
// never interprets request bytes itself
type QueryHandler func(request []byte) ([]byte, error)

// governance kind stored on remotely provisioned proxy accounts
const proxyGovernanceKind = "sovereign-host"

// one registration waiting for its proxy-creation effect
type pendingEffect struct {
	channelID string
	register  *packet.Register
}

// globals for background process
type hostData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	chain    chainname.Name                       // this chain
	address  *identity.Identity                   // the host's own controlling identity
	clients  map[chainname.Name]*identity.Identity // chain name → registered counterparty client
	nft      account.NFTQuerier
	query    QueryHandler
	maxDepth int

	pending     *cache.Cache // correlation id → pendingEffect
	correlation counter.Counter

	// packet statistics
	packetCounter   counter.Counter
	registerCounter counter.Counter
	queryCounter    counter.Counter
	timeoutCounter  counter.Counter

	// set once during initialise
	initialised bool
}

// global data
var globalData hostData

// Initialise - start up the host protocol
func Initialise(chain chainname.Name, address *identity.Identity, nft account.NFTQuerier, query QueryHandler, maxDepth int) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	if err := chain.Valid(); nil != err {
		return err
	}
	if nil == address || nil == query {
		return fault.ErrNotInitialised
	}
	if maxDepth <= 0 {
		maxDepth = account.DefaultMaxNesting
	}

	globalData.log = logger.New("host")
	globalData.chain = chain
	globalData.address = address
	globalData.clients = make(map[chainname.Name]*identity.Identity)
	globalData.nft = nft
	globalData.query = query
	globalData.maxDepth = maxDepth

	// pending proxy effects never expire on their own, a registration
	// whose effect never completes is an operator visible stuck state
	globalData.pending = cache.New(cache.NoExpiration, 0)

	globalData.initialised = true

	globalData.log.Info("initialised")
	return nil
}

// Finalise - shut down the host protocol
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("finalised")
	globalData.initialised = false
	return nil
}

// RegisterClient - record the expected counterparty client for a chain
//
// the WhoAmI handshake validates against this registry
func RegisterClient(chain chainname.Name, client *identity.Identity) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	if err := chain.Valid(); nil != err {
		return err
	}
	if _, ok := globalData.clients[chain]; ok {
		return fault.ErrRemoteChainExists
	}
	globalData.clients[chain] = client
	return nil
}

// PendingEffects - the number of proxy creations not yet completed
func PendingEffects() int {
	globalData.RLock()
	defer globalData.RUnlock()
	if nil == globalData.pending {
		return 0
	}
	return globalData.pending.ItemCount()
}

// TimeoutCount - packets reported as timed out so far
func TimeoutCount() uint64 {
	return globalData.timeoutCounter.Uint64()
}
