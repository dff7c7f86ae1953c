// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package client - client side of the remote registration protocol
//
// runs on the chain where the origin account lives: dispatches
// registration and action packets, correlates the asynchronous
// acknowledgments back to their calls and tracks the remote proxy
// address per destination chain
//
// the client never stores durable state optimistically; a lost packet
// can only delay an update, never corrupt local state
package client

import (
	"sync"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"

	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/counter"
	"github.com/sovereign-net/accountd/fault"
)

// globals for background process
type clientData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	chain chainname.Name // this chain

	// in-flight calls keyed by correlation id; entries for calls the
	// host never acknowledges stay forever and are listed by Stuck
	pending     *cache.Cache
	correlation counter.Counter

	timeoutCounter counter.Counter

	// set once during initialise
	initialised bool
}

// global data
var globalData clientData

// Initialise - start up the client protocol
func Initialise(chain chainname.Name) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	if err := chain.Valid(); nil != err {
		return err
	}

	globalData.log = logger.New("client")
	globalData.chain = chain
	globalData.pending = cache.New(cache.NoExpiration, 0)

	globalData.initialised = true

	globalData.log.Info("initialised")
	return nil
}

// Finalise - shut down the client protocol
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

// TimeoutCount - packets reported timed out so far
func TimeoutCount() uint64 {
	return globalData.timeoutCounter.Uint64()
}
