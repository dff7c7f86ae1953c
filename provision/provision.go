// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package provision - executes deferred proxy effects
//
// drains the effect queue: creates the proxy account a registration is
// waiting on, overwriting its stored acknowledgment through the host
// package, and applies execute/deposit effects addressed to already
// provisioned proxies
package provision

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/ed25519"

	"github.com/sovereign-net/accountd/background"
	"github.com/sovereign-net/accountd/counter"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/host"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/messagebus"
	"github.com/sovereign-net/accountd/mode"
	"github.com/sovereign-net/accountd/packet"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// retry interval while the shared transaction is held elsewhere
const transactionRetryDelay = 10 * time.Millisecond

// the effect consumer
type provisioner struct {
	log *logger.L
}

// globals for background process
type provisionData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	prov provisioner

	// effect statistics
	proxiedCounter counter.Counter
	appliedCounter counter.Counter
	failedCounter  counter.Counter

	// for background processes
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData provisionData

// Initialise - start the effect consumer
//
// the host package must already be initialised: every proxy-create
// effect completes or fails through it
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("provision")
	globalData.log.Info("starting…")

	globalData.prov.log = logger.New("provisioner")

	globalData.initialised = true

	processes := background.Processes{
		globalData.prov.run,
	}
	globalData.background = background.Start(processes, globalData.log)
	return nil
}

// Finalise - stop the effect consumer
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	background.Stop(globalData.background)

	globalData.log.Info("finalised")
	globalData.initialised = false
	return nil
}

// ProxiedCount - proxy accounts created so far
func ProxiedCount() uint64 {
	return globalData.proxiedCounter.Uint64()
}

// AppliedCount - execute/deposit effects applied so far
func AppliedCount() uint64 {
	return globalData.appliedCounter.Uint64()
}

// FailedCount - effects that ended in a failed registration
func FailedCount() uint64 {
	return globalData.failedCounter.Uint64()
}

// drain the effect queue until shutdown
func (prov *provisioner) run(args interface{}, shutdown <-chan bool, done chan<- bool) {
	defer close(done)

	log := prov.log
	log.Info("starting…")

	queue := messagebus.Bus.Effect.Chan()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case message := <-queue:
			prov.process(message, shutdown)
		}
	}
	log.Info("stopped")
}

// one effect message
func (prov *provisioner) process(message messagebus.Message, shutdown <-chan bool) {

	log := prov.log
	log.Debugf("received message: %q", message.Command)

	switch message.Command {

	case "proxy-create":
		if 3 != len(message.Parameters) {
			log.Errorf("%s: invalid parameter count: %d", message.Command, len(message.Parameters))
			return
		}
		correlation, count := util.FromVarint64(message.Parameters[0])
		if 0 == count {
			log.Errorf("%s: invalid correlation", message.Command)
			return
		}
		prov.createProxy(correlation, shutdown)

	case "proxy-execute", "proxy-deposit":
		if 2 != len(message.Parameters) {
			log.Errorf("%s: invalid parameter count: %d", message.Command, len(message.Parameters))
			return
		}
		prov.apply(message.Command, message.Parameters[1])

	default:
		log.Errorf("ignored message: %q", message.Command)
	}
}

// complete one pending registration with a freshly keyed proxy
func (prov *provisioner) createProxy(correlation uint64, shutdown <-chan bool) {

	log := prov.log

	proxy, err := newProxyIdentity()
	if nil != err {
		log.Criticalf("proxy key generation failed: %s", err)
		return
	}

	trx := acquireTransaction(shutdown)
	if nil == trx {
		return // shutting down, the effect stays pending
	}

	err = host.CompleteRegistration(trx, correlation, proxy)
	if nil != err {
		// the failure acknowledgment is itself durable state
		if failErr := host.FailRegistration(trx, correlation, err.Error()); nil != failErr {
			log.Errorf("correlation: %d fail error: %s", correlation, failErr)
			trx.Abort()
			return
		}
		globalData.failedCounter.Increment()
		log.Warnf("correlation: %d failed: %s", correlation, err)
	} else {
		globalData.proxiedCounter.Increment()
		log.Infof("correlation: %d proxy: %s", correlation, proxy)
	}

	if err := trx.Commit(); nil != err {
		trx.Abort()
		log.Criticalf("correlation: %d commit error: %s", correlation, err)
	}
}

// execute and deposit effects act on already provisioned proxies; the
// packet content is the action record
func (prov *provisioner) apply(command string, payload []byte) {

	log := prov.log

	p, _, err := packet.Unpack(payload)
	if nil != err {
		log.Errorf("%s: unpack error: %s", command, err)
		return
	}

	switch p := p.(type) {
	case *packet.Execute:
		log.Infof("execute: %s actions: %d", p.Account, len(p.Actions))
	case *packet.Deposit:
		log.Infof("deposit: %s amount: %d", p.Account, p.Amount)
	default:
		log.Errorf("%s: unexpected packet: %s", command, p.Tag())
		return
	}
	globalData.appliedCounter.Increment()
}

// a proxy account gets its own fresh key on this chain
func newProxyIdentity() (*identity.Identity, error) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, err
	}
	return &identity.Identity{
		IdentityInterface: &identity.ED25519Identity{
			Test:      mode.IsTesting(),
			PublicKey: publicKey,
		},
	}, nil
}

// the shared transaction is exclusive; retry until it is free or the
// process is shutting down
func acquireTransaction(shutdown <-chan bool) storage.Transaction {
	for {
		trx, err := storage.NewDBTransaction()
		if nil == err {
			return trx
		}
		if !fault.IsErrProcess(err) {
			return nil
		}
		select {
		case <-shutdown:
			return nil
		case <-time.After(transactionRetryDelay):
		}
	}
}
