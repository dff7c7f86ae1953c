// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/client"
	"github.com/sovereign-net/accountd/configuration"
	"github.com/sovereign-net/accountd/dispatcher"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/host"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/mode"
	"github.com/sovereign-net/accountd/provision"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/transport"
	"github.com/sovereign-net/accountd/version"
)

// deadline for one outbound packet cycle; past it the pending call is
// reported as a timeout
const acknowledgmentTimeout = 30 * time.Second

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, _, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version.Version)
	}

	if len(options["help"]) > 0 {
		exitwithstatus.Message("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE", program)
	}

	// missing option falls back to "accountd.conf" in the working
	// directory
	configurationFile := configuration.DefaultFileName
	switch len(options["config-file"]) {
	case 0:
	case 1:
		configurationFile = options["config-file"][0]
	default:
		exitwithstatus.Message("%s: only one config-file option is allowed, %d were detected", program, len(options["config-file"]))
	}
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version.Version)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// set the initial system mode - before any background tasks are started
	err = mode.Initialise(theConfiguration.Chain)
	if nil != err {
		log.Criticalf("mode initialise error: %s", err)
		exitwithstatus.Message("mode initialise error: %s", err)
	}
	defer mode.Finalise()

	// the daemon's own controlling identity
	hostIdentity, err := identity.IdentityFromBase58(theConfiguration.Identity)
	if nil != err {
		log.Criticalf("identity: %q error: %s", theConfiguration.Identity, err)
		exitwithstatus.Message("identity: %q error: %s", theConfiguration.Identity, err)
	}

	// the account pools
	err = storage.Initialise(theConfiguration.Database.Name)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	localChain := chainname.Name(theConfiguration.Chain)

	// client side of the registration protocol
	err = client.Initialise(localChain)
	if nil != err {
		log.Criticalf("client initialise error: %s", err)
		exitwithstatus.Message("client initialise error: %s", err)
	}
	defer client.Finalise()

	// host side of the registration protocol
	err = host.Initialise(localChain, hostIdentity, nil, ownershipQuery, theConfiguration.NestingLimit)
	if nil != err {
		log.Criticalf("host initialise error: %s", err)
		exitwithstatus.Message("host initialise error: %s", err)
	}
	defer host.Finalise()

	// register the expected counterparty clients
	connections := make([]dispatcher.Connection, 0, len(theConfiguration.Connect))
	for _, connection := range theConfiguration.Connect {
		clientIdentity, err := identity.IdentityFromBase58(connection.Client)
		if nil != err {
			log.Criticalf("connect: %q client error: %s", connection.Chain, err)
			exitwithstatus.Message("connect: %q client error: %s", connection.Chain, err)
		}
		err = host.RegisterClient(chainname.Name(connection.Chain), clientIdentity)
		if nil != err {
			log.Criticalf("connect: %q register error: %s", connection.Chain, err)
			exitwithstatus.Message("connect: %q register error: %s", connection.Chain, err)
		}
		connections = append(connections, dispatcher.Connection{
			ChannelID: connection.Channel,
			Address:   connection.Address,
		})
	}

	// proxy-creation and execute/deposit effects
	err = provision.Initialise()
	if nil != err {
		log.Criticalf("provision initialise error: %s", err)
		exitwithstatus.Message("provision initialise error: %s", err)
	}
	defer provision.Finalise()

	// outbound packet delivery, one connection per configured channel
	if len(connections) > 0 {
		err = dispatcher.Initialise(connections, acknowledgmentTimeout)
		if nil != err {
			log.Criticalf("dispatcher initialise error: %s", err)
			exitwithstatus.Message("dispatcher initialise error: %s", err)
		}
		defer dispatcher.Finalise()
	}

	// serve inbound packets
	err = transport.Initialise(theConfiguration.Listen, receivePacket)
	if nil != err {
		log.Criticalf("transport initialise error: %s", err)
		exitwithstatus.Message("transport initialise error: %s", err)
	}
	defer transport.Finalise()

	// all services are up
	mode.Set(mode.Normal)

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	log.Info("shutting down…")
}

// each inbound frame is processed inside one storage transaction so a
// failed packet leaves no partial state behind
//
// the transaction is shared with the background consumers, so retry
// briefly while one of them holds it
func receivePacket(channelID string, payload []byte) []byte {
	var trx storage.Transaction
	var err error
	deadline := time.Now().Add(5 * time.Second)
	for {
		trx, err = storage.NewDBTransaction()
		if nil == err {
			break
		}
		if !fault.IsErrProcess(err) || time.Now().After(deadline) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	// a failure acknowledgment can still carry state, e.g. a stored
	// registration waiting on its proxy effect, so the transaction is
	// always committed; handlers validate before they write
	ack := host.ReceivePacket(trx, channelID, payload)
	if err := trx.Commit(); nil != err {
		trx.Abort()
		return nil
	}
	return ack.Pack()
}

// the raw query boundary: a request is a packed account identifier,
// the answer is the packed ownership record
func ownershipQuery(request []byte) ([]byte, error) {
	id, _, err := accountid.Unpack(request)
	if nil != err {
		return nil, err
	}
	packed := storage.Pool.Ownership.Get(id.Pack())
	if nil == packed {
		return nil, fault.ErrAccountNotFound
	}
	return packed, nil
}
