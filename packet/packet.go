// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package packet - the wire contract between host and client chains
//
// a packet is a tagged union, the tag encoded as a Varint64 at the
// start of the packed record; every reply travels inside an
// acknowledgment envelope that is either Ok with a payload or Err with
// a message
package packet

import (
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
)

// channel handshake constants
//
// a channel carrying this protocol must be ordered and both ends must
// speak exactly this version; the version is returned verbatim on open,
// an unrecognized counterparty version is never echoed
const (
	Version  = "sovereign-account-1"
	Ordering = "ordered"
)

// Tag - type code for packet variants
type Tag uint64

// enumerate the possible packets
const (
	// null marks beginning of list - not used as a packet
	NullTag = Tag(iota)

	// valid packets
	RegisterTag = Tag(iota) // provision a proxy account on the host
	QueryTag    = Tag(iota) // batch of read-only requests
	WhoAmITag   = Tag(iota) // post-open chain identification handshake
	ExecuteTag  = Tag(iota) // run actions on an existing proxy
	DepositTag  = Tag(iota) // move funds to an existing proxy

	// this item must be last
	invalidTag = Tag(iota)
)

// Packet - one wire message
type Packet interface {
	Tag() Tag
	Pack() []byte
}

// Register - ask the host chain to provision a proxy account
type Register struct {
	Account      accountid.AccountID
	ProxyAddress *identity.Identity // the origin side address of the account
	Name         string
	Description  string
	Link         string
}

// Query - read-only requests against host chain state
//
// each request is an opaque byte string executed through the host's raw
// query boundary; results come back per item, one failure does not fail
// the batch
type Query struct {
	Requests [][]byte
}

// WhoAmI - sent by the client straight after a channel opens
//
// the host checks the claimed chain against its registered client and
// answers with its own chain name
type WhoAmI struct {
	Chain  chainname.Name
	Client *identity.Identity
}

// Execute - run actions on the proxy of an already registered account
type Execute struct {
	Account accountid.AccountID
	Actions [][]byte
}

// Deposit - move funds to the proxy of an already registered account
type Deposit struct {
	Account accountid.AccountID
	Amount  uint64
}

func (r *Register) Tag() Tag { return RegisterTag }
func (q *Query) Tag() Tag    { return QueryTag }
func (w *WhoAmI) Tag() Tag   { return WhoAmITag }
func (e *Execute) Tag() Tag  { return ExecuteTag }
func (d *Deposit) Tag() Tag  { return DepositTag }

// String - packet type name for logging
func (tag Tag) String() string {
	switch tag {
	case RegisterTag:
		return "register"
	case QueryTag:
		return "query"
	case WhoAmITag:
		return "who-am-i"
	case ExecuteTag:
		return "execute"
	case DepositTag:
		return "deposit"
	default:
		return "*unknown*"
	}
}

// CheckOrder - only the single mandated channel ordering is accepted
func CheckOrder(order string) error {
	if Ordering != order {
		return fault.ErrInvalidChannelOrder
	}
	return nil
}

// CheckVersion - only the fixed protocol version is accepted
func CheckVersion(version string) error {
	if Version != version {
		return fault.ErrUnsupportedVersion
	}
	return nil
}

// Negotiate - validate a channel open proposal
//
// returns the protocol version verbatim so both ends are guaranteed to
// run compatible packet schemas
func Negotiate(order string, version string) (string, error) {
	if err := CheckOrder(order); nil != err {
		return "", err
	}
	if err := CheckVersion(version); nil != err {
		return "", err
	}
	return Version, nil
}
