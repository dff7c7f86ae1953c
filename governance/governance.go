// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package governance - who controls an account
//
// a governance value is a closed sum type describing the controller of
// one entity: a single key, another account, an NFT, an opaque external
// contract, or nobody at all; each variant implements resolution and
// verification once, call sites never match on variants themselves
package governance

import (
	"bytes"

	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/identity"
)

// Tag - type code for governance variants
type Tag uint64

// enumerate the possible governance variants
// this is encoded as a Varint64 at start of the packed value
const (
	// null marks beginning of list - not used as a variant
	NullTag = Tag(iota)

	// valid variants
	MonarchyTag   = Tag(iota) // a single key controls the account
	SubAccountTag = Tag(iota) // the account is owned by another account
	NFTTag        = Tag(iota) // controller is the holder of an NFT
	ExternalTag   = Tag(iota) // an opaque external contract, e.g. a cross-chain host
	RenouncedTag  = Tag(iota) // terminal, nobody controls the account

	// this item must be last
	invalidTag = Tag(iota)
)

// length limits for the external governance kind string
const (
	minKindLength = 4
	maxKindLength = 64
)

// Querier - read access the resolution process needs
//
// the governance state machine itself holds no storage, the caller
// provides lookups for parent ownership records and NFT holders
type Querier interface {
	// OwnershipOf - load the current ownership record of an account
	OwnershipOf(id accountid.AccountID) (*Record, error)

	// NFTOwner - current holder of a token in a collection
	NFTOwner(collection *identity.Identity, tokenID string) (*identity.Identity, error)
}

// Value - one governance variant
type Value interface {
	// Tag - the variant type code
	Tag() Tag

	// Resolve - walk to the controlling identity
	//
	// maxDepth bounds the sub-account recursion; returns
	// fault.ErrNoOwner for renounced governance and
	// fault.ErrRecursionLimit when the budget is exhausted
	Resolve(q Querier, maxDepth int) (*identity.Identity, error)

	// Verify - check the value is acceptable as a stored owner
	Verify(q Querier) error

	// Pack - binary form: Varint64(tag) followed by fields
	Pack() []byte

	// String - short variant name for logging
	String() string
}

// Monarchy - a single controlling identity
type Monarchy struct {
	Owner *identity.Identity
}

// SubAccount - owned by another account's controller
type SubAccount struct {
	Parent accountid.AccountID
}

// NFT - ownership tracked by an external NFT collection
type NFT struct {
	Collection *identity.Identity
	TokenID    string
}

// External - an opaque external controller
type External struct {
	Address *identity.Identity
	Kind    string
}

// Renounced - terminal, no controller
type Renounced struct{}

// SameIdentity - compare two identities by their encoded keys
func SameIdentity(a *identity.Identity, b *identity.Identity) bool {
	if nil == a || nil == b {
		return false
	}
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// Monarchy
// --------

func (m Monarchy) Tag() Tag { return MonarchyTag }

func (m Monarchy) Resolve(q Querier, maxDepth int) (*identity.Identity, error) {
	return m.Owner, nil
}

func (m Monarchy) Verify(q Querier) error {
	if nil == m.Owner {
		return fault.ErrInvalidGovernance
	}
	return nil
}

func (m Monarchy) String() string { return "monarchy" }

// SubAccount
// ----------

func (s SubAccount) Tag() Tag { return SubAccountTag }

func (s SubAccount) Resolve(q Querier, maxDepth int) (*identity.Identity, error) {
	if maxDepth <= 0 {
		return nil, fault.ErrRecursionLimit
	}
	parent, err := q.OwnershipOf(s.Parent)
	if nil != err {
		return nil, err
	}
	return parent.Current.Resolve(q, maxDepth-1)
}

func (s SubAccount) Verify(q Querier) error {
	// the parent account must exist
	_, err := q.OwnershipOf(s.Parent)
	if nil != err {
		return fault.ErrInvalidGovernance
	}
	return nil
}

func (s SubAccount) String() string { return "sub-account" }

// NFT
// ---

func (n NFT) Tag() Tag { return NFTTag }

func (n NFT) Resolve(q Querier, maxDepth int) (*identity.Identity, error) {
	return q.NFTOwner(n.Collection, n.TokenID)
}

func (n NFT) Verify(q Querier) error {
	if nil == n.Collection || "" == n.TokenID {
		return fault.ErrInvalidGovernance
	}
	// the collection must answer for the token
	_, err := q.NFTOwner(n.Collection, n.TokenID)
	if nil != err {
		return fault.ErrInvalidGovernance
	}
	return nil
}

func (n NFT) String() string { return "nft" }

// External
// --------

func (e External) Tag() Tag { return ExternalTag }

func (e External) Resolve(q Querier, maxDepth int) (*identity.Identity, error) {
	return e.Address, nil
}

func (e External) Verify(q Querier) error {
	if nil == e.Address {
		return fault.ErrInvalidGovernance
	}
	if len(e.Kind) < minKindLength || len(e.Kind) > maxKindLength {
		return fault.ErrInvalidGovernanceKind
	}
	for _, c := range e.Kind {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case '-' == c:
		default:
			return fault.ErrInvalidGovernanceKind
		}
	}
	return nil
}

func (e External) String() string { return e.Kind }

// Renounced
// ---------

func (r Renounced) Tag() Tag { return RenouncedTag }

func (r Renounced) Resolve(q Querier, maxDepth int) (*identity.Identity, error) {
	return nil, fault.ErrNoOwner
}

func (r Renounced) Verify(q Querier) error { return nil }

func (r Renounced) String() string { return "renounced" }
