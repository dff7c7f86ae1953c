// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainname - identifiers for the ledgers an account can be
// projected onto
//
// a chain name is the stable, human readable identifier of one ledger;
// an account trace is an ordered list of these
package chainname

import (
	"github.com/sovereign-net/accountd/fault"
)

// length limits for a chain name
const (
	minNameLength = 1
	maxNameLength = 20
)

// Name - a single chain identifier
type Name string

// Valid - check the syntax of a chain name
//
// lowercase ascii letters, digits and hyphens only
func (name Name) Valid() error {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return fault.ErrInvalidChainName
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case '-' == c:
		default:
			return fault.ErrInvalidChainName
		}
	}
	return nil
}

// String - conversion for the fmt package
func (name Name) String() string {
	return string(name)
}

// MarshalText - convert a name to text
func (name Name) MarshalText() ([]byte, error) {
	if err := name.Valid(); nil != err {
		return nil, err
	}
	return []byte(name), nil
}

// UnmarshalText - convert text to a name
func (name *Name) UnmarshalText(s []byte) error {
	n := Name(s)
	if err := n.Valid(); nil != err {
		return err
	}
	*name = n
	return nil
}
