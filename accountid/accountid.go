// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package accountid - unique account identifiers
//
// an account is identified by the sequence number assigned on the chain
// that created it together with the trace of chains it was registered
// across; a locally created account has an empty trace
package accountid

import (
	"strconv"
	"strings"

	"github.com/sovereign-net/accountd/chainname"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/util"
)

// the longest registration chain an identifier can carry
const maxTraceLength = 6

// AccountID - identifies one account across every ledger it has a
// projection on; immutable once created
type AccountID struct {
	Sequence uint32
	Trace    []chainname.Name
}

// Local - identifier for an account created on this chain
func Local(sequence uint32) AccountID {
	return AccountID{
		Sequence: sequence,
		Trace:    nil,
	}
}

// Remote - identifier for an account that hopped one or more chains
func Remote(sequence uint32, trace []chainname.Name) (AccountID, error) {
	id := AccountID{
		Sequence: sequence,
		Trace:    trace,
	}
	if err := id.Verify(); nil != err {
		return AccountID{}, err
	}
	if id.IsLocal() {
		return AccountID{}, fault.ErrMustBeRemote
	}
	return id, nil
}

// IsLocal - true if the account was created on this chain
func (id AccountID) IsLocal() bool {
	return 0 == len(id.Trace)
}

// Verify - check all trace entries are syntactically valid
func (id AccountID) Verify() error {
	if len(id.Trace) > maxTraceLength {
		return fault.ErrInvalidChainName
	}
	for _, name := range id.Trace {
		if err := name.Valid(); nil != err {
			return err
		}
	}
	return nil
}

// VerifyRemote - a registration packet must name an account from
// another chain
func (id AccountID) VerifyRemote() error {
	if err := id.Verify(); nil != err {
		return err
	}
	if id.IsLocal() {
		return fault.ErrMustBeRemote
	}
	return nil
}

// ExtendTrace - derive the identifier the account will have on the
// destination chain; the receiver is unchanged
func (id AccountID) ExtendTrace(destination chainname.Name) AccountID {
	trace := make([]chainname.Name, len(id.Trace), len(id.Trace)+1)
	copy(trace, id.Trace)
	return AccountID{
		Sequence: id.Sequence,
		Trace:    append(trace, destination),
	}
}

// Equal - identifier comparison
func (id AccountID) Equal(rhs AccountID) bool {
	if id.Sequence != rhs.Sequence || len(id.Trace) != len(rhs.Trace) {
		return false
	}
	for i, name := range id.Trace {
		if name != rhs.Trace[i] {
			return false
		}
	}
	return true
}

// String - e.g. "local-7" or "juno>osmosis-7"
func (id AccountID) String() string {
	if id.IsLocal() {
		return "local-" + strconv.FormatUint(uint64(id.Sequence), 10)
	}
	names := make([]string, len(id.Trace))
	for i, name := range id.Trace {
		names[i] = name.String()
	}
	return strings.Join(names, ">") + "-" + strconv.FormatUint(uint64(id.Sequence), 10)
}

// MarshalText - convert an identifier to text
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Pack - binary form: Varint64(sequence) Varint64(count) {Varint64(length) bytes}…
func (id AccountID) Pack() []byte {
	buffer := util.ToVarint64(uint64(id.Sequence))
	buffer = append(buffer, util.ToVarint64(uint64(len(id.Trace)))...)
	for _, name := range id.Trace {
		buffer = append(buffer, util.ToVarint64(uint64(len(name)))...)
		buffer = append(buffer, name...)
	}
	return buffer
}

// Unpack - decode an identifier from the start of a buffer
//
// also returns the number of bytes consumed
func Unpack(buffer []byte) (AccountID, int, error) {
	sequence, sequenceLength := util.FromVarint64(buffer)
	if 0 == sequenceLength || sequence > 0xffffffff {
		return AccountID{}, 0, fault.ErrCannotDecodePacket
	}
	n := sequenceLength

	count, countLength := util.FromVarint64(buffer[n:])
	if 0 == countLength || count > maxTraceLength {
		return AccountID{}, 0, fault.ErrCannotDecodePacket
	}
	n += countLength

	var trace []chainname.Name
	for i := uint64(0); i < count; i += 1 {
		length, lengthLength := util.FromVarint64(buffer[n:])
		if 0 == lengthLength {
			return AccountID{}, 0, fault.ErrCannotDecodePacket
		}
		n += lengthLength
		if uint64(len(buffer[n:])) < length {
			return AccountID{}, 0, fault.ErrCannotDecodePacket
		}
		name := chainname.Name(buffer[n : n+int(length)])
		if err := name.Valid(); nil != err {
			return AccountID{}, 0, err
		}
		trace = append(trace, name)
		n += int(length)
	}

	return AccountID{
		Sequence: uint32(sequence),
		Trace:    trace,
	}, n, nil
}
