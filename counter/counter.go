// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - lock free statistics counters
//
// used for correlation id allocation and for the packet, effect and
// timeout tallies the protocol packages expose to operators; values
// only ever grow, a restart starts the tallies from zero again
package counter

import (
	"sync/atomic"
)

// Counter - a monotonic counter safe for concurrent use
type Counter uint64

// Increment - add 1 to a counter, returns new value
//
// the returned value is used directly as the next correlation id so
// zero is never handed out
func (counter *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(counter), 1)
}

// Uint64 - read a counter, returns current value
func (counter *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(counter))
}
