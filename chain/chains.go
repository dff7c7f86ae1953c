// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

// names of all networks
const (
	Sovereign = "sovereign"
	Testing   = "testing"
	Local     = "local"
)

// Valid - validate a network name
func Valid(name string) bool {
	switch name {
	case Sovereign, Testing, Local:
		return true
	default:
		return false
	}
}
