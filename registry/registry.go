// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - boundary to the external module registry
//
// the registry computes install fees and instantiates module code; only
// its call surface is defined here, the implementation belongs to a
// separate system
package registry

import (
	"github.com/sovereign-net/accountd/identity"
)

// Funds - amount attached to an install call, in base units
type Funds uint64

// ModuleSpec - one module to install
type ModuleSpec struct {
	ID      string // e.g. "sovereign:etf"
	Version string // e.g. "1.2.0"
	InitMsg []byte // opaque module initialisation data
}

// Registry - the module registry collaborator
//
// SimulateInstall reports the exact funds Install will charge for the
// same module list; an account must attach exactly that amount
type Registry interface {
	SimulateInstall(modules []ModuleSpec) (Funds, error)
	Install(module ModuleSpec, funds Funds) (*identity.Identity, error)
}
