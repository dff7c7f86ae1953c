// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/sovereign-net/accountd/accountid"
	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/governance"
	"github.com/sovereign-net/accountd/identity"
	"github.com/sovereign-net/accountd/registry"
	"github.com/sovereign-net/accountd/storage"
	"github.com/sovereign-net/accountd/util"
)

// MaximumModules - cap on the module whitelist of one account
const MaximumModules = 20

// Whitelist - the ordered list of installed module addresses
func Whitelist(trx storage.Transaction, id accountid.AccountID) ([]*identity.Identity, error) {
	packed := trx.Get(storage.Pool.Modules, id.Pack())
	if nil == packed {
		return nil, nil
	}
	return unpackIdentityList(packed)
}

// InstallModules - install modules through the registry collaborator
//
// the attached funds must equal exactly what the registry simulates for
// the same module list; the whole call is one transaction so a registry
// failure leaves neither whitelist entries nor other account state
// behind
func InstallModules(trx storage.Transaction, id accountid.AccountID, sender *identity.Identity, modules []registry.ModuleSpec, funds registry.Funds, reg registry.Registry, nft NFTQuerier, maxDepth int) ([]*identity.Identity, error) {

	record, err := Ownership(trx, id)
	if nil != err {
		return nil, err
	}

	q := StoreQuerier(trx, nft)
	controller, err := record.Current.Resolve(q, maxDepth)
	if nil != err {
		return nil, err
	}
	if !governance.SameIdentity(sender, controller) {
		return nil, fault.ErrNotOwner
	}

	// per module cost so each install call carries its own share
	costs := make([]registry.Funds, len(modules))
	total := registry.Funds(0)
	for i, module := range modules {
		cost, err := reg.SimulateInstall([]registry.ModuleSpec{module})
		if nil != err {
			return nil, err
		}
		costs[i] = cost
		total += cost
	}
	if funds != total {
		return nil, fault.ErrFundsMismatch
	}

	whitelist, err := Whitelist(trx, id)
	if nil != err {
		return nil, err
	}
	if len(whitelist)+len(modules) > MaximumModules {
		return nil, fault.ErrModuleLimitReached
	}

	installed := make([]*identity.Identity, 0, len(modules))
	for i, module := range modules {
		address, err := reg.Install(module, costs[i])
		if nil != err {
			return nil, err
		}
		installed = append(installed, address)
		whitelist = append(whitelist, address)
	}

	trx.Put(storage.Pool.Modules, id.Pack(), packIdentityList(whitelist))
	return installed, nil
}

func packIdentityList(ids []*identity.Identity) []byte {
	buffer := util.ToVarint64(uint64(len(ids)))
	for _, id := range ids {
		data := id.Bytes()
		buffer = append(buffer, util.ToVarint64(uint64(len(data)))...)
		buffer = append(buffer, data...)
	}
	return buffer
}

func unpackIdentityList(buffer []byte) ([]*identity.Identity, error) {
	count, n := util.FromVarint64(buffer)
	if 0 == n {
		return nil, fault.ErrCannotDecodePacket
	}
	ids := make([]*identity.Identity, 0, count)
	for i := uint64(0); i < count; i += 1 {
		length, lengthLength := util.FromVarint64(buffer[n:])
		if 0 == lengthLength || uint64(len(buffer[n+lengthLength:])) < length {
			return nil, fault.ErrCannotDecodePacket
		}
		n += lengthLength
		id, err := identity.IdentityFromBytes(buffer[n : n+int(length)])
		if nil != err {
			return nil, err
		}
		ids = append(ids, id)
		n += int(length)
	}
	return ids, nil
}
