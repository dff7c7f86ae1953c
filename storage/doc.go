// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintains a single LevelDB database split into a series of prefixed
// pools, one per record kind:
//
//   Ownership             O   account id → ownership record
//   Accounts              A   account id → account data
//   SubAccounts           S   parent id ‖ child id → 1
//   Modules               M   account id → whitelisted module list
//   ChannelRegistrations  C   channel ‖ account id → remote proxy address
//   RemoteAccounts        R   account id ‖ chain → remote proxy address
//   Channels              N   channel id → channel state
//   Control               K   counters (next account sequence)
//   TestData              Z   reserved for testing
//
// every write inside one operation goes through a single shared
// Transaction so that a later failure reverts the earlier writes of the
// same operation
package storage
