// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainname_test

import (
	"testing"

	"github.com/sovereign-net/accountd/chainname"
)

// chain name syntax checks
func TestValid(t *testing.T) {

	testData := []struct {
		name chainname.Name
		ok   bool
	}{
		{"juno", true},
		{"osmosis-1", true},
		{"a", true},
		{"", false},
		{"Juno", false},
		{"juno_1", false},
		{"a-name-that-is-way-too-long", false},
	}

	for i, item := range testData {
		err := item.name.Valid()
		if item.ok && nil != err {
			t.Errorf("%d: %q rejected: %s", i, item.name, err)
		}
		if !item.ok && nil == err {
			t.Errorf("%d: %q accepted", i, item.name)
		}
	}
}
