// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"bytes"
	"testing"

	"github.com/sovereign-net/accountd/util"
)

// test Varint64 round trip
func TestVarint64(t *testing.T) {

	testData := []struct {
		value   uint64
		encoded []byte
	}{
		{0x00, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for i, item := range testData {
		encoded := util.ToVarint64(item.value)
		if !bytes.Equal(encoded, item.encoded) {
			t.Errorf("%d: encode: %d → %x expected %x", i, item.value, encoded, item.encoded)
		}
		decoded, count := util.FromVarint64(item.encoded)
		if decoded != item.value || count != len(item.encoded) {
			t.Errorf("%d: decode: %x → %d (%d bytes) expected %d", i, item.encoded, decoded, count, item.value)
		}
	}

	// truncated buffer
	if v, n := util.FromVarint64([]byte{0x80}); 0 != v || 0 != n {
		t.Errorf("truncated varint decoded to: %d, %d", v, n)
	}
}

// test clipped values
func TestClippedVarint64(t *testing.T) {
	buffer := util.ToVarint64(300)

	v, n := util.ClippedVarint64(buffer, 1, 1000)
	if 300 != v || len(buffer) != n {
		t.Errorf("clip: %d, %d expected 300", v, n)
	}

	v, n = util.ClippedVarint64(buffer, 1, 100)
	if 0 != v || 0 != n {
		t.Errorf("out of range clip returned: %d, %d", v, n)
	}
}
