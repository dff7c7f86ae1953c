// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/sovereign-net/accountd/fault"
)

// test that error classification works
func TestClassification(t *testing.T) {

	errorList := []struct {
		err             error
		isAuthorization bool
		isExists        bool
		isInvalid       bool
		isNotFound      bool
		isProcess       bool
	}{
		{fault.ErrNotOwner, true, false, false, false, false},
		{fault.ErrNotPendingOwner, true, false, false, false, false},
		{fault.ErrChannelAlreadyOpen, false, true, false, false, false},
		{fault.ErrTransferToRenounced, false, false, true, false, false},
		{fault.ErrInvalidChannelOrder, false, false, true, false, false},
		{fault.ErrTransferNotFound, false, false, false, true, false},
		{fault.ErrRemoteAccountNotFound, false, false, false, true, false},
		{fault.ErrNotInitialised, false, false, false, false, true},
	}

	for i, item := range errorList {
		if fault.IsErrAuthorization(item.err) != item.isAuthorization {
			t.Errorf("%d: authorization class mismatch for: %v", i, item.err)
		}
		if fault.IsErrExists(item.err) != item.isExists {
			t.Errorf("%d: exists class mismatch for: %v", i, item.err)
		}
		if fault.IsErrInvalid(item.err) != item.isInvalid {
			t.Errorf("%d: invalid class mismatch for: %v", i, item.err)
		}
		if fault.IsErrNotFound(item.err) != item.isNotFound {
			t.Errorf("%d: not found class mismatch for: %v", i, item.err)
		}
		if fault.IsErrProcess(item.err) != item.isProcess {
			t.Errorf("%d: process class mismatch for: %v", i, item.err)
		}
	}
}
