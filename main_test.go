// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist_test

import (
	"testing"

	"github.com/featurebasedb/indexedlist/testhook"
)

func TestMain(m *testing.M) {
	testhook.RunTestsWithHooks(m)
}
