/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"testing"

	"github.com/quantbench/quantbench/testutil"
)

func TestStringSet(t *testing.T) {
	set := NewStringSet()
	testutil.CheckDeepEqual(t, []string(nil), set.ToList())

	set.Insert("b", "a", "b")
	testutil.CheckDeepEqual(t, []string{"a", "b"}, set.ToList())
	testutil.CheckDeepEqual(t, true, set.Contains("a"))
	testutil.CheckDeepEqual(t, false, set.Contains("c"))
}
