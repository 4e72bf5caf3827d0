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

import "sort"

// StringSet helps to de-duplicate a set of strings.
type StringSet map[string]bool

// NewStringSet returns a new StringSet object.
func NewStringSet() StringSet {
	return make(map[string]bool)
}

// Insert adds strings to the set.
func (s StringSet) Insert(strings ...string) {
	for _, item := range strings {
		s[item] = true
	}
}

// Contains checks if a string is in the set.
func (s StringSet) Contains(item string) bool {
	return s[item]
}

// ToList returns the sorted list of inserted strings.
func (s StringSet) ToList() []string {
	if len(s) == 0 {
		return nil
	}
	res := make([]string, 0, len(s))
	for item := range s {
		res = append(res, item)
	}
	sort.Strings(res)
	return res
}
