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

package errors

import (
	"regexp"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
)

// re is a shortcut around regexp.MustCompile
func re(s string) *regexp.Regexp {
	return regexp.MustCompile(s)
}

type problem struct {
	regexp      *regexp.Regexp
	description func(error) string
	errCode     StatusCode
	suggestion  func(opts config.Options) []*Suggestion
}

// allErrors maps a phase to its known problems. Within a phase, the first
// matching problem wins.
var allErrors = map[constants.Phase][]problem{
	constants.Chat:     knownChatProblems,
	constants.DB:       knownDBProblems,
	constants.Tool:     knownEngineProblems,
	constants.Backtest: knownEngineProblems,
	constants.Import:   knownImportProblems,
}
