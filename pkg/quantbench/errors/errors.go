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
	"fmt"
	"strings"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
)

// StatusCode classifies an error for the event log and API clients.
type StatusCode string

const (
	OK           StatusCode = "OK"
	UnknownError StatusCode = "UNKNOWN_ERROR"

	ChatUnknown        StatusCode = "CHAT_UNKNOWN"
	ChatLLMAuthErr     StatusCode = "CHAT_LLM_AUTH_ERR"
	ChatLLMRateLimited StatusCode = "CHAT_LLM_RATE_LIMITED"
	ChatLLMQuota       StatusCode = "CHAT_LLM_QUOTA_EXHAUSTED"
	ChatCancelled      StatusCode = "CHAT_CANCELLED"

	RetrievalUnknown StatusCode = "RETRIEVAL_UNKNOWN"
	IngestUnknown    StatusCode = "INGEST_UNKNOWN"

	DBUnknown           StatusCode = "DB_UNKNOWN"
	DBConnectionRefused StatusCode = "DB_CONNECTION_REFUSED"
	DBAuthFailed        StatusCode = "DB_AUTH_FAILED"
	DBVectorMissing     StatusCode = "DB_VECTOR_EXTENSION_MISSING"
	DBRelationMissing   StatusCode = "DB_RELATION_MISSING"

	ToolUnknown             StatusCode = "TOOL_UNKNOWN"
	EngineUnreachable       StatusCode = "ENGINE_UNREACHABLE"
	EngineTimeout           StatusCode = "ENGINE_TIMEOUT"
	BacktestUnknown         StatusCode = "BACKTEST_UNKNOWN"
	BacktestStrategyInvalid StatusCode = "BACKTEST_STRATEGY_INVALID"

	ImportUnknown       StatusCode = "IMPORT_UNKNOWN"
	ImportBadArchive    StatusCode = "IMPORT_BAD_ARCHIVE"
	ImportCopyFailed    StatusCode = "IMPORT_COPY_FAILED"
	ImportSourceMissing StatusCode = "IMPORT_SOURCE_MISSING"

	ConfigUnknown  StatusCode = "CONFIG_UNKNOWN"
	ServiceUnknown StatusCode = "SERVICE_UNKNOWN"
)

// SuggestionCode identifies a fix the user can try.
type SuggestionCode string

const (
	CheckDBURIFlag         SuggestionCode = "CHECK_DB_URI_FLAG"
	CheckDBURIGlobalConfig SuggestionCode = "CHECK_DB_URI_GLOBAL_CONFIG"
	SetDBURIEnv            SuggestionCode = "SET_DB_URI_ENV"
	CheckDBCredentials     SuggestionCode = "CHECK_DB_CREDENTIALS"
	InstallPGVector        SuggestionCode = "INSTALL_PGVECTOR"
	CreateTables           SuggestionCode = "CREATE_TABLES"

	SetAPIKeyEnv SuggestionCode = "SET_API_KEY_ENV"
	RetryLater   SuggestionCode = "RETRY_LATER"
	TopUpBalance SuggestionCode = "TOP_UP_BALANCE"

	CheckEngineURLFlag         SuggestionCode = "CHECK_ENGINE_URL_FLAG"
	CheckEngineURLGlobalConfig SuggestionCode = "CHECK_ENGINE_URL_GLOBAL_CONFIG"
	StartEngine                SuggestionCode = "START_ENGINE"
	CheckEngineLogs            SuggestionCode = "CHECK_ENGINE_LOGS"
	CheckStrategyDoc           SuggestionCode = "CHECK_STRATEGY_DOC"

	CheckArchive      SuggestionCode = "CHECK_ARCHIVE"
	CheckImportSource SuggestionCode = "CHECK_IMPORT_SOURCE"
	CheckBatchLog     SuggestionCode = "CHECK_BATCH_LOG"

	OpenIssue SuggestionCode = "OPEN_ISSUE"
)

// Suggestion is a fix the user can try for a classified error.
type Suggestion struct {
	SuggestionCode SuggestionCode `json:"suggestionCode,omitempty"`
	Action         string         `json:"action,omitempty"`
}

// ActionableErr is an error bundled with its code and suggestions, as
// published on the event stream.
type ActionableErr struct {
	ErrCode     StatusCode    `json:"errCode,omitempty"`
	Message     string        `json:"message,omitempty"`
	Suggestions []*Suggestion `json:"suggestions,omitempty"`
}

// quantbenchOpts is set once at startup. The options are used later to
// suggest actionable error messages based on the run context.
var quantbenchOpts config.Options

// SetOptions sets the command line options used when building suggestions.
func SetOptions(opts config.Options) {
	quantbenchOpts = opts
}

// ShowAIError checks the error against all known problems and returns a more
// actionable message when one matches. The error is returned unchanged when
// nothing matches or the match carries no suggestion.
func ShowAIError(err error) error {
	for _, problems := range allErrors {
		for _, p := range problems {
			if p.regexp.MatchString(err.Error()) {
				if suggestions := p.suggestion(quantbenchOpts); suggestions != nil {
					description := p.description(err)
					return fmt.Errorf("%s. %s", strings.Trim(description, "."), concatSuggestions(suggestions))
				}
			}
		}
	}
	return err
}

// NewActionableErr returns an actionable error message with suggestions.
func NewActionableErr(phase constants.Phase, err error) *ActionableErr {
	errCode, suggestions := getErrorCodeFromError(phase, err)
	return &ActionableErr{
		ErrCode:     errCode,
		Message:     err.Error(),
		Suggestions: suggestions,
	}
}

func getErrorCodeFromError(phase constants.Phase, err error) (StatusCode, []*Suggestion) {
	if problems, ok := allErrors[phase]; ok {
		for _, p := range problems {
			if p.regexp.MatchString(err.Error()) {
				return p.errCode, p.suggestion(quantbenchOpts)
			}
		}
	}

	return unknownErrForPhase(phase), nil
}

func unknownErrForPhase(phase constants.Phase) StatusCode {
	switch phase {
	case constants.Chat:
		return ChatUnknown
	case constants.Retrieval:
		return RetrievalUnknown
	case constants.Ingest:
		return IngestUnknown
	case constants.DB:
		return DBUnknown
	case constants.Tool:
		return ToolUnknown
	case constants.Backtest:
		return BacktestUnknown
	case constants.Import:
		return ImportUnknown
	case constants.Config:
		return ConfigUnknown
	case constants.Service:
		return ServiceUnknown
	}
	return UnknownError
}

func concatSuggestions(suggestions []*Suggestion) string {
	var s strings.Builder
	for _, suggestion := range suggestions {
		if s.String() != "" {
			s.WriteString(" or ")
		}
		s.WriteString(suggestion.Action)
	}
	if s.String() == "" {
		return ""
	}
	s.WriteString(".")
	return s.String()
}

func reportIssueSuggestion(config.Options) []*Suggestion {
	return []*Suggestion{{
		SuggestionCode: OpenIssue,
		Action:         "Open an issue at https://github.com/quantbench/quantbench/issues",
	}}
}
