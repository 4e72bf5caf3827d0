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

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
)

// Chat problems are errors returned by the language model API.
var knownChatProblems = []problem{
	{
		regexp:  re("(?i)(invalid.?api.?key|incorrect api key|authentication fails|401 unauthorized|status code 401)"),
		errCode: ChatLLMAuthErr,
		description: func(error) string {
			return "Chat failed. The language model rejected the API key"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: SetAPIKeyEnv,
				Action:         fmt.Sprintf("Set the %s environment variable to a valid key", constants.APIKeyEnvironmentVariable),
			}}
		},
	},
	{
		regexp:  re("(?i)(rate.?limit|too many requests|status code 429)"),
		errCode: ChatLLMRateLimited,
		description: func(error) string {
			return "Chat failed. The language model is rate limiting requests"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: RetryLater,
				Action:         "Wait a moment and send the message again",
			}}
		},
	},
	{
		regexp:  re("(?i)(insufficient.?balance|status code 402)"),
		errCode: ChatLLMQuota,
		description: func(error) string {
			return "Chat failed. The language model account has no remaining quota"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: TopUpBalance,
				Action:         "Top up the account or point `agent.baseURL` at another provider",
			}}
		},
	},
	{
		regexp:  re("context canceled"),
		errCode: ChatCancelled,
		description: func(error) string {
			return "Chat cancelled"
		},
		suggestion: func(config.Options) []*Suggestion {
			return nil
		},
	},
}
