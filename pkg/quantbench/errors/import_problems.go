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
)

// Import problems are errors while loading tick data files.
var knownImportProblems = []problem{
	{
		regexp:  re("zip: not a valid zip file"),
		errCode: ImportBadArchive,
		description: func(error) string {
			return "Import failed. An archive is corrupt"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: CheckArchive,
				Action:         "Re-download the archive named in the log and run the import again",
			}}
		},
	},
	{
		regexp:  re(`(?i)(storage: object doesn't exist|storage: bucket doesn't exist)`),
		errCode: ImportSourceMissing,
		description: func(err error) string {
			return fmt.Sprintf("Import failed. %s", err)
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: CheckImportSource,
				Action:         "Check the `gs://` source path and your storage credentials",
			}}
		},
	},
	{
		regexp:  re("(?i)pq: .*(copy|violates|invalid input)"),
		errCode: ImportCopyFailed,
		description: func(error) string {
			return "Import failed. A batch could not be copied into the tick table"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: CheckBatchLog,
				Action:         "The batch was rolled back and skipped; check the files named in the log",
			}}
		},
	},
}
