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

package event

import (
	"time"

	qErrors "github.com/quantbench/quantbench/pkg/quantbench/errors"
)

// Event is a single entry on the event stream. Exactly one of the typed
// event fields is set.
type Event struct {
	Timestamp     time.Time      `json:"timestamp"`
	Entry         string         `json:"entry,omitempty"`
	ChatEvent     *ChatEvent     `json:"chatEvent,omitempty"`
	RagEvent      *RagEvent      `json:"ragEvent,omitempty"`
	ToolEvent     *ToolEvent     `json:"toolEvent,omitempty"`
	IngestEvent   *IngestEvent   `json:"ingestEvent,omitempty"`
	BacktestEvent *BacktestEvent `json:"backtestEvent,omitempty"`
	ImportEvent   *ImportEvent   `json:"importEvent,omitempty"`
	PortEvent     *PortEvent     `json:"portEvent,omitempty"`
	MetaEvent     *MetaEvent     `json:"metaEvent,omitempty"`
}

// State is the aggregate view of the process, served by the gateway's
// state endpoint.
type State struct {
	ChatState     *ChatState            `json:"chatState,omitempty"`
	ToolState     *ToolState            `json:"toolState,omitempty"`
	IngestState   *IngestState          `json:"ingestState,omitempty"`
	BacktestState *BacktestState        `json:"backtestState,omitempty"`
	ImportState   *ImportState          `json:"importState,omitempty"`
	BoundPorts    map[string]*PortEvent `json:"boundPorts,omitempty"`
	Metadata      *Metadata             `json:"metadata,omitempty"`
}

// Metadata describes the resolved pipeline the process runs with.
type Metadata struct {
	Model      string `json:"model,omitempty"`
	Collection string `json:"collection,omitempty"`
	TickTable  string `json:"tickTable,omitempty"`
	EngineURL  string `json:"engineURL,omitempty"`
}

// ChatState tracks the status of each chat thread and how many knowledge
// base documents enriched turns so far.
type ChatState struct {
	Threads map[string]string `json:"threads,omitempty"`
	RagHits int32             `json:"ragHits,omitempty"`
}

// ToolState tracks the last status of each agent tool by name.
type ToolState struct {
	Tools map[string]string `json:"tools,omitempty"`
}

// IngestState tracks knowledge base ingestion.
type IngestState struct {
	Status string `json:"status,omitempty"`
	Chunks int32  `json:"chunks,omitempty"`
}

// BacktestState tracks the status of each backtest run.
type BacktestState struct {
	Runs map[string]string `json:"runs,omitempty"`
}

// ImportState tracks tick data import progress.
type ImportState struct {
	Status        string `json:"status,omitempty"`
	FilesImported int32  `json:"filesImported,omitempty"`
	FilesFailed   int32  `json:"filesFailed,omitempty"`
	RowsCopied    int64  `json:"rowsCopied,omitempty"`
}

// ChatEvent is the progress of a single chat turn.
type ChatEvent struct {
	ThreadID      string                 `json:"threadId,omitempty"`
	Status        string                 `json:"status,omitempty"`
	ActionableErr *qErrors.ActionableErr `json:"actionableErr,omitempty"`
}

// RagEvent records a knowledge base document enriching a chat turn.
type RagEvent struct {
	ThreadID   string `json:"threadId,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
}

// ToolEvent is the progress of a single agent tool call.
type ToolEvent struct {
	Name          string                 `json:"name,omitempty"`
	Status        string                 `json:"status,omitempty"`
	ActionableErr *qErrors.ActionableErr `json:"actionableErr,omitempty"`
}

// IngestEvent is the progress of a single document ingestion.
type IngestEvent struct {
	Source        string                 `json:"source,omitempty"`
	Chunks        int32                  `json:"chunks,omitempty"`
	Status        string                 `json:"status,omitempty"`
	ActionableErr *qErrors.ActionableErr `json:"actionableErr,omitempty"`
}

// BacktestEvent is the progress of a single backtest run.
type BacktestEvent struct {
	RunID         string                 `json:"runId,omitempty"`
	Status        string                 `json:"status,omitempty"`
	ActionableErr *qErrors.ActionableErr `json:"actionableErr,omitempty"`
}

// ImportEvent is the progress of a tick data import. Events with a File
// track a single file, events without track the whole run.
type ImportEvent struct {
	File          string                 `json:"file,omitempty"`
	Rows          int64                  `json:"rows,omitempty"`
	Status        string                 `json:"status,omitempty"`
	ActionableErr *qErrors.ActionableErr `json:"actionableErr,omitempty"`
}

// PortEvent records a server binding its listen port.
type PortEvent struct {
	Server  string `json:"server,omitempty"`
	Address string `json:"address,omitempty"`
	Port    int32  `json:"port,omitempty"`
}

// MetaEvent carries process metadata, logged once at startup.
type MetaEvent struct {
	Entry string `json:"entry,omitempty"`
}
