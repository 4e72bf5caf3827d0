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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	qErrors "github.com/quantbench/quantbench/pkg/quantbench/errors"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

const (
	NotStarted = "Not Started"
	InProgress = "In Progress"
	Complete   = "Complete"
	Failed     = "Failed"
)

var handler = newHandler()

type eventHandler struct {
	eventLog []*Event
	logLock  sync.Mutex

	state     State
	stateLock sync.Mutex

	listeners []*listener
}

type listener struct {
	callback func(*Event) error
	errors   chan error
	closed   bool
}

func newHandler() *eventHandler {
	return &eventHandler{
		state: emptyState(latest.Pipeline{}),
	}
}

// InitializeState resets the global state and metadata from the resolved
// pipeline. The event log is kept.
func InitializeState(pipeline latest.Pipeline) {
	handler.setState(emptyState(pipeline))
}

func emptyState(pipeline latest.Pipeline) State {
	return State{
		ChatState:     &ChatState{Threads: map[string]string{}},
		ToolState:     &ToolState{Tools: map[string]string{}},
		IngestState:   &IngestState{Status: NotStarted},
		BacktestState: &BacktestState{Runs: map[string]string{}},
		ImportState:   &ImportState{Status: NotStarted},
		BoundPorts:    map[string]*PortEvent{},
		Metadata:      initializeMetadata(pipeline),
	}
}

// GetState returns a deep copy of the current state.
func GetState() (*State, error) {
	state := handler.getState()
	return &state, nil
}

// ForEachEvent replays the event log through callback, then streams new
// events as they are logged. It returns when callback returns an error,
// typically because the subscriber went away.
func ForEachEvent(callback func(*Event) error) error {
	return handler.forEachEvent(callback)
}

// SaveEventsToFile appends the current event log to fName, one JSON event
// per line. The file and its directory are created when missing.
func SaveEventsToFile(fName string) error {
	if err := util.VerifyOrCreateFile(fName); err != nil {
		return fmt.Errorf("unable to create directory %s: %w", fName, err)
	}
	f, err := os.OpenFile(fName, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", fName, err)
	}
	defer f.Close()

	handler.logLock.Lock()
	defer handler.logLock.Unlock()

	var buf bytes.Buffer
	for _, ev := range handler.eventLog {
		contents, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshalling event: %w", err)
		}
		buf.Write(contents)
		buf.WriteString("\n")
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing events to %s: %w", fName, err)
	}
	return nil
}

func (ev *eventHandler) getState() State {
	ev.stateLock.Lock()
	// Deep copy
	buf, _ := json.Marshal(ev.state)
	ev.stateLock.Unlock()

	var state State
	json.Unmarshal(buf, &state)

	return state
}

func (ev *eventHandler) setState(state State) {
	ev.stateLock.Lock()
	ev.state = state
	ev.stateLock.Unlock()
}

func (ev *eventHandler) logEvent(event *Event) {
	ev.logLock.Lock()

	for _, listener := range ev.listeners {
		if listener.closed {
			continue
		}

		if err := listener.callback(event); err != nil {
			listener.errors <- err
			listener.closed = true
		}
	}
	ev.eventLog = append(ev.eventLog, event)

	ev.logLock.Unlock()
}

func (ev *eventHandler) forEachEvent(callback func(*Event) error) error {
	listener := &listener{
		callback: callback,
		errors:   make(chan error),
	}

	ev.logLock.Lock()

	oldEvents := make([]*Event, len(ev.eventLog))
	copy(oldEvents, ev.eventLog)
	ev.listeners = append(ev.listeners, listener)

	ev.logLock.Unlock()

	for i := range oldEvents {
		if err := callback(oldEvents[i]); err != nil {
			ev.logLock.Lock()
			listener.closed = true
			ev.logLock.Unlock()
			return err
		}
	}

	return <-listener.errors
}

// ChatInProgress notifies that a chat turn has been started.
func ChatInProgress(threadID string) {
	handler.handleChatEvent(&ChatEvent{ThreadID: threadID, Status: InProgress})
}

// ChatFailed notifies that a chat turn has failed.
func ChatFailed(threadID string, err error) {
	handler.handleChatEvent(&ChatEvent{ThreadID: threadID, Status: Failed, ActionableErr: qErrors.NewActionableErr(constants.Chat, err)})
}

// ChatComplete notifies that a chat turn has completed.
func ChatComplete(threadID string) {
	handler.handleChatEvent(&ChatEvent{ThreadID: threadID, Status: Complete})
}

// RagHit notifies that a knowledge base document enriched a chat turn.
func RagHit(threadID, documentID string) {
	handler.handle(&Event{RagEvent: &RagEvent{ThreadID: threadID, DocumentID: documentID}})
}

// ToolInvoked notifies that the agent has started a tool call.
func ToolInvoked(tool string) {
	handler.handleToolEvent(&ToolEvent{Name: tool, Status: InProgress})
}

// ToolFailed notifies that a tool call reported an error back to the agent.
func ToolFailed(tool string, err error) {
	handler.handleToolEvent(&ToolEvent{Name: tool, Status: Failed, ActionableErr: qErrors.NewActionableErr(constants.Tool, err)})
}

// ToolComplete notifies that a tool call has completed.
func ToolComplete(tool string) {
	handler.handleToolEvent(&ToolEvent{Name: tool, Status: Complete})
}

// IngestInProgress notifies that a document is being ingested into the
// knowledge base.
func IngestInProgress(source string) {
	handler.handleIngestEvent(&IngestEvent{Source: source, Status: InProgress})
}

// IngestFailed notifies that a document could not be ingested.
func IngestFailed(source string, err error) {
	handler.handleIngestEvent(&IngestEvent{Source: source, Status: Failed, ActionableErr: qErrors.NewActionableErr(constants.Ingest, err)})
}

// IngestComplete notifies that a document has been ingested.
func IngestComplete(source string, chunks int) {
	handler.handleIngestEvent(&IngestEvent{Source: source, Chunks: int32(chunks), Status: Complete})
}

// BacktestInProgress notifies that a backtest run has been started.
func BacktestInProgress(runID string) {
	handler.handleBacktestEvent(&BacktestEvent{RunID: runID, Status: InProgress})
}

// BacktestFailed notifies that a backtest run has failed.
func BacktestFailed(runID string, err error) {
	handler.handleBacktestEvent(&BacktestEvent{RunID: runID, Status: Failed, ActionableErr: qErrors.NewActionableErr(constants.Backtest, err)})
}

// BacktestComplete notifies that a backtest run has completed.
func BacktestComplete(runID string) {
	handler.handleBacktestEvent(&BacktestEvent{RunID: runID, Status: Complete})
}

// ImportInProgress notifies that a tick data import run has been started.
func ImportInProgress() {
	handler.handleImportEvent(&ImportEvent{Status: InProgress})
}

// ImportFailed notifies that a tick data import run has failed.
func ImportFailed(err error) {
	handler.handleImportEvent(&ImportEvent{Status: Failed, ActionableErr: qErrors.NewActionableErr(constants.Import, err)})
}

// ImportComplete notifies that a tick data import run has completed.
func ImportComplete() {
	handler.handleImportEvent(&ImportEvent{Status: Complete})
}

// ImportFileComplete notifies that a tick file has been copied into the
// tick store.
func ImportFileComplete(file string, rows int64) {
	handler.handleImportEvent(&ImportEvent{File: file, Rows: rows, Status: Complete})
}

// ImportFileFailed notifies that a tick file could not be imported. The
// import run carries on with the remaining files.
func ImportFileFailed(file string, err error) {
	handler.handleImportEvent(&ImportEvent{File: file, Status: Failed, ActionableErr: qErrors.NewActionableErr(constants.Import, err)})
}

// PortBound notifies that a server has bound its listen port.
func PortBound(server, address string, port int32) {
	handler.handle(&Event{
		PortEvent: &PortEvent{
			Server:  server,
			Address: address,
			Port:    port,
		},
	})
}

func (ev *eventHandler) handleChatEvent(e *ChatEvent) {
	ev.handle(&Event{ChatEvent: e})
}

func (ev *eventHandler) handleToolEvent(e *ToolEvent) {
	ev.handle(&Event{ToolEvent: e})
}

func (ev *eventHandler) handleIngestEvent(e *IngestEvent) {
	ev.handle(&Event{IngestEvent: e})
}

func (ev *eventHandler) handleBacktestEvent(e *BacktestEvent) {
	ev.handle(&Event{BacktestEvent: e})
}

func (ev *eventHandler) handleImportEvent(e *ImportEvent) {
	ev.handle(&Event{ImportEvent: e})
}

func LogQuantbenchMetadata(info *version.Info) {
	handler.logEvent(&Event{
		Timestamp: time.Now(),
		MetaEvent: &MetaEvent{
			Entry: fmt.Sprintf("Starting Quantbench: %+v", info),
		},
	})
}

func (ev *eventHandler) handle(event *Event) {
	event.Timestamp = time.Now()

	switch {
	case event.ChatEvent != nil:
		ce := event.ChatEvent
		ev.stateLock.Lock()
		ev.state.ChatState.Threads[ce.ThreadID] = ce.Status
		ev.stateLock.Unlock()
		switch ce.Status {
		case InProgress:
			event.Entry = fmt.Sprintf("Chat turn started for thread %s", ce.ThreadID)
		case Complete:
			event.Entry = fmt.Sprintf("Chat turn complete for thread %s", ce.ThreadID)
		case Failed:
			event.Entry = fmt.Sprintf("Chat turn failed for thread %s", ce.ThreadID)
		default:
		}
	case event.RagEvent != nil:
		re := event.RagEvent
		ev.stateLock.Lock()
		ev.state.ChatState.RagHits++
		ev.stateLock.Unlock()
		event.Entry = fmt.Sprintf("Knowledge base hit %s for thread %s", re.DocumentID, re.ThreadID)
	case event.ToolEvent != nil:
		te := event.ToolEvent
		ev.stateLock.Lock()
		ev.state.ToolState.Tools[te.Name] = te.Status
		ev.stateLock.Unlock()
		switch te.Status {
		case InProgress:
			event.Entry = fmt.Sprintf("Tool %s invoked", te.Name)
		case Complete:
			event.Entry = fmt.Sprintf("Tool %s complete", te.Name)
		case Failed:
			event.Entry = fmt.Sprintf("Tool %s failed", te.Name)
		default:
		}
	case event.IngestEvent != nil:
		ie := event.IngestEvent
		ev.stateLock.Lock()
		ev.state.IngestState.Status = ie.Status
		if ie.Status == Complete {
			ev.state.IngestState.Chunks += ie.Chunks
		}
		ev.stateLock.Unlock()
		switch ie.Status {
		case InProgress:
			event.Entry = fmt.Sprintf("Ingest started for %s", ie.Source)
		case Complete:
			event.Entry = fmt.Sprintf("Ingest complete for %s: %d chunks", ie.Source, ie.Chunks)
		case Failed:
			event.Entry = fmt.Sprintf("Ingest failed for %s", ie.Source)
		default:
		}
	case event.BacktestEvent != nil:
		be := event.BacktestEvent
		ev.stateLock.Lock()
		ev.state.BacktestState.Runs[be.RunID] = be.Status
		ev.stateLock.Unlock()
		switch be.Status {
		case InProgress:
			event.Entry = fmt.Sprintf("Backtest started for run %s", be.RunID)
		case Complete:
			event.Entry = fmt.Sprintf("Backtest complete for run %s", be.RunID)
		case Failed:
			event.Entry = fmt.Sprintf("Backtest failed for run %s", be.RunID)
		default:
		}
	case event.ImportEvent != nil:
		ie := event.ImportEvent
		ev.stateLock.Lock()
		if ie.File == "" {
			ev.state.ImportState.Status = ie.Status
		} else if ie.Status == Complete {
			ev.state.ImportState.FilesImported++
			ev.state.ImportState.RowsCopied += ie.Rows
		} else if ie.Status == Failed {
			ev.state.ImportState.FilesFailed++
		}
		ev.stateLock.Unlock()
		switch {
		case ie.File == "" && ie.Status == InProgress:
			event.Entry = "Import started"
		case ie.File == "" && ie.Status == Complete:
			event.Entry = "Import complete"
		case ie.File == "" && ie.Status == Failed:
			event.Entry = "Import failed"
		case ie.Status == Complete:
			event.Entry = fmt.Sprintf("Imported %s: %d rows", ie.File, ie.Rows)
		case ie.Status == Failed:
			event.Entry = fmt.Sprintf("Import failed for %s", ie.File)
		default:
		}
	case event.PortEvent != nil:
		pe := event.PortEvent
		ev.stateLock.Lock()
		ev.state.BoundPorts[pe.Server] = pe
		ev.stateLock.Unlock()
		event.Entry = fmt.Sprintf("%s server bound to %s:%d", pe.Server, pe.Address, pe.Port)
	case event.MetaEvent != nil:
		event.Entry = event.MetaEvent.Entry
	default:
		return
	}

	ev.logEvent(event)
}
