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

// Package gateway serves the chat API: chat turns against the agent,
// knowledge base ingestion, health, the state snapshot and the event stream.
package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/rag"
)

// ChatAgent runs one chat turn and returns the assistant's final text.
type ChatAgent interface {
	Chat(ctx context.Context, threadID, message string) (string, error)
}

// DocumentStore persists knowledge documents.
type DocumentStore interface {
	Add(ctx context.Context, docs []rag.Document) error
}

// ingestSource labels documents stored through the HTTP API.
const ingestSource = "api"

// Server handles the gateway routes. The database handle only backs the
// health check; a nil handle reports healthy.
type Server struct {
	agent ChatAgent
	store DocumentStore
	db    *sql.DB
}

func New(agent ChatAgent, store DocumentStore, db *sql.DB) *Server {
	return &Server{agent: agent, store: store, db: db}
}

// Close releases the database pool. The serve loop calls it once the
// listener has drained.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Router returns the gateway's HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverer)
	r.HandleFunc("/chat", s.chat).Methods(http.MethodPost)
	r.HandleFunc("/ingest", s.ingest).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/state", s.state).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", s.events).Methods(http.MethodGet)
	return r
}

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusResponse is the in-band status shape shared by ingest and healthz.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "message must not be blank")
		return
	}
	if strings.TrimSpace(req.ThreadID) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "thread_id must not be blank")
		return
	}

	start := time.Now()
	answer, err := s.agent.Chat(r.Context(), req.ThreadID, req.Message)
	instrumentation.RecordChatLatency(time.Since(start))
	if err != nil {
		log.Entry(r.Context()).Errorf("chat turn on thread %q failed: %v", req.ThreadID, err)
		writeError(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, chatResponse{Response: answer})
}

// ingest stores one document. Failures are reported in band with HTTP 200,
// like the engine's run endpoint.
func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "error", Message: fmt.Sprintf("decoding request: %v", err)})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "error", Message: "text must not be blank"})
		return
	}

	event.IngestInProgress(ingestSource)
	doc := rag.Document{
		ID:       uuid.NewString(),
		Content:  req.Text,
		Metadata: map[string]string{"source": ingestSource},
	}
	if err := s.store.Add(r.Context(), []rag.Document{doc}); err != nil {
		event.IngestFailed(ingestSource, err)
		log.Entry(r.Context()).Errorf("storing document: %v", err)
		writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	event.IngestComplete(ingestSource, 1)
	instrumentation.AddIngestedDoc()
	log.Entry(r.Context()).Infof("stored document %s", doc.ID)
	writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "success"})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			log.Entry(r.Context()).Warnf("database ping failed: %v", err)
			writeJSON(r.Context(), w, http.StatusServiceUnavailable, statusResponse{Status: "error", Message: "database unreachable"})
			return
		}
	}
	writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	state, err := event.GetState()
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, state)
}

// events streams the event log as NDJSON: full replay, then live tail until
// the client goes away.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(r.Context(), w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	err := event.ForEachEvent(func(e *event.Event) error {
		if err := r.Context().Err(); err != nil {
			return err
		}
		if err := enc.Encode(e); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	log.Entry(r.Context()).Debugf("event stream closed: %v", err)
}

func writeError(ctx context.Context, w http.ResponseWriter, code int, message string) {
	writeJSON(ctx, w, code, errorResponse{Error: message})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Entry(ctx).Debugf("writing response: %v", err)
	}
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Entry(r.Context()).Errorf("panic handling %s %s: %v", r.Method, r.URL.Path, rec)
				writeError(r.Context(), w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
