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

// Package server runs the HTTP servers behind the gateway and engine
// commands: listener acquisition with an availability retry, the shared
// request middleware, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

const maxTryListen = 10

// waits before forcing a server shutdown
var forceShutdownTimeout = 1 * time.Second

// Start serves handler on address. When the preferred port is taken, a
// nearby one is bound instead. It returns a shutdown callback and the bound
// port; the caller is responsible for invoking the callback.
func Start(ctx context.Context, name, address string, preferredPort int, handler http.Handler) (func() error, int, error) {
	var usedPorts util.PortSet
	l, port, err := listenOnAvailablePort(address, preferredPort, &usedPorts)
	if err != nil {
		return func() error { return nil }, 0, fmt.Errorf("creating listener: %w", err)
	}

	if port != preferredPort && preferredPort != 0 {
		log.Entry(ctx).Warnf("starting %s server on port %d. (%d is already in use)", name, port, preferredPort)
	} else {
		log.Entry(ctx).Infof("starting %s server on port %d", name, port)
	}
	event.PortBound(name, address, int32(port))

	server := &http.Server{
		Handler: withMiddleware(name, handler),
	}
	go func() {
		if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Entry(ctx).Errorf("%s server failed: %v", name, err)
		}
	}()

	return func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), forceShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if errors.Is(err, context.DeadlineExceeded) {
			// Event stream subscribers hold their connections open; they
			// don't get to block process exit.
			return server.Close()
		}
		return err
	}, port, nil
}

func listenOnAvailablePort(address string, preferredPort int, usedPorts *util.PortSet) (net.Listener, int, error) {
	for try := 1; ; try++ {
		port := util.GetAvailablePort(address, preferredPort, usedPorts)

		l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", address, port))
		if err != nil {
			if try >= maxTryListen {
				return nil, 0, err
			}

			time.Sleep(1 * time.Second)
			continue
		}

		return l, port, nil
	}
}

func withMiddleware(name string, next http.Handler) http.Handler {
	return withRequestLog(name, withSpan(name, next))
}

// withSpan opens one span per request so handler work shows up under
// QUANTBENCH_TRACE.
func withSpan(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, endTrace := instrumentation.StartTrace(r.Context(), fmt.Sprintf("%s %s %s", name, r.Method, r.URL.Path))
		defer endTrace()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withRequestLog(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Entry(r.Context()).Debugf("%s %s %s %d in %s", name, r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// statusWriter records the response code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the middleware.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
