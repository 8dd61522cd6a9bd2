package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// maxBodyBytes caps inbound request bodies
const maxBodyBytes = 1 << 20

// HTTPServer wraps the MCP registry with REST and JSON-RPC endpoints
type HTTPServer struct {
	server     *Server
	handler    Handler
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(server *Server, handler Handler, info ServerInfo, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		server:     server,
		handler:    handler,
		dispatcher: NewDispatcher(server, handler, info),
		logger:     logger,
	}
}

// Handler returns the routed handler with CORS and request logging applied
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/tools/list", h.handleListTools)
	mux.HandleFunc("/tools/call", h.handleToolCall)
	mux.HandleFunc("/resources/list", h.handleListResources)
	mux.HandleFunc("/sse", h.handleSSE)
	mux.HandleFunc("/message", h.handleMessage)

	return corsMiddleware(h.requestLogger(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
func (h *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("MCP HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.handler.Health(r.Context()))
}

func (h *HTTPServer) handleListTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": h.server.ListTools(),
	})
}

func (h *HTTPServer) handleListResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resources": []Resource{},
	})
}

func (h *HTTPServer) handleToolCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeDetail(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var arguments map[string]interface{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := decodeJSON(body, &arguments); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	result, err := h.handler.CallTool(r.Context(), name, arguments)
	if err != nil {
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeCallError reports a failed call. Statuses below 400 from the backend
// would read as success (or drop the body for 204/304), so they go out as
// 502 with the original code alongside.
func writeCallError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status < http.StatusBadRequest {
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"detail":          err.Error(),
			"upstream_status": status,
		})
		return
	}
	writeDetail(w, status, err.Error())
}

// readBody reads at most maxBodyBytes, answering 413 past the limit.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeDetail(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return body, true
}

// decodeJSON keeps numbers as json.Number so integers beyond 2^53 survive.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

func (h *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = NewRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(WithRequestID(r.Context(), requestID)))

		h.logger.Info("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
