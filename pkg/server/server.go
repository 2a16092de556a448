package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/csv2qif/pkg/config"
	"github.com/yurifrl/csv2qif/pkg/executors"
	"github.com/yurifrl/csv2qif/pkg/parser"
	"github.com/yurifrl/csv2qif/pkg/service"
)

// maxStatementSize caps uploaded statements.
const maxStatementSize = 32 << 20

const defaultReportTop = 10

// Server exposes the conversion over HTTP.
type Server struct {
	config    *config.Config
	processor *service.Processor
	logger    *log.Logger
	mux       *http.ServeMux
}

// New creates a new HTTP server
func New(cfg *config.Config, processor *service.Processor, logger *log.Logger) *Server {
	s := &Server{
		config:    cfg,
		processor: processor,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// ServeHTTP lets the server be mounted or tested without listening.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/convert", s.withLogging(s.handleConvert))
	s.mux.HandleFunc("/api/report", s.withLogging(s.handleReport))
	s.mux.HandleFunc("/api/formats", s.withLogging(s.handleFormats))
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	names := make([]string, 0, len(s.config.Formats))
	for _, f := range s.config.Formats {
		names = append(names, f.Name)
	}
	accounts := make(map[string]string, len(s.config.Aliases))
	for k, v := range s.config.Aliases {
		accounts[k] = v
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"formats":  names,
		"accounts": accounts,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	res, ok := s.collect(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/qif; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, res.QIF()); err != nil {
		s.logger.Warn("failed to write qif response", "err", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.collect(w, r)
	if !ok {
		return
	}

	top := defaultReportTop
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, r, http.StatusBadRequest, "top must be a non-negative integer", err)
			return
		}
		top = n
	}

	report := executors.BuildReport(res, s.config.Rules, top)
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"report": report,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// collect reads the statement of a POST request and converts it. It writes
// the error response itself and returns false on failure.
func (s *Server) collect(w http.ResponseWriter, r *http.Request) (*service.Result, bool) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return nil, false
	}

	format := r.URL.Query().Get("format")
	account := r.URL.Query().Get("account")
	if format == "" || account == "" {
		s.respondError(w, r, http.StatusBadRequest, "format and account required", nil)
		return nil, false
	}

	data, err := s.readStatement(w, r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read statement", err)
		return nil, false
	}

	res, err := s.processor.Collect(service.StringInput(data), format, account)
	var parseErr *parser.ParseError
	switch {
	case err == nil:
	case errors.Is(err, config.ErrUnknownFormat), errors.Is(err, config.ErrUnknownAlias):
		s.respondError(w, r, http.StatusNotFound, err.Error(), err)
		return nil, false
	case errors.As(err, &parseErr):
		s.respondError(w, r, http.StatusUnprocessableEntity, "malformed csv", err)
		return nil, false
	default:
		s.respondError(w, r, http.StatusInternalServerError, "failed to convert statement", err)
		return nil, false
	}

	s.logger.Info("converted statement", "format", format, "account", account, "transactions", len(res.Transactions))
	return res, true
}

// readStatement accepts either a multipart "statement" file or a raw body.
func (s *Server) readStatement(w http.ResponseWriter, r *http.Request) (string, error) {
	body := http.MaxBytesReader(w, r.Body, maxStatementSize)
	r.Body = body

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("statement")
		if err != nil {
			return "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log the request and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
