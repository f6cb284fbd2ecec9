// Package server exposes one in-memory enrichment batch over HTTP: upload a
// spreadsheet, start a run, poll progress, download the export.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/uav-enrich/internal/config"
	"github.com/sells-group/uav-enrich/internal/pipeline"
	"github.com/sells-group/uav-enrich/internal/research"
)

// Server holds the session and the dependencies of background runs.
type Server struct {
	cfg        config.ServerConfig
	researcher research.Researcher
	runOpts    []pipeline.Option
	baseCtx    context.Context
	now        func() time.Time

	sess session
	wg   sync.WaitGroup
}

// New creates a Server. Background runs inherit ctx and stop when it is
// cancelled. opts configure each run's orchestrator.
func New(ctx context.Context, cfg config.ServerConfig, researcher research.Researcher, opts ...pipeline.Option) *Server {
	return &Server{
		cfg:        cfg,
		researcher: researcher,
		runOpts:    opts,
		baseCtx:    ctx,
		now:        time.Now,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/batch", func(r chi.Router) {
		r.Get("/", s.handleGetBatch)
		r.Post("/", s.handleUpload)
		r.Delete("/", s.handleClear)
		r.Post("/run", s.handleRun)
		r.Post("/reset-errors", s.handleResetErrors)
		r.Get("/export", s.handleExport)
	})
	return r
}

// Wait blocks until any background run has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.view())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	records, err := pipeline.LoadBytes(hdr.Filename, data)
	if err != nil {
		zap.L().Warn("server: ingestion failed", zap.String("file", hdr.Filename), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "file could not be read as a spreadsheet")
		return
	}

	s.sess.mu.Lock()
	if s.sess.running {
		s.sess.mu.Unlock()
		writeError(w, http.StatusConflict, "a batch run is in progress")
		return
	}
	s.sess.batch = pipeline.NewBatch(records)
	s.sess.progress = 0
	s.sess.summary = nil
	s.sess.lastErr = ""
	s.sess.mu.Unlock()

	zap.L().Info("server: batch loaded", zap.String("file", hdr.Filename), zap.Int("records", len(records)))
	writeJSON(w, http.StatusCreated, s.sess.view())
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()
	if s.sess.running {
		writeError(w, http.StatusConflict, "a batch run is in progress")
		return
	}
	s.sess.batch = nil
	s.sess.progress = 0
	s.sess.summary = nil
	s.sess.lastErr = ""
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetErrors(w http.ResponseWriter, _ *http.Request) {
	s.sess.mu.Lock()
	if s.sess.batch == nil {
		s.sess.mu.Unlock()
		writeError(w, http.StatusNotFound, "no batch loaded")
		return
	}
	if s.sess.running {
		s.sess.mu.Unlock()
		writeError(w, http.StatusConflict, "a batch run is in progress")
		return
	}
	n := s.sess.batch.ResetErrors()
	s.sess.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"reset": n})
}

func (s *Server) handleRun(w http.ResponseWriter, _ *http.Request) {
	s.sess.mu.Lock()
	if s.sess.batch == nil {
		s.sess.mu.Unlock()
		writeError(w, http.StatusNotFound, "no batch loaded")
		return
	}
	if s.sess.running {
		s.sess.mu.Unlock()
		writeError(w, http.StatusConflict, "a batch run is in progress")
		return
	}
	batch := s.sess.batch
	s.sess.running = true
	s.sess.progress = pipeline.StartProgress(batch.Snapshot())
	s.sess.lastErr = ""
	s.sess.mu.Unlock()

	opts := append(append([]pipeline.Option{}, s.runOpts...), pipeline.WithObserver(func(e pipeline.Event) {
		s.sess.mu.Lock()
		s.sess.progress = e.Progress
		s.sess.mu.Unlock()
	}))
	orch := pipeline.NewOrchestrator(s.researcher, opts...)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sum, err := orch.Run(s.baseCtx, batch)

		s.sess.mu.Lock()
		defer s.sess.mu.Unlock()
		s.sess.running = false
		s.sess.summary = &sum
		if err != nil {
			s.sess.lastErr = err.Error()
			zap.L().Warn("server: batch run ended early", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "running"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := pipeline.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.sess.mu.Lock()
	batch := s.sess.batch
	s.sess.mu.Unlock()
	if batch == nil {
		writeError(w, http.StatusNotFound, "no batch loaded")
		return
	}

	var buf bytes.Buffer
	if err := pipeline.Write(&buf, format, batch.Snapshot()); err != nil {
		zap.L().Error("server: export failed", zap.String("format", string(format)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+pipeline.DefaultFilename(s.now(), format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
