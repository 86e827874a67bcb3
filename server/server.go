// Package server 提供推荐接口的 HTTP 外壳。认证在上游网关完成，
// viewer 身份通过 X-Viewer-ID 头传入；这里只做参数解析、错误映射和打点。
package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/engine"
)

type Server struct {
	Engine *engine.Engine
	Logger *slog.Logger
}

func New(e *engine.Engine, logger *slog.Logger) *Server {
	return &Server{Engine: e, Logger: logger}
}

// Routes 组装路由。
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/v1/recommendations", s.handleRecommend)
	return r
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	viewerID := r.Header.Get("X-Viewer-ID")
	if viewerID == "" {
		viewerID = r.URL.Query().Get("viewer")
	}
	if viewerID == "" {
		requestsTotal.WithLabelValues("bad_request").Inc()
		s.writeError(w, http.StatusBadRequest, "missing viewer identity")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			requestsTotal.WithLabelValues("bad_request").Inc()
			s.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	resp, err := s.Engine.Recommend(r.Context(), engine.Request{
		ViewerID: viewerID,
		Limit:    limit,
		Cursor:   r.URL.Query().Get("cursor"),
	})
	requestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case core.IsNotFound(err):
			requestsTotal.WithLabelValues("not_found").Inc()
			s.writeError(w, http.StatusNotFound, "viewer profile not found")
		case core.IsInvalidInput(err):
			requestsTotal.WithLabelValues("bad_request").Inc()
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			requestsTotal.WithLabelValues("error").Inc()
			if s.Logger != nil {
				s.Logger.Error("recommend failed", "viewer", viewerID, "err", err)
			}
			s.writeError(w, http.StatusInternalServerError, "ranking failed")
		}
		return
	}

	requestsTotal.WithLabelValues("ok").Inc()
	if resp.Meta.Cached {
		cacheHitsTotal.Inc()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.Logger != nil {
		s.Logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
