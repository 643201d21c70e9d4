package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	banlogDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/banlog/domain"
	statsDomain "github.com/reshetovitsme/binary-bouncer/internal/modules/stats/domain"
	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	sloghttp "github.com/samber/slog-http"
)

type FeedGenerator interface {
	GenerateFeed(baseURL string) (*feeds.Feed, error)
}

type Stats interface {
	Snapshot() (*statsDomain.Snapshot, error)
}

type BanLog interface {
	Recent(limit int) ([]*banlogDomain.Entry, error)
	Since(since time.Time) ([]*banlogDomain.Entry, error)
}

// Server exposes health, counters, metrics and the RSS feed of recent bans
type Server struct {
	cfg    *config.Config
	feed   FeedGenerator
	stats  Stats
	banlog BanLog
	logger *slog.Logger
	server *http.Server
}

func New(cfg *config.Config, feed FeedGenerator, stats Stats, banlog BanLog) *Server {
	return &Server{
		cfg:    cfg,
		feed:   feed,
		stats:  stats,
		banlog: banlog,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the routed handler with request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rss/bans", s.handleRSSFeed)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRSSFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feed.GenerateFeed(baseURL)
	if err != nil {
		s.logger.Error("Error generating feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

type statsResponse struct {
	*statsDomain.Snapshot
	RecentBans  []*banlogDomain.Entry `json:"recent_bans"`
	BansLastDay int                   `json:"bans_last_24h"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Snapshot()
	if err != nil {
		s.logger.Error("Error reading counters", "error", err)
		http.Error(w, "Failed to read stats", http.StatusInternalServerError)
		return
	}

	recent, err := s.banlog.Recent(10)
	if err != nil {
		s.logger.Warn("Error reading ban log", "error", err)
		recent = []*banlogDomain.Entry{}
	}

	lastDay, err := s.banlog.Since(time.Now().Add(-24 * time.Hour))
	if err != nil {
		s.logger.Warn("Error reading ban log", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	resp := statsResponse{Snapshot: snap, RecentBans: recent, BansLastDay: len(lastDay)}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Error writing stats", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
