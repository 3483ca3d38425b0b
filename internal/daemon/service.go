// Package daemon provides the long-running HTTP service: dataset polling,
// per-session balance state and the engine API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"
	"github.com/letmecheque/letmecheque/internal/store"

	"go.uber.org/zap"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Sources      pipeline.Sources
	UseCache     bool
	CachePath    string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	SessionTTL   time.Duration

	Policy        pipeline.ForecastPolicy
	Threshold     float64
	WeeklyDefault float64
	Locations     []string
	HighSpend     []string
}

// Snapshot is a compact dataset state for status/event payloads.
type Snapshot struct {
	At            time.Time `json:"at"`
	Source        string    `json:"source,omitempty"`
	Categories    int       `json:"categories"`
	Records       int       `json:"records"`
	SkippedRows   int       `json:"skipped_rows"`
	InvalidCells  int       `json:"invalid_cells"`
	Platforms     int       `json:"platforms"`
	SpendingError string    `json:"spending_error,omitempty"`
	PlatformError string    `json:"platform_error,omitempty"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Categories int `json:"categories"`
	Records    int `json:"records"`
	Platforms  int `json:"platforms"`
}

func (d Delta) isZero() bool {
	return d.Categories == 0 && d.Records == 0 && d.Platforms == 0
}

// Event is emitted whenever the dataset snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	SpendingPath    string    `json:"spending_path"`
	PlatformPath    string    `json:"platform_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	SessionCount    int       `json:"session_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg      Config
	log      *zap.Logger
	sessions *Sessions

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	cur         datasets
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, log *zap.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8451"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = pipeline.DefaultRiskThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		sessions:  NewSessions(cfg.SessionTTL),
		startedAt: time.Now(),
		cur:       datasets{spendingErr: errNotLoaded, platformErr: errNotLoaded},
		subs:      make(map[int]chan Event),
	}
}

var errNotLoaded = fmt.Errorf("not loaded yet: %w", pipeline.ErrDatasetUnavailable)

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", zap.String("addr", s.cfg.Addr))

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
			if n := s.sessions.Sweep(); n > 0 {
				s.log.Info("expired sessions", zap.Int("count", n))
			}
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	res, err := s.load(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", zap.Error(err))
		return
	}

	now := time.Now()
	snap := snapshotFromLoad(res, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.cur = datasets{
		spending:    res.Spending,
		spendingErr: res.SpendingErr,
		platforms:   res.Platforms,
		platformErr: res.PlatformErr,
	}
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() || prev.SpendingError != snap.SpendingError || prev.PlatformError != snap.PlatformError {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "dataset_changed",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}

	s.log.Debug("poll complete",
		zap.Duration("took", time.Since(start)),
		zap.Int("records", snap.Records),
		zap.Int("cache_hits", res.CacheHits),
	)
}

func (s *Service) load(ctx context.Context) (*pipeline.LoadResult, error) {
	if s.cfg.UseCache && s.cfg.CachePath != "" {
		cache, err := store.Open(s.cfg.CachePath)
		if err == nil {
			defer func() { _ = cache.Close() }()
			return pipeline.Load(ctx, s.cfg.Sources, cache, nil)
		}
		s.log.Warn("cache unavailable", zap.Error(err))
	}
	return pipeline.Load(ctx, s.cfg.Sources, nil, nil)
}

func snapshotFromLoad(res *pipeline.LoadResult, at time.Time) Snapshot {
	snap := Snapshot{At: at, Platforms: len(res.Platforms)}
	if ds := res.Spending; ds != nil {
		snap.Source = ds.Source
		snap.Categories = len(ds.Categories)
		snap.Records = len(ds.Records)
		snap.SkippedRows = ds.SkippedRows
		snap.InvalidCells = ds.InvalidCells
	}
	if res.SpendingErr != nil {
		snap.SpendingError = res.SpendingErr.Error()
	}
	if res.PlatformErr != nil {
		snap.PlatformError = res.PlatformErr.Error()
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Categories: curr.Categories - prev.Categories,
		Records:    curr.Records - prev.Records,
		Platforms:  curr.Platforms - prev.Platforms,
	}
}

// datasets is the result of the latest successful poll. It is replaced
// wholesale and never mutated.
type datasets struct {
	spending    *model.Dataset
	spendingErr error
	platforms   []model.Platform
	platformErr error
}

func (s *Service) current() datasets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		SpendingPath:    s.cfg.Sources.SpendingPath,
		PlatformPath:    s.cfg.Sources.PlatformPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		SessionCount:    s.sessions.Len(),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
