// Package service orchestrates observation storage, elevation enrichment,
// criticality classification, and the change feed.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/observability"
	"github.com/google/uuid"
)

// Store persists observations.
type Store interface {
	Save(ctx context.Context, obs domain.Observation) error
	Get(ctx context.Context, id string) (domain.Observation, error)
	Delete(ctx context.Context, id string) error
	Recent(ctx context.Context, since time.Time, limit int) ([]domain.Observation, error)
}

// Feed accepts change events for asynchronous delivery.
type Feed interface {
	Enqueue(event domain.FeedEvent) bool
}

// Settings tune listing and display.
type Settings struct {
	RecentWindow time.Duration
	ListLimit    int
	// Attenuate makes the time-attenuated level drive the display level.
	Attenuate bool
}

// Service implements the observation use cases.
type Service struct {
	store     Store
	elevation domain.ElevationProvider
	feed      Feed
	logger    *slog.Logger
	metrics   *observability.Metrics
	settings  Settings
	newID     func() string
}

// New creates a Service. Pass a nil elevation provider to disable elevation
// lookup and a nil feed to disable change events.
func New(store Store, elevation domain.ElevationProvider, feed Feed, logger *slog.Logger, metrics *observability.Metrics, settings Settings) *Service {
	return &Service{
		store:     store,
		elevation: elevation,
		feed:      feed,
		logger:    logger,
		metrics:   metrics,
		settings:  settings,
		newID:     uuid.NewString,
	}
}

// Create validates and stores a submitted observation and returns its map item.
func (s *Service) Create(ctx context.Context, draft domain.Draft) (domain.MapItem, error) {
	now := domain.Now()
	obs, err := draft.Build(s.newID(), now)
	if err != nil {
		return domain.MapItem{}, err
	}

	obs, err = domain.FillElevation(ctx, obs, s.elevation)
	if err != nil {
		s.logger.Warn("elevation lookup failed, saving without elevation",
			"error", err, "lat", obs.Geo.Lat, "lon", obs.Geo.Lon)
	}

	if err := s.store.Save(ctx, obs); err != nil {
		s.metrics.SaveErrors.Inc()
		return domain.MapItem{}, fmt.Errorf("save observation: %w", err)
	}
	s.metrics.ObservationsSaved.Inc()

	item := domain.NewMapItem(obs, now, s.settings.Attenuate)
	s.recordCriticality(item.CriticalityLevel)
	s.logger.Info("observation saved", "id", obs.ID, "level", int(item.CriticalityLevel))

	s.publish(domain.FeedEvent{
		Type:          domain.EventObservationCreated,
		ObservationID: obs.ID,
		OccurredAt:    now,
		Item:          &item,
	})
	return item, nil
}

// Get returns the detail view of one observation or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (domain.Detail, error) {
	obs, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Detail{}, err
	}
	return domain.NewDetail(obs, domain.Now(), s.settings.Attenuate), nil
}

// List returns map items for the observations of the recent window, newest first.
func (s *Service) List(ctx context.Context) ([]domain.MapItem, error) {
	now := domain.Now()
	observations, err := s.store.Recent(ctx, now.Add(-s.settings.RecentWindow), s.settings.ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	items := make([]domain.MapItem, len(observations))
	for i, obs := range observations {
		items[i] = domain.NewMapItem(obs, now, s.settings.Attenuate)
	}
	return items, nil
}

// Delete removes an observation or returns domain.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.ObservationsDeleted.Inc()
	s.logger.Info("observation deleted", "id", id)

	s.publish(domain.FeedEvent{
		Type:          domain.EventObservationDeleted,
		ObservationID: id,
		OccurredAt:    domain.Now(),
	})
	return nil
}

// Elevation looks up the terrain elevation of a point. ok is false when
// lookup is disabled, fails, or has no data; failures are logged, not returned.
func (s *Service) Elevation(ctx context.Context, lat, lon float64) (int, bool) {
	if s.elevation == nil {
		return 0, false
	}
	if !(domain.Geo{Lat: lat, Lon: lon}).Valid() {
		return 0, false
	}
	meters, ok, err := s.elevation.Elevation(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("elevation lookup failed", "error", err, "lat", lat, "lon", lon)
		return 0, false
	}
	return meters, ok
}

func (s *Service) publish(event domain.FeedEvent) {
	if s.feed == nil {
		return
	}
	s.feed.Enqueue(event)
}

func (s *Service) recordCriticality(level domain.Level) {
	s.metrics.CriticalityComputed.WithLabelValues(strconv.Itoa(int(level))).Inc()
}
