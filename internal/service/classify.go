package service

import (
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"
)

// ClassifyRequest carries the signals of an observation being edited.
// Keys use the same vocabulary as submitted observations, legacy keys included.
type ClassifyRequest struct {
	Indices        []string   `json:"indices"`
	Observables    []string   `json:"observables"`
	AvalancheSizes []int      `json:"avalanche_sizes,omitempty"`
	RemoteTrigger  bool       `json:"remote_trigger,omitempty"`
	ObservedAt     *time.Time `json:"observed_at,omitempty"`
}

// Classification is the criticality preview of a ClassifyRequest.
type Classification struct {
	Level domain.Level     `json:"level"`
	Info  domain.LevelInfo `json:"info"`
	// AttenuatedLevel is set when the request carried observed_at.
	AttenuatedLevel *domain.Level `json:"attenuated_level,omitempty"`
}

// Classify computes the criticality of raw signals without storing anything.
func (s *Service) Classify(req ClassifyRequest) Classification {
	level := domain.ComputeCriticality(domain.Signals{
		Indices:        domain.NormalizeIndices(req.Indices),
		Observables:    domain.NormalizeObservables(req.Observables),
		AvalancheSizes: req.AvalancheSizes,
		RemoteTrigger:  req.RemoteTrigger,
	})
	s.recordCriticality(level)

	c := Classification{Level: level, Info: domain.Describe(level)}
	if req.ObservedAt != nil && !req.ObservedAt.IsZero() {
		attenuated := domain.AttenuateNow(level, *req.ObservedAt)
		c.AttenuatedLevel = &attenuated
	}
	return c
}

// Levels returns the criticality lookup table with its explanation.
func (s *Service) Levels() LevelTable {
	return LevelTable{Explanation: domain.Explanation, Levels: domain.Scale()}
}

// LevelTable is the criticality legend shown next to the map.
type LevelTable struct {
	Explanation string             `json:"explanation"`
	Levels      []domain.LevelInfo `json:"levels"`
}
