package domain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no observation has the requested ID.
	ErrNotFound = errors.New("observation not found")
	// ErrMissingCoordinates is returned when a draft has no latitude or longitude.
	ErrMissingCoordinates = errors.New("coordinates are required")
	// ErrInvalidCoordinates is returned when coordinates fall outside WGS-84 ranges.
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether g lies within WGS-84 bounds.
func (g Geo) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// AvalancheDetails is the optional detail of the avalanche indice.
type AvalancheDetails struct {
	Type          AvalancheType  `json:"type,omitempty"`
	Break         AvalancheBreak `json:"break,omitempty"`
	Sizes         []int          `json:"sizes,omitempty"`
	RemoteTrigger bool           `json:"remote_trigger,omitempty"`
}

// IndiceSet holds the observed indices and the avalanche detail when avalanche is among them.
type IndiceSet struct {
	Keys      []Indice          `json:"keys"`
	Avalanche *AvalancheDetails `json:"avalanche,omitempty"`
}

// Has reports whether i was observed.
func (s IndiceSet) Has(i Indice) bool {
	return slices.Contains(s.Keys, i)
}

// Photo references an image already hosted by the image service.
type Photo struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Comment  string `json:"comment,omitempty"`
}

// StabilityTest is one snowpack stability test result (CT, ECT, PST...).
type StabilityTest struct {
	Type    string `json:"type"`
	Score   string `json:"score"`
	DepthCm int    `json:"depth_cm"`
}

// Label renders the test the way observers write it, e.g. "ECTP12@45cm" or "PST 30/100@60cm".
func (t StabilityTest) Label() string {
	if t.Type == "PST" {
		return fmt.Sprintf("%s %s@%dcm", t.Type, t.Score, t.DepthCm)
	}
	return fmt.Sprintf("%s%s@%dcm", t.Type, t.Score, t.DepthCm)
}

// ProfileTests groups the stability tests and an optional snow profile image.
type ProfileTests struct {
	StabilityTests []StabilityTest `json:"stability_tests"`
	ProfileImage   *Photo          `json:"profile_image,omitempty"`
}

// Observation is a stored field observation.
type Observation struct {
	ID           string        `json:"id"`
	ObservedAt   time.Time     `json:"observed_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Geo          Geo           `json:"geo"`
	PlaceName    string        `json:"place_name,omitempty"`
	Elevation    *int          `json:"elevation,omitempty"`
	Orientations []Orientation `json:"orientations"`
	Indices      IndiceSet     `json:"indices"`
	Observables  []Observable  `json:"observables"`
	Photos       []Photo       `json:"photos"`
	ProfileTests ProfileTests  `json:"profile_tests"`
	Comment      string        `json:"comment,omitempty"`
}

// Signals adapts the stored record into classifier input. Avalanche detail is
// only forwarded when the avalanche indice is present.
func (o Observation) Signals() Signals {
	s := Signals{
		Indices:     o.Indices.Keys,
		Observables: o.Observables,
	}
	if o.Indices.Has(IndiceAvalanche) && o.Indices.Avalanche != nil {
		s.AvalancheSizes = o.Indices.Avalanche.Sizes
		s.RemoteTrigger = o.Indices.Avalanche.RemoteTrigger
	}
	return s
}

// Criticality classifies the observation's signals.
func (o Observation) Criticality() Level {
	return ComputeCriticality(o.Signals())
}

// Draft is a submitted observation before validation. Vocabulary fields are
// raw keys; unknown keys are dropped and legacy keys are translated.
type Draft struct {
	ObservedAt   *time.Time      `json:"observed_at,omitempty"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
	PlaceName    string          `json:"place_name,omitempty"`
	Elevation    *int            `json:"elevation,omitempty"`
	Orientations []string        `json:"orientations,omitempty"`
	Indices      []string        `json:"indices,omitempty"`
	Avalanche    *AvalancheDraft `json:"avalanche,omitempty"`
	Observables  []string        `json:"observables,omitempty"`
	Photos       []Photo         `json:"photos,omitempty"`
	ProfileTests *ProfileTests   `json:"profile_tests,omitempty"`
	Comment      string          `json:"comment,omitempty"`
}

// AvalancheDraft is the raw avalanche detail of a Draft.
type AvalancheDraft struct {
	Type          string `json:"type,omitempty"`
	Break         string `json:"break,omitempty"`
	Sizes         []int  `json:"sizes,omitempty"`
	RemoteTrigger bool   `json:"remote_trigger,omitempty"`
}

// Build validates d and returns the observation it describes. A missing
// observed_at defaults to now.
func (d Draft) Build(id string, now time.Time) (Observation, error) {
	if d.Latitude == nil || d.Longitude == nil {
		return Observation{}, ErrMissingCoordinates
	}
	geo := Geo{Lat: *d.Latitude, Lon: *d.Longitude}
	if !geo.Valid() {
		return Observation{}, fmt.Errorf("%w: lat=%g lon=%g", ErrInvalidCoordinates, geo.Lat, geo.Lon)
	}

	observedAt := now
	if d.ObservedAt != nil && !d.ObservedAt.IsZero() {
		observedAt = *d.ObservedAt
	}

	indices := NormalizeIndices(d.Indices)
	set := IndiceSet{Keys: indices}
	if d.Avalanche != nil && slices.Contains(indices, IndiceAvalanche) {
		set.Avalanche = &AvalancheDetails{
			Type:          ParseAvalancheType(d.Avalanche.Type),
			Break:         ParseAvalancheBreak(d.Avalanche.Break),
			Sizes:         NormalizeAvalancheSizes(d.Avalanche.Sizes),
			RemoteTrigger: d.Avalanche.RemoteTrigger,
		}
	}

	obs := Observation{
		ID:           id,
		ObservedAt:   observedAt.UTC(),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
		Geo:          geo,
		PlaceName:    strings.TrimSpace(d.PlaceName),
		Elevation:    d.Elevation,
		Orientations: NormalizeOrientations(d.Orientations),
		Indices:      set,
		Observables:  NormalizeObservables(d.Observables),
		Photos:       cleanPhotos(d.Photos),
		Comment:      strings.TrimSpace(d.Comment),
	}
	if d.ProfileTests != nil {
		obs.ProfileTests = *d.ProfileTests
	}
	obs.ProfileTests.StabilityTests = sortedTests(obs.ProfileTests.StabilityTests)
	return obs, nil
}

// NormalizeAvalancheSizes keeps the distinct sizes of the 1-5 scale, ascending.
func NormalizeAvalancheSizes(sizes []int) []int {
	out := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if s < minAvalancheSize || s > maxAvalancheSize || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func cleanPhotos(in []Photo) []Photo {
	out := make([]Photo, 0, len(in))
	for _, p := range in {
		if strings.TrimSpace(p.URL) == "" {
			continue
		}
		p.Comment = strings.TrimSpace(p.Comment)
		out = append(out, p)
	}
	return out
}

func sortedTests(in []StabilityTest) []StabilityTest {
	out := slices.Clone(in)
	if out == nil {
		out = []StabilityTest{}
	}
	slices.SortStableFunc(out, func(a, b StabilityTest) int { return cmp.Compare(a.DepthCm, b.DepthCm) })
	return out
}
