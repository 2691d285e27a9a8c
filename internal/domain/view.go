package domain

import (
	"math"
	"strconv"
	"time"
)

// MapItem is the map-listing summary of an observation, colored by criticality.
type MapItem struct {
	ID               string    `json:"id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	PlaceName        string    `json:"place_name,omitempty"`
	ElevationBand    string    `json:"elevation_band,omitempty"`
	ObservedAt       time.Time `json:"observed_at"`
	Freshness        string    `json:"freshness"`
	CriticalityLevel Level     `json:"criticality_level"`
	AttenuatedLevel  Level     `json:"attenuated_level"`
	DisplayLevel     Level     `json:"display_level"`
	Label            string    `json:"label"`
	MarkerColor      string    `json:"marker_color"`
}

// NewMapItem summarizes obs as of now. The attenuated level is always
// reported; it only drives the display level when attenuate is set.
func NewMapItem(obs Observation, now time.Time, attenuate bool) MapItem {
	base := obs.Criticality()
	attenuated := ApplyTimeAttenuation(base, obs.ObservedAt, now)
	display := base
	if attenuate {
		display = attenuated
	}
	return MapItem{
		ID:               obs.ID,
		Latitude:         obs.Geo.Lat,
		Longitude:        obs.Geo.Lon,
		PlaceName:        obs.PlaceName,
		ElevationBand:    ElevationBand(obs.Elevation),
		ObservedAt:       obs.ObservedAt,
		Freshness:        FreshnessLabel(obs.ObservedAt, now),
		CriticalityLevel: base,
		AttenuatedLevel:  attenuated,
		DisplayLevel:     display,
		Label:            display.Label(),
		MarkerColor:      display.MarkerColor(),
	}
}

// LabeledKey is a vocabulary key with its display label.
type LabeledKey struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// OrientationView is an aspect with its label and marker angle.
type OrientationView struct {
	Key   Orientation `json:"key"`
	Label string      `json:"label"`
	Angle int         `json:"angle"`
}

// AvalancheView is the labeled avalanche detail of a Detail.
type AvalancheView struct {
	Type          string `json:"type,omitempty"`
	Break         string `json:"break,omitempty"`
	Sizes         []int  `json:"sizes,omitempty"`
	RemoteTrigger bool   `json:"remote_trigger"`
}

// Detail is the detail-page view of an observation.
type Detail struct {
	MapItem
	Elevation      *int              `json:"elevation,omitempty"`
	Badge          BadgeColors       `json:"badge"`
	Explanation    string            `json:"explanation"`
	Orientations   []OrientationView `json:"orientations"`
	Indices        []LabeledKey      `json:"indices"`
	Avalanche      *AvalancheView    `json:"avalanche,omitempty"`
	Observables    []LabeledKey      `json:"observables"`
	Photos         []Photo           `json:"photos"`
	StabilityTests []string          `json:"stability_tests"`
	ProfileImage   *Photo            `json:"profile_image,omitempty"`
	Comment        string            `json:"comment,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// NewDetail builds the detail view of obs as of now.
func NewDetail(obs Observation, now time.Time, attenuate bool) Detail {
	item := NewMapItem(obs, now, attenuate)
	d := Detail{
		MapItem:        item,
		Elevation:      obs.Elevation,
		Badge:          item.DisplayLevel.Badge(),
		Explanation:    Explanation,
		Orientations:   make([]OrientationView, 0, len(obs.Orientations)),
		Indices:        make([]LabeledKey, 0, len(obs.Indices.Keys)),
		Observables:    make([]LabeledKey, 0, len(obs.Observables)),
		Photos:         obs.Photos,
		StabilityTests: make([]string, 0, len(obs.ProfileTests.StabilityTests)),
		ProfileImage:   obs.ProfileTests.ProfileImage,
		Comment:        obs.Comment,
		CreatedAt:      obs.CreatedAt,
	}
	if d.Photos == nil {
		d.Photos = []Photo{}
	}
	for _, o := range obs.Orientations {
		d.Orientations = append(d.Orientations, OrientationView{Key: o, Label: o.Label(), Angle: o.Angle()})
	}
	for _, i := range obs.Indices.Keys {
		d.Indices = append(d.Indices, LabeledKey{Key: string(i), Label: IndiceLabel(string(i))})
	}
	for _, o := range obs.Observables {
		d.Observables = append(d.Observables, LabeledKey{Key: string(o), Label: ObservableLabel(string(o))})
	}
	if av := obs.Indices.Avalanche; av != nil && obs.Indices.Has(IndiceAvalanche) {
		d.Avalanche = &AvalancheView{
			Sizes:         av.Sizes,
			RemoteTrigger: av.RemoteTrigger,
		}
		if av.Type != "" {
			d.Avalanche.Type = av.Type.Label()
		}
		if av.Break != "" {
			d.Avalanche.Break = av.Break.Label()
		}
	}
	for _, t := range obs.ProfileTests.StabilityTests {
		d.StabilityTests = append(d.StabilityTests, t.Label())
	}
	return d
}

// ElevationBand rounds an elevation to the nearest 100 m, e.g. 2134 -> "2100".
// Returns "" when the elevation is unknown.
func ElevationBand(elevation *int) string {
	if elevation == nil {
		return ""
	}
	rounded := int(math.Round(float64(*elevation)/100) * 100)
	return strconv.Itoa(rounded)
}

// FreshnessLabel renders the age of t relative to now: "<1min", "12min",
// "5h", "3d", "2w", then months. Returns "" for a zero t.
func FreshnessLabel(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	age := now.Sub(t)
	if age < 0 {
		age = 0
	}
	day := 24 * time.Hour
	switch {
	case age < time.Minute:
		return "<1min"
	case age < time.Hour:
		return strconv.Itoa(int(age/time.Minute)) + "min"
	case age < day:
		return strconv.Itoa(int(age/time.Hour)) + "h"
	case age < 7*day:
		return strconv.Itoa(int(age/day)) + "d"
	case age < 28*day:
		return strconv.Itoa(int(age/(7*day))) + "w"
	default:
		return strconv.Itoa(int(age/(30*day))) + "mo"
	}
}
