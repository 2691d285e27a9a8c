// Command genmock writes a deterministic fixture of sample observations for
// tests, demos, and cmd/validate. Each entry records the criticality and
// attenuated level it must classify to.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/observations.json -count 40
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/fixture"
	"github.com/jonboulle/clockwork"
)

// generatedAt is the fixed "now" of every fixture.
var generatedAt = time.Date(2025, time.February, 12, 9, 0, 0, 0, time.UTC)

// spacing is the gap between consecutive sample observations. It is not a
// divisor of a day so the samples spread across the attenuation period.
const spacing = 17 * time.Hour

type place struct {
	name      string
	lat, lon  float64
	elevation int
}

var places = []place{
	{name: "Col de Balme", lat: 46.0265, lon: 6.9614, elevation: 2191},
	{name: "Aiguille du Midi", lat: 45.8786, lon: 6.8874, elevation: 3842},
	{name: "Pointe Percée", lat: 45.9676, lon: 6.5473, elevation: 2750},
	{name: "Col du Galibier", lat: 45.0640, lon: 6.4078, elevation: 2642},
	{name: "Grande Sassière", lat: 45.5086, lon: 7.0258, elevation: 3747},
	{name: "Pic de la Sauvagette", lat: 44.9162, lon: 6.5703, elevation: 2510},
}

// scenario is a draft template; the place and time are filled per sample.
type scenario struct {
	name  string
	draft domain.Draft
}

var scenarios = []scenario{
	{name: "quiet", draft: domain.Draft{Orientations: []string{"S"}}},
	{name: "woumpf", draft: domain.Draft{Indices: []string{"woumpf"}, Orientations: []string{"N", "NE"}}},
	{name: "wind slab", draft: domain.Draft{
		Indices:      []string{"crack"},
		Observables:  []string{"transport", "overload"},
		Orientations: []string{"NE", "E"},
	}},
	{name: "legacy keys", draft: domain.Draft{
		Indices:      []string{"fissure", "woumpf"},
		Observables:  []string{"surcharge"},
		Orientations: []string{"NO", "O"},
	}},
	{name: "all signs", draft: domain.Draft{
		Indices:     []string{"crack", "woumpf"},
		Observables: []string{"transport", "overload", "humidification"},
	}},
	{name: "small avalanche", draft: domain.Draft{
		Indices:   []string{"avalanche"},
		Avalanche: &domain.AvalancheDraft{Type: "spontaneous", Break: "point", Sizes: []int{1, 2}},
	}},
	{name: "remote triggered", draft: domain.Draft{
		Indices:   []string{"avalanche", "crack"},
		Avalanche: &domain.AvalancheDraft{Type: "triggered", Break: "linear", Sizes: []int{2}, RemoteTrigger: true},
	}},
	{name: "size 4", draft: domain.Draft{
		Indices:   []string{"avalanche"},
		Avalanche: &domain.AvalancheDraft{Type: "spontaneous", Break: "linear", Sizes: []int{3, 4}},
		ProfileTests: &domain.ProfileTests{StabilityTests: []domain.StabilityTest{
			{Type: "ECT", Score: "P12", DepthCm: 45},
		}},
	}},
	{name: "size 5", draft: domain.Draft{
		Indices:     []string{"avalanche", "woumpf"},
		Avalanche:   &domain.AvalancheDraft{Type: "spontaneous", Sizes: []int{5}},
		Observables: []string{"humidification"},
	}},
	{name: "avalanche without size", draft: domain.Draft{
		Indices:   []string{"avalanche"},
		Avalanche: &domain.AvalancheDraft{Sizes: []int{0, 9}},
	}},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the observation fixture")
	count := flag.Int("count", 2*len(scenarios), "number of sample observations")
	flag.Parse()

	if *out == "" || *count <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fixed clock for reproducible timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	defer domain.SetClock(nil)

	f := fixture.Fixture{GeneratedAt: domain.Now()}
	for n := range *count {
		obs, err := sample(n, domain.Now())
		if err != nil {
			return fmt.Errorf("sample %d: %w", n, err)
		}
		f.Entries = append(f.Entries, fixture.NewEntry(obs, f.GeneratedAt))
	}

	if err := fixture.Write(*out, f); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d observations)", *out, len(f.Entries))

	printStats(f)
	return nil
}

func sample(n int, now time.Time) (domain.Observation, error) {
	s := scenarios[n%len(scenarios)]
	p := places[n%len(places)]

	draft := s.draft
	lat, lon, elevation := p.lat, p.lon, p.elevation
	observedAt := now.Add(-time.Duration(n) * spacing)
	draft.Latitude = &lat
	draft.Longitude = &lon
	draft.Elevation = &elevation
	draft.ObservedAt = &observedAt
	draft.PlaceName = p.name
	draft.Comment = s.name

	return draft.Build(fixture.ID(n), now)
}

func printStats(f fixture.Fixture) {
	byLevel := map[domain.Level]int{}
	byAttenuated := map[domain.Level]int{}
	for _, e := range f.Entries {
		byLevel[e.Expected.CriticalityLevel]++
		byAttenuated[e.Expected.AttenuatedLevel]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(f.Entries))
	for _, l := range domain.Levels() {
		fmt.Printf("  %-12s raw=%d attenuated=%d\n", l.Label(), byLevel[l], byAttenuated[l])
	}
}
