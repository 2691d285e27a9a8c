// Command validate re-checks an observation fixture written by cmd/genmock:
// fixture integrity, criticality classification, time attenuation, and a
// round trip through the SQLite store.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/observations.json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/adapter/sqlite"
	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/fixture"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("fixture", "", "path to the observation fixture")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*path))
}

func run(path string) int {
	fmt.Println("=== Observation Fixture Validation ===")
	fmt.Println()

	f, err := fixture.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	// Freeze time at generation so attenuation matches genmock.
	domain.SetClock(clockwork.NewFakeClockAt(f.GeneratedAt))
	defer domain.SetClock(nil)

	phases := []*phase{
		validateIntegrity(f),
		validateCriticality(f),
		validateAttenuation(f),
		validateStorage(f),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Observations: %d (generated at %s)\n", len(f.Entries), f.GeneratedAt.Format(time.RFC3339))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Fixture Integrity ──

func validateIntegrity(f fixture.Fixture) *phase {
	p := &phase{name: "Phase 1: Fixture Integrity"}

	if f.GeneratedAt.IsZero() {
		p.errorf("generated_at is zero")
	}
	if len(f.Entries) == 0 {
		p.errorf("fixture has no entries")
	}

	seen := map[string]bool{}
	for i, e := range f.Entries {
		obs := e.Observation
		if obs.ID != fixture.ID(i) {
			p.errorf("entry %d: id %q, expected %q", i, obs.ID, fixture.ID(i))
		}
		if seen[obs.ID] {
			p.errorf("entry %d: duplicate id %q", i, obs.ID)
		}
		seen[obs.ID] = true

		if !obs.Geo.Valid() {
			p.errorf("entry %d: coordinates out of range (%g, %g)", i, obs.Geo.Lat, obs.Geo.Lon)
		}
		if obs.ObservedAt.After(f.GeneratedAt) {
			p.errorf("entry %d: observed_at %s after generated_at", i, obs.ObservedAt.Format(time.RFC3339))
		}
		checkVocabulary(p, i, obs)
	}
	return p
}

func checkVocabulary(p *phase, i int, obs domain.Observation) {
	for _, k := range obs.Indices.Keys {
		if !k.Valid() {
			p.errorf("entry %d: unknown indice %q", i, k)
		}
	}
	for _, o := range obs.Observables {
		if !o.Valid() {
			p.errorf("entry %d: unknown observable %q", i, o)
		}
	}
	for _, o := range obs.Orientations {
		if !o.Valid() {
			p.errorf("entry %d: unknown orientation %q", i, o)
		}
	}
	if obs.Indices.Avalanche != nil && !obs.Indices.Has(domain.IndiceAvalanche) {
		p.errorf("entry %d: avalanche details without avalanche indice", i)
	}
}

// ── Phase 2: Criticality ──

func validateCriticality(f fixture.Fixture) *phase {
	p := &phase{name: "Phase 2: Criticality Classification"}
	for i, e := range f.Entries {
		got := e.Observation.Criticality()
		if got != e.Expected.CriticalityLevel {
			p.errorf("entry %d (%s): level %d, expected %d", i, e.Observation.Comment, got, e.Expected.CriticalityLevel)
		}
		if !got.Valid() {
			p.errorf("entry %d: level %d outside 1-5", i, got)
		}
		if got.Label() != e.Expected.Label {
			p.errorf("entry %d: label %q, expected %q", i, got.Label(), e.Expected.Label)
		}
	}
	return p
}

// ── Phase 3: Attenuation ──

func validateAttenuation(f fixture.Fixture) *phase {
	p := &phase{name: "Phase 3: Time Attenuation"}
	for i, e := range f.Entries {
		level := e.Expected.CriticalityLevel
		got := domain.AttenuateNow(level, e.Observation.ObservedAt)
		if got != e.Expected.AttenuatedLevel {
			p.errorf("entry %d: attenuated %d, expected %d", i, got, e.Expected.AttenuatedLevel)
		}
		if got > level {
			p.errorf("entry %d: attenuated %d above raw level %d", i, got, level)
		}
		// Far enough in the future every level decays to the floor.
		far := f.GeneratedAt.Add(5 * domain.AttenuationPeriod)
		if floor := domain.ApplyTimeAttenuation(level, e.Observation.ObservedAt, far); floor != domain.LevelLow {
			p.errorf("entry %d: level %d after five periods, expected %d", i, floor, domain.LevelLow)
		}
	}
	return p
}

// ── Phase 4: Storage Round Trip ──

func validateStorage(f fixture.Fixture) *phase {
	p := &phase{name: "Phase 4: Storage Round Trip (SQLite)"}

	dir, err := os.MkdirTemp("", "nivo-validate-*")
	if err != nil {
		p.errorf("create temp dir: %v", err)
		return p
	}
	defer os.RemoveAll(dir)

	store, err := sqlite.Open(filepath.Join(dir, "validate.db"))
	if err != nil {
		p.errorf("open store: %v", err)
		return p
	}
	defer store.Close()

	ctx := context.Background()
	for i, e := range f.Entries {
		if err := store.Save(ctx, e.Observation); err != nil {
			p.errorf("entry %d: save: %v", i, err)
		}
	}

	recent, err := store.Recent(ctx, time.Time{}, 0)
	if err != nil {
		p.errorf("recent: %v", err)
		return p
	}
	if len(recent) != len(f.Entries) {
		p.errorf("stored %d observations, expected %d", len(recent), len(f.Entries))
	}

	for i, e := range f.Entries {
		got, err := store.Get(ctx, e.Observation.ID)
		if err != nil {
			p.errorf("entry %d: get: %v", i, err)
			continue
		}
		if level := got.Criticality(); level != e.Expected.CriticalityLevel {
			p.errorf("entry %d: stored level %d, expected %d", i, level, e.Expected.CriticalityLevel)
		}
		if !got.ObservedAt.Equal(e.Observation.ObservedAt) {
			p.errorf("entry %d: observed_at changed in storage", i)
		}
	}
	return p
}
