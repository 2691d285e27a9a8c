// Package fixture reads and writes the sample observation fixtures produced
// by cmd/genmock and checked by cmd/validate.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/google/uuid"
)

// Namespace derives name-based observation IDs so regenerated fixtures keep
// the same IDs.
var Namespace = uuid.MustParse("6f1c1d0e-2b8a-4f57-9a51-5e0d7c3b2a10")

// ID returns the deterministic ID of the n-th sample observation.
func ID(n int) string {
	return uuid.NewSHA1(Namespace, []byte(fmt.Sprintf("nivo-mock-%d", n))).String()
}

// Fixture is a set of sample observations with the levels they must classify to.
type Fixture struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

// Entry pairs an observation with its expected classification.
type Entry struct {
	Observation domain.Observation `json:"observation"`
	Expected    Expected           `json:"expected"`
}

// Expected is the classification recorded at generation time.
type Expected struct {
	CriticalityLevel domain.Level `json:"criticality_level"`
	AttenuatedLevel  domain.Level `json:"attenuated_level"`
	Label            string       `json:"label"`
}

// NewEntry classifies obs as of now.
func NewEntry(obs domain.Observation, now time.Time) Entry {
	level := obs.Criticality()
	return Entry{
		Observation: obs,
		Expected: Expected{
			CriticalityLevel: level,
			AttenuatedLevel:  domain.ApplyTimeAttenuation(level, obs.ObservedAt, now),
			Label:            level.Label(),
		},
	}
}

// Write stores f as indented JSON, creating parent directories.
func Write(path string, f Fixture) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// Load reads a fixture written by Write.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, err
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}
