package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 2, 12, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func makeObservation(id string, observedAt time.Time) domain.Observation {
	elevation := 2340
	return domain.Observation{
		ID:           id,
		ObservedAt:   observedAt,
		CreatedAt:    observedAt.Add(time.Minute),
		UpdatedAt:    observedAt.Add(time.Minute),
		Geo:          domain.Geo{Lat: 45.9237, Lon: 6.8694},
		PlaceName:    "Col de Balme",
		Elevation:    &elevation,
		Orientations: []domain.Orientation{domain.OrientationN, domain.OrientationNE},
		Indices: domain.IndiceSet{
			Keys: []domain.Indice{domain.IndiceAvalanche, domain.IndiceCrack},
			Avalanche: &domain.AvalancheDetails{
				Type:          domain.AvalancheTriggered,
				Break:         domain.BreakLinear,
				Sizes:         []int{2, 3},
				RemoteTrigger: true,
			},
		},
		Observables: []domain.Observable{domain.ObservableTransport},
		Photos:      []domain.Photo{{URL: "https://img.example/a.jpg", PublicID: "obs/a", Comment: "crown"}},
		ProfileTests: domain.ProfileTests{
			StabilityTests: []domain.StabilityTest{{Type: "ECT", Score: "P12", DepthCm: 45}},
			ProfileImage:   &domain.Photo{URL: "https://img.example/p.jpg", PublicID: "obs/p"},
		},
		Comment: "Fresh slab below the ridge.",
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := makeObservation("obs-1", baseTime)
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, "obs-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, domain.LevelStrong, got.Criticality())
}

func TestStore_SaveWithoutOptionalFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	obs := domain.Observation{ID: "bare", ObservedAt: baseTime, CreatedAt: baseTime, UpdatedAt: baseTime, Geo: domain.Geo{Lat: 44.1, Lon: 6.2}}
	require.NoError(t, store.Save(ctx, obs))

	got, err := store.Get(ctx, "bare")
	require.NoError(t, err)
	assert.Nil(t, got.Elevation)
	assert.Empty(t, got.Indices.Keys)
	assert.Nil(t, got.Indices.Avalanche)
	assert.Empty(t, got.Photos)
	assert.Nil(t, got.ProfileTests.ProfileImage)
	assert.Equal(t, domain.LevelLow, got.Criticality())
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	obs := makeObservation("obs-1", baseTime)
	require.NoError(t, store.Save(ctx, obs))

	obs.Comment = "changed"
	require.NoError(t, store.Save(ctx, obs))

	got, err := store.Get(ctx, "obs-1")
	require.NoError(t, err)
	assert.Equal(t, "Fresh slab below the ridge.", got.Comment)
}

func TestStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, makeObservation("obs-1", baseTime)))
	require.NoError(t, store.Delete(ctx, "obs-1"))

	_, err := store.Get(ctx, "obs-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "obs-1"), domain.ErrNotFound)
}

func TestStore_Recent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, age := range []time.Duration{20 * 24 * time.Hour, 2 * time.Hour, 3 * 24 * time.Hour, 10 * time.Minute} {
		id := []string{"old", "b", "c", "d"}[i]
		require.NoError(t, store.Save(ctx, makeObservation(id, baseTime.Add(-age))))
	}

	recent, err := store.Recent(ctx, baseTime.Add(-14*24*time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].ID, "most recent first")
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, "c", recent[2].ID)

	limited, err := store.Recent(ctx, baseTime.Add(-14*24*time.Hour), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := store.Recent(ctx, baseTime.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_DecodesLegacyRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `INSERT INTO observations
		(id, observed_at, created_at, updated_at, latitude, longitude, orientations, indices, observables)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"legacy", baseTime.UnixMilli(), baseTime.UnixMilli(), baseTime.UnixMilli(), 45.0, 6.0,
		`["NO","SO"]`,
		`{"keys":["avalanche","fissure"],"details":{"avalanche":{"type":"spontane","cassure":"ponctuelle","tailles":[4],"declenchementARemote":true}}}`,
		`["surcharge","humidification"]`,
	)
	require.NoError(t, err)

	got, err := store.Get(ctx, "legacy")
	require.NoError(t, err)

	assert.Equal(t, []domain.Orientation{domain.OrientationSW, domain.OrientationNW}, got.Orientations)
	assert.Equal(t, []domain.Indice{domain.IndiceAvalanche, domain.IndiceCrack}, got.Indices.Keys)
	require.NotNil(t, got.Indices.Avalanche)
	assert.Equal(t, domain.AvalancheSpontaneous, got.Indices.Avalanche.Type)
	assert.Equal(t, domain.BreakPoint, got.Indices.Avalanche.Break)
	assert.Equal(t, []int{4}, got.Indices.Avalanche.Sizes)
	assert.True(t, got.Indices.Avalanche.RemoteTrigger)
	assert.Equal(t, []domain.Observable{domain.ObservableOverload, domain.ObservableHumidification}, got.Observables)
	assert.Equal(t, domain.LevelStrong, got.Criticality())
}

func TestStore_CheckReadiness(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.CheckReadiness(context.Background()))
}
