package domain

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testObservationID = "obs-123"

var testNow = time.Date(2025, 2, 12, 14, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestDraftBuild(t *testing.T) {
	t.Run("full draft", func(t *testing.T) {
		observed := time.Date(2025, 2, 11, 10, 0, 0, 0, time.FixedZone("CET", 3600))
		d := Draft{
			ObservedAt:   &observed,
			Latitude:     ptr(45.9237),
			Longitude:    ptr(6.8694),
			PlaceName:    "  Col de Balme ",
			Elevation:    ptr(2190),
			Orientations: []string{"NO", "N"},
			Indices:      []string{"avalanche", "fissure"},
			Avalanche: &AvalancheDraft{
				Type:          "provoque",
				Break:         "lineaire",
				Sizes:         []int{3, 2, 3, 9},
				RemoteTrigger: true,
			},
			Observables: []string{"transport", "surcharge", "fog"},
			Photos:      []Photo{{URL: "https://img.example/1.jpg", PublicID: "obs/1"}, {URL: " "}},
			ProfileTests: &ProfileTests{StabilityTests: []StabilityTest{
				{Type: "ECT", Score: "P12", DepthCm: 60},
				{Type: "CT", Score: "15", DepthCm: 30},
			}},
			Comment: "Slab on the lee side. ",
		}

		obs, err := d.Build(testObservationID, testNow)
		require.NoError(t, err)

		want := Observation{
			ID:           testObservationID,
			ObservedAt:   time.Date(2025, 2, 11, 9, 0, 0, 0, time.UTC),
			CreatedAt:    testNow,
			UpdatedAt:    testNow,
			Geo:          Geo{Lat: 45.9237, Lon: 6.8694},
			PlaceName:    "Col de Balme",
			Elevation:    ptr(2190),
			Orientations: []Orientation{OrientationN, OrientationNW},
			Indices: IndiceSet{
				Keys: []Indice{IndiceAvalanche, IndiceCrack},
				Avalanche: &AvalancheDetails{
					Type:          AvalancheTriggered,
					Break:         BreakLinear,
					Sizes:         []int{2, 3},
					RemoteTrigger: true,
				},
			},
			Observables: []Observable{ObservableTransport, ObservableOverload},
			Photos:      []Photo{{URL: "https://img.example/1.jpg", PublicID: "obs/1"}},
			ProfileTests: ProfileTests{StabilityTests: []StabilityTest{
				{Type: "CT", Score: "15", DepthCm: 30},
				{Type: "ECT", Score: "P12", DepthCm: 60},
			}},
			Comment: "Slab on the lee side.",
		}
		if diff := cmp.Diff(want, obs); diff != "" {
			t.Errorf("Build mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("observed_at defaults to now", func(t *testing.T) {
		obs, err := Draft{Latitude: ptr(45.0), Longitude: ptr(6.0)}.Build(testObservationID, testNow)
		require.NoError(t, err)
		assert.Equal(t, testNow, obs.ObservedAt)
		assert.Empty(t, obs.Indices.Keys)
		assert.Empty(t, obs.Photos)
		assert.NotNil(t, obs.ProfileTests.StabilityTests)
	})

	t.Run("avalanche detail dropped without avalanche indice", func(t *testing.T) {
		obs, err := Draft{
			Latitude:  ptr(45.0),
			Longitude: ptr(6.0),
			Indices:   []string{"woumpf"},
			Avalanche: &AvalancheDraft{Sizes: []int{5}, RemoteTrigger: true},
		}.Build(testObservationID, testNow)
		require.NoError(t, err)
		assert.Nil(t, obs.Indices.Avalanche)
		assert.Equal(t, LevelLimited, obs.Criticality())
	})

	t.Run("stability tests sort by depth at integer extremes", func(t *testing.T) {
		obs, err := Draft{
			Latitude:  ptr(45.0),
			Longitude: ptr(6.0),
			ProfileTests: &ProfileTests{StabilityTests: []StabilityTest{
				{Type: "ECT", Score: "X", DepthCm: math.MaxInt},
				{Type: "CT", Score: "11", DepthCm: 20},
				{Type: "CT", Score: "30", DepthCm: math.MinInt},
			}},
		}.Build(testObservationID, testNow)
		require.NoError(t, err)

		depths := make([]int, 0, 3)
		for _, st := range obs.ProfileTests.StabilityTests {
			depths = append(depths, st.DepthCm)
		}
		assert.Equal(t, []int{math.MinInt, 20, math.MaxInt}, depths)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		_, err := Draft{Latitude: ptr(45.0)}.Build(testObservationID, testNow)
		assert.ErrorIs(t, err, ErrMissingCoordinates)
	})

	t.Run("coordinates out of range", func(t *testing.T) {
		_, err := Draft{Latitude: ptr(95.0), Longitude: ptr(6.0)}.Build(testObservationID, testNow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidCoordinates))
		assert.Contains(t, err.Error(), "lat=95")
	})
}

func TestObservationSignals(t *testing.T) {
	obs := Observation{
		Indices: IndiceSet{
			Keys:      []Indice{IndiceAvalanche},
			Avalanche: &AvalancheDetails{Sizes: []int{3, 4}},
		},
	}
	assert.Equal(t, []int{3, 4}, obs.Signals().AvalancheSizes)
	assert.Equal(t, LevelStrong, obs.Criticality())

	// A stale detail left on a record without the avalanche indice is ignored.
	obs.Indices.Keys = []Indice{IndiceCrack}
	assert.Nil(t, obs.Signals().AvalancheSizes)
	assert.Equal(t, LevelLimited, obs.Criticality())
}

func TestEndToEndScenarios(t *testing.T) {
	t.Run("two observables", func(t *testing.T) {
		obs := Observation{Observables: []Observable{ObservableTransport, ObservableOverload}}
		assert.Equal(t, LevelLimited, obs.Criticality())
	})

	t.Run("avalanche and woumpf with transport", func(t *testing.T) {
		obs := Observation{
			Indices:     IndiceSet{Keys: []Indice{IndiceAvalanche, IndiceWoumpf}},
			Observables: []Observable{ObservableTransport},
		}
		assert.Equal(t, LevelStrong, obs.Criticality())
	})

	t.Run("avalanche sizes 3 and 4", func(t *testing.T) {
		obs := Observation{Indices: IndiceSet{
			Keys:      []Indice{IndiceAvalanche},
			Avalanche: &AvalancheDetails{Sizes: []int{3, 4}},
		}}
		assert.Equal(t, LevelStrong, obs.Criticality())
	})
}

func TestStabilityTestLabel(t *testing.T) {
	assert.Equal(t, "ECTP12@45cm", StabilityTest{Type: "ECT", Score: "P12", DepthCm: 45}.Label())
	assert.Equal(t, "PST 30/100@60cm", StabilityTest{Type: "PST", Score: "30/100", DepthCm: 60}.Label())
}

type stubElevation struct {
	meters int
	ok     bool
	err    error
	calls  int
}

func (s *stubElevation) Elevation(_ context.Context, _, _ float64) (int, bool, error) {
	s.calls++
	return s.meters, s.ok, s.err
}

func TestFillElevation(t *testing.T) {
	ctx := context.Background()

	t.Run("fills missing elevation", func(t *testing.T) {
		provider := &stubElevation{meters: 2134, ok: true}
		obs, err := FillElevation(ctx, Observation{}, provider)
		require.NoError(t, err)
		require.NotNil(t, obs.Elevation)
		assert.Equal(t, 2134, *obs.Elevation)
	})

	t.Run("keeps observer elevation", func(t *testing.T) {
		provider := &stubElevation{meters: 2134, ok: true}
		obs, err := FillElevation(ctx, Observation{Elevation: ptr(1800)}, provider)
		require.NoError(t, err)
		assert.Equal(t, 1800, *obs.Elevation)
		assert.Zero(t, provider.calls)
	})

	t.Run("no data", func(t *testing.T) {
		obs, err := FillElevation(ctx, Observation{}, &stubElevation{})
		require.NoError(t, err)
		assert.Nil(t, obs.Elevation)
	})

	t.Run("provider error", func(t *testing.T) {
		obs, err := FillElevation(ctx, Observation{}, &stubElevation{err: errors.New("timeout")})
		require.Error(t, err)
		assert.Nil(t, obs.Elevation)
	})

	t.Run("nil provider", func(t *testing.T) {
		obs, err := FillElevation(ctx, Observation{}, nil)
		require.NoError(t, err)
		assert.Nil(t, obs.Elevation)
	})
}
