package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/adapter/httpadapter"
	"github.com/couchcryptid/nivo-observations/internal/adapter/sqlite"
	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/observability"
	"github.com/couchcryptid/nivo-observations/internal/service"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 2, 12, 9, 0, 0, 0, time.UTC)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubElevation struct{}

func (stubElevation) Elevation(_ context.Context, lat, _ float64) (int, bool, error) {
	if lat == 0 {
		return 0, false, nil
	}
	return 2134, true, nil
}

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store, stubElevation{}, nil, logger, observability.NewMetricsForTesting(),
		service.Settings{RecentWindow: 14 * 24 * time.Hour, ListLimit: 100})
	return httpadapter.NewServer(":0", svc, &mockReadiness{err: readyErr}, nil, logger)
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func createObservation(t *testing.T, srv http.Handler, body string) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/observations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

const avalancheBody = `{
	"latitude": 45.9237,
	"longitude": 6.8694,
	"place_name": "Col de Balme",
	"orientations": ["N", "NE"],
	"indices": ["avalanche", "crack"],
	"avalanche": {"type": "spontaneous", "sizes": [4]},
	"observables": ["transport"]
}`

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(t, newTestServer(t, errors.New("database locked")), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCreateAndGetObservation(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createObservation(t, srv, avalancheBody)

	rec := do(t, srv, http.MethodGet, "/api/observations/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail domain.Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, id, detail.ID)
	assert.Equal(t, domain.LevelStrong, detail.CriticalityLevel)
	assert.Equal(t, "Strong", detail.Label)
	require.NotNil(t, detail.Elevation)
	assert.Equal(t, 2134, *detail.Elevation)
	assert.Equal(t, "2100", detail.ElevationBand)
	require.NotNil(t, detail.Avalanche)
	assert.Equal(t, "Spontaneous", detail.Avalanche.Type)
}

func TestCreateObservation_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"latitude":`},
		{"missing coordinates", `{"indices":["crack"]}`},
		{"out of range", `{"latitude": 91, "longitude": 6}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/observations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestGetObservation_NotFound(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/observations/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestListObservations(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/observations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	createObservation(t, srv, avalancheBody)
	createObservation(t, srv, `{"latitude": 45.1, "longitude": 6.2, "observed_at": "2025-02-11T09:00:00Z"}`)

	rec = do(t, srv, http.MethodGet, "/api/observations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []domain.MapItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, domain.LevelStrong, items[0].DisplayLevel)
	assert.Equal(t, "#ef4444", items[0].MarkerColor)
	assert.Equal(t, domain.LevelLow, items[1].DisplayLevel)
	assert.Equal(t, "1d", items[1].Freshness)
}

func TestDeleteObservation(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createObservation(t, srv, avalancheBody)

	rec := do(t, srv, http.MethodDelete, "/api/observations/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/observations/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassify(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/criticality",
		`{"indices":["avalanche"],"avalanche_sizes":[4],"observed_at":"2025-02-05T09:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var c service.Classification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, domain.LevelStrong, c.Level)
	assert.Equal(t, "Strong", c.Info.Label)
	require.NotNil(t, c.AttenuatedLevel)
	assert.Equal(t, domain.LevelLimited, *c.AttenuatedLevel)

	rec = do(t, srv, http.MethodPost, "/api/criticality", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLevels(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/criticality/levels", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var table service.LevelTable
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	assert.Len(t, table.Levels, 5)
	assert.NotEmpty(t, table.Explanation)
}

func TestElevation(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/elevation?lat=45.92&lon=6.87", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"elevation":2134}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/elevation?lat=0&lon=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"elevation":null}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/elevation?lat=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLiveRouteDisabledWithoutHub(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/live", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
