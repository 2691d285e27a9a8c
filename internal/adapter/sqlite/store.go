package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS observations (
	id            TEXT PRIMARY KEY,
	observed_at   INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	place_name    TEXT NOT NULL DEFAULT '',
	elevation     INTEGER,
	orientations  TEXT NOT NULL DEFAULT '[]',
	indices       TEXT NOT NULL DEFAULT '{"keys":[]}',
	observables   TEXT NOT NULL DEFAULT '[]',
	photos        TEXT NOT NULL DEFAULT '[]',
	profile_tests TEXT NOT NULL DEFAULT '{"stabilityTests":[]}',
	comment       TEXT NOT NULL DEFAULT ''
)`

const selectColumns = `id, observed_at, created_at, updated_at, latitude, longitude,
	place_name, elevation, orientations, indices, observables, photos, profile_tests, comment`

// Store persists observations in a SQLite database with WAL mode.
// Timestamps are stored as Unix milliseconds so range scans order correctly.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables WAL mode and
// creates the observations table.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// Enable WAL mode for concurrent reads during writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating observations table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_observations_observed_at ON observations(observed_at)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating observed_at index: %w", err)
	}

	// SQLite uses file-level locking; limit to one open connection to avoid
	// SQLITE_BUSY errors from concurrent writers.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Save inserts an observation. Saving an ID that already exists is a no-op,
// so replays of the same record are safe.
func (s *Store) Save(ctx context.Context, obs domain.Observation) error {
	row, err := toRow(obs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO observations
		(id, observed_at, created_at, updated_at, latitude, longitude,
		 place_name, elevation, orientations, indices, observables, photos, profile_tests, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		row.id, row.observedAt, row.createdAt, row.updatedAt, row.latitude, row.longitude,
		row.placeName, row.elevation, row.orientations, row.indices, row.observables,
		row.photos, row.profileTests, row.comment,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// Get returns the observation with the given ID or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (domain.Observation, error) {
	r := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM observations WHERE id = ?", id)
	obs, err := scanObservation(r)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Observation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Observation{}, fmt.Errorf("get observation %s: %w", id, err)
	}
	return obs, nil
}

// Delete removes the observation with the given ID or returns domain.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM observations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete observation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete observation %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Recent returns observations observed at or after since, most recent first.
// If limit > 0, at most limit observations are returned.
func (s *Store) Recent(ctx context.Context, since time.Time, limit int) ([]domain.Observation, error) {
	query := "SELECT " + selectColumns + " FROM observations WHERE observed_at >= ? ORDER BY observed_at DESC, id"

	var rows *sql.Rows
	var err error
	if limit > 0 {
		query += " LIMIT ?"
		rows, err = s.db.QueryContext(ctx, query, since.UnixMilli(), limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query, since.UnixMilli())
	}
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	observations := []domain.Observation{}
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// CheckReadiness reports whether the database answers.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObservation(sc scanner) (domain.Observation, error) {
	var r row
	err := sc.Scan(
		&r.id, &r.observedAt, &r.createdAt, &r.updatedAt, &r.latitude, &r.longitude,
		&r.placeName, &r.elevation, &r.orientations, &r.indices, &r.observables,
		&r.photos, &r.profileTests, &r.comment,
	)
	if err != nil {
		return domain.Observation{}, err
	}
	return fromRow(r)
}

// row is the column-level shape of an observation.
type row struct {
	id           string
	observedAt   int64
	createdAt    int64
	updatedAt    int64
	latitude     float64
	longitude    float64
	placeName    string
	elevation    sql.NullInt64
	orientations string
	indices      string
	observables  string
	photos       string
	profileTests string
	comment      string
}

func toRow(obs domain.Observation) (row, error) {
	r := row{
		id:         obs.ID,
		observedAt: obs.ObservedAt.UnixMilli(),
		createdAt:  obs.CreatedAt.UnixMilli(),
		updatedAt:  obs.UpdatedAt.UnixMilli(),
		latitude:   obs.Geo.Lat,
		longitude:  obs.Geo.Lon,
		placeName:  obs.PlaceName,
		comment:    obs.Comment,
	}
	if obs.Elevation != nil {
		r.elevation = sql.NullInt64{Int64: int64(*obs.Elevation), Valid: true}
	}

	var err error
	if r.orientations, err = marshalColumn("orientations", orientationKeys(obs.Orientations)); err != nil {
		return row{}, err
	}
	if r.indices, err = marshalColumn("indices", toStoredIndices(obs.Indices)); err != nil {
		return row{}, err
	}
	if r.observables, err = marshalColumn("observables", observableKeys(obs.Observables)); err != nil {
		return row{}, err
	}
	if r.photos, err = marshalColumn("photos", toStoredPhotos(obs.Photos)); err != nil {
		return row{}, err
	}
	if r.profileTests, err = marshalColumn("profile_tests", toStoredProfile(obs.ProfileTests)); err != nil {
		return row{}, err
	}
	return r, nil
}

func fromRow(r row) (domain.Observation, error) {
	obs := domain.Observation{
		ID:         r.id,
		ObservedAt: time.UnixMilli(r.observedAt).UTC(),
		CreatedAt:  time.UnixMilli(r.createdAt).UTC(),
		UpdatedAt:  time.UnixMilli(r.updatedAt).UTC(),
		Geo:        domain.Geo{Lat: r.latitude, Lon: r.longitude},
		PlaceName:  r.placeName,
		Comment:    r.comment,
	}
	if r.elevation.Valid {
		e := int(r.elevation.Int64)
		obs.Elevation = &e
	}

	var orientations, observables []string
	var indices storedIndices
	var photos []storedPhoto
	var profile storedProfile
	if err := unmarshalColumn("orientations", r.orientations, &orientations); err != nil {
		return domain.Observation{}, err
	}
	if err := unmarshalColumn("indices", r.indices, &indices); err != nil {
		return domain.Observation{}, err
	}
	if err := unmarshalColumn("observables", r.observables, &observables); err != nil {
		return domain.Observation{}, err
	}
	if err := unmarshalColumn("photos", r.photos, &photos); err != nil {
		return domain.Observation{}, err
	}
	if err := unmarshalColumn("profile_tests", r.profileTests, &profile); err != nil {
		return domain.Observation{}, err
	}

	obs.Orientations = domain.NormalizeOrientations(orientations)
	obs.Observables = domain.NormalizeObservables(observables)
	obs.Indices = indices.toDomain()
	obs.Photos = fromStoredPhotos(photos)
	obs.ProfileTests = profile.toDomain()
	return obs, nil
}

func marshalColumn(name string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return string(b), nil
}

func unmarshalColumn(name, data string, v any) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
