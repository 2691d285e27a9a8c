package domain

import "context"

// ElevationProvider looks up terrain elevation for a coordinate.
type ElevationProvider interface {
	// Elevation returns the elevation in whole meters. ok is false when the
	// provider has no data for the point.
	Elevation(ctx context.Context, lat, lon float64) (meters int, ok bool, err error)
}

// FillElevation sets obs.Elevation from the provider when the observer left it
// empty. Lookup failures leave the observation unchanged; the caller decides
// whether to log them.
func FillElevation(ctx context.Context, obs Observation, provider ElevationProvider) (Observation, error) {
	if provider == nil || obs.Elevation != nil {
		return obs, nil
	}
	meters, ok, err := provider.Elevation(ctx, obs.Geo.Lat, obs.Geo.Lon)
	if err != nil {
		return obs, err
	}
	if ok {
		obs.Elevation = &meters
	}
	return obs, nil
}
