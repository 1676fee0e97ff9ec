package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding fills in an empty location description from the
// epicenter coordinates. Observations that already carry a description, a nil
// geocoder, and lookup failures all leave the observation unchanged.
func EnrichWithGeocoding(ctx context.Context, o Observation, geocoder Geocoder, logger *slog.Logger) Observation {
	if geocoder == nil || o.LocationDescription != "" {
		return o
	}

	result, err := geocoder.ReverseGeocode(ctx, o.Latitude, o.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"observation", o.Name,
			"lat", o.Latitude,
			"lon", o.Longitude,
			"error", err,
		)
		return o
	}

	switch {
	case result.FormattedAddress != "":
		o.LocationDescription = result.FormattedAddress
	case result.PlaceName != "":
		o.LocationDescription = result.PlaceName
	}
	return o
}
