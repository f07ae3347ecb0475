package geo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flitz/pkg/geo"
)

func TestBucketKey(t *testing.T) {
	key := geo.BucketKey(40.7580, -73.9855)
	assert.Len(t, key, geo.BucketPrecision)

	// Nearby points in the same cell share a key.
	assert.Equal(t, key, geo.BucketKey(40.7581, -73.9856))

	// A point a few kilometers away lands in another cell.
	assert.NotEqual(t, key, geo.BucketKey(40.7850, -73.9680))

	// The cell center decodes back into the same cell.
	lat, lng := geo.BucketCenter(key)
	assert.Equal(t, key, geo.BucketKey(lat, lng))

	// The center sits within a cell diagonal of the original point.
	assert.Less(t, geo.HaversineMeters(40.7580, -73.9855, lat, lng), 700.0)
}

func TestHaversine(t *testing.T) {
	// Paris to London, roughly 344km.
	km := geo.HaversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, km, 5)

	assert.Zero(t, geo.HaversineMeters(10, 20, 10, 20))

	// One degree of longitude at the equator is about 111.2km.
	assert.InDelta(t, 111195, geo.HaversineMeters(0, 0, 0, 1), 100)
}

func TestTimezoneFromLongitude(t *testing.T) {
	assert.Equal(t, "UTC+0", geo.TimezoneName(2.35))    // Paris longitude
	assert.Equal(t, "UTC+9", geo.TimezoneName(139.69))  // Tokyo
	assert.Equal(t, "UTC-5", geo.TimezoneName(-73.99))  // New York
	assert.Equal(t, "UTC+12", geo.TimezoneName(180))

	tokyo := geo.LoadTimezone("UTC+9")
	_, offset := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC).In(tokyo).Zone()
	assert.Equal(t, 9*3600, offset)

	ny := geo.LoadTimezone("UTC-5")
	_, offset = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC).In(ny).Zone()
	assert.Equal(t, -5*3600, offset)

	// Garbage falls back to UTC.
	assert.Equal(t, time.UTC, geo.LoadTimezone(""))
	assert.Equal(t, time.UTC, geo.LoadTimezone("Mars/Olympus"))
}

func TestStartOfDay(t *testing.T) {
	tokyo := geo.LoadTimezone("UTC+9")

	// 23:00 UTC on the 28th is already the 29th in Tokyo.
	instant := time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC)
	start := geo.StartOfDay(instant, tokyo)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, tokyo), start)
	assert.True(t, start.Before(instant))

	utcStart := geo.StartOfDay(instant, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), utcStart)
}
