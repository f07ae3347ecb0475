package geo

import "github.com/mmcloughlin/geohash"

// BucketPrecision is the geohash length used for batch-match cells.
// Precision 6 gives cells of roughly 1.22km x 0.61km.
const BucketPrecision = 6

// BucketKey encodes a coordinate into its fixed-precision cell key.
// Two users on opposite sides of a cell boundary never share a key even if
// physically close; accepted approximation.
func BucketKey(lat, lng float64) string {
	return geohash.EncodeWithPrecision(lat, lng, BucketPrecision)
}

// BucketCenter decodes a cell key back to its representative coordinate.
func BucketCenter(key string) (lat, lng float64) {
	return geohash.DecodeCenter(key)
}
