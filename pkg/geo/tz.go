package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimezoneName derives a fixed-offset zone name from longitude
// (15 degrees per hour). Good enough for local-day boundaries; exact civil
// timezones would need a coordinate-to-zone dataset.
func TimezoneName(lng float64) string {
	offset := int(math.Round(lng / 15))
	if offset >= 0 {
		return fmt.Sprintf("UTC+%d", offset)
	}
	return fmt.Sprintf("UTC%d", offset)
}

// LoadTimezone resolves a name produced by TimezoneName into a
// *time.Location. Unknown names fall back to UTC.
func LoadTimezone(name string) *time.Location {
	rest, ok := strings.CutPrefix(name, "UTC")
	if !ok || rest == "" {
		return time.UTC
	}
	hours, err := strconv.Atoi(strings.TrimPrefix(rest, "+"))
	if err != nil {
		return time.UTC
	}
	return time.FixedZone(name, hours*3600)
}

// StartOfDay returns local midnight of t in loc, as an instant.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
