// Package gps reconciles decoded NMEA sentences into one authoritative fix
// suitable for JSON and MQTT.
package gps

import (
	"fmt"
	"time"

	"github.com/relabs-tech/vertiport_gps/internal/nmea"
)

// Fix is the current best-known position/time/quality record. One Fix lives
// for the lifetime of its Aggregator and is mutated field by field as
// sentences arrive; optional fields are pointers so "not received yet" never
// reads as 0.
type Fix struct {
	Latitude  *float64 `json:"lat,omitempty"`   // decimal degrees
	Longitude *float64 `json:"lon,omitempty"`   // decimal degrees
	AltitudeM *float64 `json:"alt_m,omitempty"` // meters above sea level

	UTCTime *nmea.ClockTime `json:"utc_time,omitempty"`
	Date    *nmea.Date      `json:"date,omitempty"`

	Status    nmea.Status       `json:"status"`
	Dimension nmea.FixDimension `json:"dimension"`

	FixQuality       *int             `json:"fix_quality,omitempty"` // 0=invalid, 1=GPS, 2=DGPS
	SatellitesUsed   *int             `json:"sats_used,omitempty"`
	SatellitesInView *int             `json:"sats_in_view,omitempty"`
	Satellites       []nmea.Satellite `json:"satellites,omitempty"`

	HDOP *float64 `json:"hdop,omitempty"`
	VDOP *float64 `json:"vdop,omitempty"`
	PDOP *float64 `json:"pdop,omitempty"`

	SpeedKnots *float64 `json:"speed_knots,omitempty"` // speed over ground
	CourseDeg  *float64 `json:"course_deg,omitempty"`  // course over ground

	// Last distinct position, kept for change detection only.
	PrevLatitude  *float64 `json:"-"`
	PrevLongitude *float64 `json:"-"`

	// LastUpdate is when the most recent sentence was applied.
	LastUpdate time.Time `json:"last_update"`
}

// IsValid reports whether the fix can be trusted: the receiver says Active,
// both coordinates are present, and neither is exactly zero. The all-zero
// pair is the "no fix yet" sentinel many receivers emit while searching and
// must not pass even though it is structurally present.
func (f *Fix) IsValid() bool {
	return f.Status == nmea.StatusActive &&
		f.Latitude != nil && f.Longitude != nil &&
		*f.Latitude != 0 && *f.Longitude != 0
}

// Timestamp derives a UTC time.Time from the date and time fields. The
// second return is false until both have been received.
func (f *Fix) Timestamp() (time.Time, bool) {
	if f.UTCTime == nil || f.Date == nil {
		return time.Time{}, false
	}
	t := time.Date(f.Date.Year, time.Month(f.Date.Month), f.Date.Day,
		f.UTCTime.Hour, f.UTCTime.Minute, f.UTCTime.Second, 0, time.UTC)
	return t, true
}

// PositionString formats the position for console/OLED use,
// e.g. "48.117300°N, 11.516667°E".
func (f *Fix) PositionString() string {
	if f.Latitude == nil || f.Longitude == nil {
		return "No Position"
	}
	latDir, lonDir := "N", "E"
	lat, lon := *f.Latitude, *f.Longitude
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}
	return fmt.Sprintf("%.6f°%s, %.6f°%s", lat, latDir, lon, lonDir)
}

// StatusString formats the fix dimension and satellite count,
// e.g. "3D Fix (8 sats)".
func (f *Fix) StatusString() string {
	if f.Dimension == nmea.DimensionUnknown {
		return "No Fix"
	}
	used := 0
	if f.SatellitesUsed != nil {
		used = *f.SatellitesUsed
	}
	return fmt.Sprintf("%s Fix (%d sats)", f.Dimension, used)
}
