// Package nmea decodes single NMEA 0183 sentences into typed values.
//
// The decoder is purely functional: one line in, one decoded sentence (or a
// reject reason) out. Cross-sentence reconciliation lives in internal/gps.
package nmea

import (
	"errors"
	"fmt"
)

// Reject reasons returned by Decode. Callers match with errors.Is; none of
// them is fatal — the usual reaction is to count the line and read the next.
var (
	ErrNotASentence      = errors.New("nmea: not a sentence")
	ErrChecksumMismatch  = errors.New("nmea: checksum mismatch")
	ErrTruncatedSentence = errors.New("nmea: truncated sentence")
	ErrUnsupportedType   = errors.New("nmea: unsupported sentence type")
)

// Sentence type codes handled by Decode (talker prefix already stripped).
const (
	TypeRMC = "RMC"
	TypeGGA = "GGA"
	TypeGSA = "GSA"
	TypeGSV = "GSV"
	TypeGLL = "GLL"
)

// Status is the receiver's own validity flag carried by RMC and GLL.
type Status int

const (
	// StatusNoFix means the sentence carried no status field.
	StatusNoFix Status = iota
	StatusActive
	StatusVoid
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusVoid:
		return "Void"
	default:
		return "NoFix"
	}
}

// FixDimension is the GSA fix type.
type FixDimension int

const (
	// DimensionUnknown covers GSA mode codes outside 1..3. Some receivers
	// emit these, so it is a decoded value, not a reject condition.
	DimensionUnknown FixDimension = iota
	DimensionNoFix
	DimensionTwoD
	DimensionThreeD
)

func (d FixDimension) String() string {
	switch d {
	case DimensionNoFix:
		return "No Fix"
	case DimensionTwoD:
		return "2D"
	case DimensionThreeD:
		return "3D"
	default:
		return "Unknown"
	}
}

// ClockTime is a UTC wall-clock triplet from the HHMMSS prefix of a time
// field. Fractional seconds are ignored.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Date is a calendar date from a DDMMYY field. Year is already expanded to
// 2000+YY.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Satellite is one satellite entry from a GSV message.
type Satellite struct {
	PRN       int  `json:"prn"`
	Elevation *int `json:"elevation,omitempty"` // degrees, 0..90
	Azimuth   *int `json:"azimuth,omitempty"`   // degrees true, 0..359
	SNR       *int `json:"snr,omitempty"`       // dB; absent when not tracking
}

// Sentence is one decoded NMEA sentence. Optional fields are pointers so
// that an empty or malformed field stays absent instead of turning into 0.
type Sentence interface {
	// Type returns the 3-letter sentence type code, e.g. "RMC".
	Type() string
}

// RMC — recommended minimum navigation data. The canonical source for time,
// date, motion and position.
type RMC struct {
	Time       *ClockTime
	Status     Status
	Latitude   *float64 // decimal degrees, south negative
	Longitude  *float64 // decimal degrees, west negative
	SpeedKnots *float64
	CourseDeg  *float64
	Date       *Date
}

func (RMC) Type() string { return TypeRMC }

// GGA — fix data: position, quality, satellites used, HDOP, altitude.
type GGA struct {
	Time           *ClockTime
	Latitude       *float64
	Longitude      *float64
	FixQuality     *int // 0=invalid, 1=GPS, 2=DGPS
	SatellitesUsed *int
	HDOP           *float64
	AltitudeM      *float64 // meters above mean sea level
}

func (GGA) Type() string { return TypeGGA }

// GSA — fix dimension and dilution of precision. Dimension is nil when the
// mode field was empty, DimensionUnknown when it held an unrecognized code.
type GSA struct {
	Dimension *FixDimension
	PDOP      *float64
	HDOP      *float64
	VDOP      *float64
}

func (GSA) Type() string { return TypeGSA }

// GSV — one part of a satellites-in-view group. A group spans TotalMessages
// sentences of up to 4 satellites each; reassembly is the aggregator's job.
type GSV struct {
	TotalMessages    int
	MessageNumber    int // 1-based part index
	SatellitesInView *int
	Satellites       []Satellite
}

func (GSV) Type() string { return TypeGSV }

// GLL — geographic position. A last-resort source, only consulted when the
// primary sentences left gaps.
type GLL struct {
	Latitude  *float64
	Longitude *float64
	Time      *ClockTime
	Status    Status
}

func (GLL) Type() string { return TypeGLL }
