package nmea

import (
	"strconv"
	"strings"
)

// Field helpers. All of them map empty or malformed text to nil so a bad
// field never aborts the rest of the sentence.

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// parseCoordinate converts an NMEA coordinate field plus its hemisphere
// field to signed decimal degrees.
//
// Latitude is DDMM.MMMM (4 integer digits), longitude DDDMM.MMMM; the two
// forms are told apart by the digit count before the decimal point. South
// and west negate.
func parseCoordinate(value, hemi string) *float64 {
	value = strings.TrimSpace(value)
	hemi = strings.TrimSpace(strings.ToUpper(hemi))
	if value == "" || hemi == "" {
		return nil
	}
	if hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W" {
		return nil
	}

	intPart := value
	if dot := strings.IndexByte(value, '.'); dot != -1 {
		intPart = value[:dot]
	}

	degDigits := 3
	if len(intPart) == 4 {
		degDigits = 2 // latitude form
	}
	if len(intPart) < degDigits+1 {
		return nil
	}

	deg, err := strconv.Atoi(value[:degDigits])
	if err != nil {
		return nil
	}
	min, err := strconv.ParseFloat(value[degDigits:], 64)
	if err != nil {
		return nil
	}

	dec := float64(deg) + min/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return &dec
}

// parseClock reads the HHMMSS prefix of a time field, ignoring any
// fractional-seconds suffix. Shorter strings are absent.
func parseClock(s string) *ClockTime {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return nil
	}
	h, err := strconv.Atoi(s[0:2])
	if err != nil {
		return nil
	}
	m, err := strconv.Atoi(s[2:4])
	if err != nil {
		return nil
	}
	sec, err := strconv.Atoi(s[4:6])
	if err != nil {
		return nil
	}
	return &ClockTime{Hour: h, Minute: m, Second: sec}
}

// parseDate reads a DDMMYY date field. Anything but exactly 6 digits is
// absent. Years map to 2000+YY; rollover past 2099 is somebody else's
// problem.
func parseDate(s string) *Date {
	s = strings.TrimSpace(s)
	if len(s) != 6 {
		return nil
	}
	d, err := strconv.Atoi(s[0:2])
	if err != nil {
		return nil
	}
	m, err := strconv.Atoi(s[2:4])
	if err != nil {
		return nil
	}
	y, err := strconv.Atoi(s[4:6])
	if err != nil {
		return nil
	}
	return &Date{Day: d, Month: m, Year: 2000 + y}
}

func parseStatus(s string) Status {
	switch strings.TrimSpace(s) {
	case "A":
		return StatusActive
	case "V":
		return StatusVoid
	default:
		return StatusNoFix
	}
}

func parseDimension(s string) *FixDimension {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var d FixDimension
	switch s {
	case "1":
		d = DimensionNoFix
	case "2":
		d = DimensionTwoD
	case "3":
		d = DimensionThreeD
	default:
		d = DimensionUnknown
	}
	return &d
}
