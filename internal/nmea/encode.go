package nmea

import (
	"fmt"
	"math"
)

// Encode frames a payload as a complete sentence with its checksum, e.g.
// Encode("GPGLL,...") → "$GPGLL,...*7B". Mostly used by the mock source and
// by tests; the checksum function being its own inverse means Decode(Encode(p))
// always passes verification.
func Encode(payload string) string {
	return fmt.Sprintf("$%s*%02X", payload, Checksum(payload))
}

// EncodeCoordinate renders signed decimal degrees as an NMEA coordinate
// field pair: DDMM.MMMM with N/S for latitude, DDDMM.MMMM with E/W for
// longitude.
func EncodeCoordinate(deg float64, isLatitude bool) (value, hemi string) {
	if isLatitude {
		hemi = "N"
		if deg < 0 {
			hemi = "S"
		}
	} else {
		hemi = "E"
		if deg < 0 {
			hemi = "W"
		}
	}

	abs := math.Abs(deg)
	whole := int(abs)
	minutes := (abs - float64(whole)) * 60

	if isLatitude {
		return fmt.Sprintf("%02d%07.4f", whole, minutes), hemi
	}
	return fmt.Sprintf("%03d%07.4f", whole, minutes), hemi
}
