package nmea

import (
	"fmt"
	"strconv"
	"strings"
)

// Checksum is the running XOR of every payload byte, i.e. everything
// between '$' and '*'. XOR is its own inverse, so the same function both
// produces and verifies a checksum.
func Checksum(payload string) byte {
	var ck byte
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return ck
}

// Decode verifies and decodes one NMEA sentence. The line must already be
// stripped of leading/trailing whitespace and line terminators.
//
// The checksum is verified before any field is interpreted; a failing line
// produces no partial state. Any 2-letter talker is accepted — dispatch is
// purely on the trailing 3-letter type code.
func Decode(line string) (Sentence, error) {
	if !strings.HasPrefix(line, "$") {
		return nil, ErrNotASentence
	}

	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return nil, fmt.Errorf("%w: no '*' delimiter", ErrChecksumMismatch)
	}
	payload := line[1:star]
	ckText := line[star+1:]
	if len(ckText) < 2 {
		return nil, fmt.Errorf("%w: short checksum field", ErrChecksumMismatch)
	}
	want, err := strconv.ParseUint(ckText[:2], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex %q", ErrChecksumMismatch, ckText[:2])
	}
	if got := Checksum(payload); got != byte(want) {
		return nil, fmt.Errorf("%w: computed %02X, sentence says %02X", ErrChecksumMismatch, got, want)
	}

	fields := strings.Split(payload, ",")
	typeField := fields[0]
	if len(typeField) < 3 {
		return nil, ErrNotASentence
	}

	switch strings.ToUpper(typeField[len(typeField)-3:]) {
	case TypeRMC:
		return decodeRMC(fields)
	case TypeGGA:
		return decodeGGA(fields)
	case TypeGSA:
		return decodeGSA(fields)
	case TypeGSV:
		return decodeGSV(fields)
	case TypeGLL:
		return decodeGLL(fields)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typeField)
	}
}

// RMC field layout:
//
//	0: talker+type
//	1: time (hhmmss.sss)
//	2: status (A=active, V=void)
//	3: latitude (ddmm.mmmm)
//	4: N/S
//	5: longitude (dddmm.mmmm)
//	6: E/W
//	7: speed over ground (knots)
//	8: course over ground (deg true)
//	9: date (ddmmyy)
func decodeRMC(f []string) (Sentence, error) {
	if len(f) < 12 {
		return nil, fmt.Errorf("%w: RMC has %d fields", ErrTruncatedSentence, len(f))
	}
	return RMC{
		Time:       parseClock(f[1]),
		Status:     parseStatus(f[2]),
		Latitude:   parseCoordinate(f[3], f[4]),
		Longitude:  parseCoordinate(f[5], f[6]),
		SpeedKnots: parseFloat(f[7]),
		CourseDeg:  parseFloat(f[8]),
		Date:       parseDate(f[9]),
	}, nil
}

// GGA field layout:
//
//	0: talker+type
//	1: time
//	2: latitude
//	3: N/S
//	4: longitude
//	5: E/W
//	6: fix quality (0=invalid)
//	7: satellites used
//	8: HDOP
//	9: altitude (meters MSL)
func decodeGGA(f []string) (Sentence, error) {
	if len(f) < 14 {
		return nil, fmt.Errorf("%w: GGA has %d fields", ErrTruncatedSentence, len(f))
	}
	return GGA{
		Time:           parseClock(f[1]),
		Latitude:       parseCoordinate(f[2], f[3]),
		Longitude:      parseCoordinate(f[4], f[5]),
		FixQuality:     parseInt(f[6]),
		SatellitesUsed: parseInt(f[7]),
		HDOP:           parseFloat(f[8]),
		AltitudeM:      parseFloat(f[9]),
	}, nil
}

// GSA field layout:
//
//	0: talker+type
//	1: selection mode (M/A)
//	2: fix dimension (1=no fix, 2=2D, 3=3D)
//	3..14: PRNs of satellites used
//	15: PDOP
//	16: HDOP
//	17: VDOP
func decodeGSA(f []string) (Sentence, error) {
	if len(f) < 18 {
		return nil, fmt.Errorf("%w: GSA has %d fields", ErrTruncatedSentence, len(f))
	}
	return GSA{
		Dimension: parseDimension(f[2]),
		PDOP:      parseFloat(f[15]),
		HDOP:      parseFloat(f[16]),
		VDOP:      parseFloat(f[17]),
	}, nil
}

// GSV field layout:
//
//	0: talker+type
//	1: total messages in group
//	2: message number (1-based)
//	3: satellites in view
//	4..: up to 4 blocks of (PRN, elevation, azimuth, SNR)
func decodeGSV(f []string) (Sentence, error) {
	if len(f) < 4 {
		return nil, fmt.Errorf("%w: GSV has %d fields", ErrTruncatedSentence, len(f))
	}
	g := GSV{SatellitesInView: parseInt(f[3])}
	if n := parseInt(f[1]); n != nil {
		g.TotalMessages = *n
	}
	if n := parseInt(f[2]); n != nil {
		g.MessageNumber = *n
	}
	for i := 4; i+3 < len(f) && len(g.Satellites) < 4; i += 4 {
		prn := parseInt(f[i])
		if prn == nil {
			continue
		}
		g.Satellites = append(g.Satellites, Satellite{
			PRN:       *prn,
			Elevation: parseInt(f[i+1]),
			Azimuth:   parseInt(f[i+2]),
			SNR:       parseInt(f[i+3]),
		})
	}
	return g, nil
}

// GLL field layout:
//
//	0: talker+type
//	1: latitude
//	2: N/S
//	3: longitude
//	4: E/W
//	5: time
//	6: status (A/V)
func decodeGLL(f []string) (Sentence, error) {
	if len(f) < 7 {
		return nil, fmt.Errorf("%w: GLL has %d fields", ErrTruncatedSentence, len(f))
	}
	return GLL{
		Latitude:  parseCoordinate(f[1], f[2]),
		Longitude: parseCoordinate(f[3], f[4]),
		Time:      parseClock(f[5]),
		Status:    parseStatus(f[6]),
	}, nil
}
