// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package gps

import (
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/vertiport_gps/internal/nmea"
)

// Source is anything that can provide raw NMEA lines over time.
// The real one is the serial port; the mock below simulates a receiver so
// every consumer can run without hardware on the bench.
type Source interface {
	Next() (string, error)
}

type mockSource struct {
	start time.Time
	seq   int
}

// NewMockSource creates a mock NMEA source that drifts slowly around a
// fixed point, cycling through the sentence types a real receiver emits.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (string, error) {
	elapsed := time.Since(m.start).Seconds()
	lat := 48.117300 + 0.0005*math.Sin(elapsed/10)
	lon := 11.516667 + 0.0005*math.Cos(elapsed/10)

	latV, latH := nmea.EncodeCoordinate(lat, true)
	lonV, lonH := nmea.EncodeCoordinate(lon, false)

	now := time.Now().UTC()
	hhmmss := now.Format("150405")
	ddmmyy := now.Format("020106")

	var payload string
	switch m.seq % 4 {
	case 0:
		payload = fmt.Sprintf("GPRMC,%s,A,%s,%s,%s,%s,%.1f,%.1f,%s,,",
			hhmmss, latV, latH, lonV, lonH, 2.5, math.Mod(elapsed*6, 360), ddmmyy)
	case 1:
		payload = fmt.Sprintf("GPGGA,%s,%s,%s,%s,%s,1,08,0.9,545.4,M,46.9,M,,",
			hhmmss, latV, latH, lonV, lonH)
	case 2:
		payload = "GPGSA,A,3,04,05,09,12,,,,,,,,,1.8,0.9,1.5"
	case 3:
		payload = "GPGSV,1,1,04,04,77,023,44,05,51,209,41,09,23,065,38,12,12,134,33"
	}
	m.seq++

	return nmea.Encode(payload), nil
}
