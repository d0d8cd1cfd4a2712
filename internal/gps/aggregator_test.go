package gps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/vertiport_gps/internal/nmea"
)

func apply(t *testing.T, agg *Aggregator, payload string) {
	t.Helper()
	s, err := nmea.Decode(nmea.Encode(payload))
	require.NoError(t, err, "payload %q", payload)
	agg.Apply(s, time.Now())
}

func TestAggregator_RMCIsCanonical(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")

	snap := agg.Snapshot()
	assert.Equal(t, nmea.StatusActive, snap.Status)
	require.NotNil(t, snap.Latitude)
	assert.InDelta(t, 48.1173, *snap.Latitude, 1e-4)
	require.NotNil(t, snap.SpeedKnots)
	assert.InDelta(t, 22.4, *snap.SpeedKnots, 1e-9)
	require.NotNil(t, snap.UTCTime)
	require.NotNil(t, snap.Date)
	assert.True(t, snap.IsValid())

	ts, ok := snap.Timestamp()
	require.True(t, ok)
	assert.Equal(t, time.Date(2094, 3, 23, 12, 35, 19, 0, time.UTC), ts)
}

func TestAggregator_RMCOverwritesEvenWhenVoid(t *testing.T) {
	// RMC position is trusted outright; a Void RMC carrying coordinates
	// still overwrites, and the status demotion sticks.
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")
	apply(t, agg, "GPRMC,123520,V,4807.500,N,01131.500,E,,,230394,,")

	snap := agg.Snapshot()
	assert.Equal(t, nmea.StatusVoid, snap.Status)
	require.NotNil(t, snap.Latitude)
	assert.InDelta(t, 48.125, *snap.Latitude, 1e-4)
	assert.False(t, snap.IsValid())
}

func TestAggregator_RMCAbsentFieldsSkipped(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")
	apply(t, agg, "GPRMC,123520,A,,,,,,,,,")

	// Empty position/motion fields leave the previous values untouched.
	snap := agg.Snapshot()
	require.NotNil(t, snap.Latitude)
	assert.InDelta(t, 48.1173, *snap.Latitude, 1e-4)
	require.NotNil(t, snap.SpeedKnots)
	require.NotNil(t, snap.Date)
}

func TestAggregator_GGAFillsQualityAndAltitude(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")

	snap := agg.Snapshot()
	require.NotNil(t, snap.Latitude)
	require.NotNil(t, snap.AltitudeM)
	assert.InDelta(t, 545.4, *snap.AltitudeM, 1e-9)
	require.NotNil(t, snap.FixQuality)
	assert.Equal(t, 1, *snap.FixQuality)
	require.NotNil(t, snap.SatellitesUsed)
	assert.Equal(t, 8, *snap.SatellitesUsed)

	// GGA carries no status flag and must not invent one.
	assert.Equal(t, nmea.StatusNoFix, snap.Status)
	assert.False(t, snap.IsValid())
}

func TestAggregator_GSADOPsWinOverGGA(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
	apply(t, agg, "GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1")

	snap := agg.Snapshot()
	assert.Equal(t, nmea.DimensionThreeD, snap.Dimension)
	require.NotNil(t, snap.HDOP)
	assert.InDelta(t, 1.3, *snap.HDOP, 1e-9)
	require.NotNil(t, snap.PDOP)
	require.NotNil(t, snap.VDOP)

	// GSA never touches coordinates or status.
	require.NotNil(t, snap.Latitude)
	assert.InDelta(t, 48.1173, *snap.Latitude, 1e-4)
	assert.Equal(t, nmea.StatusNoFix, snap.Status)
}

func TestAggregator_GSVGroupReassembly(t *testing.T) {
	// 4+4+3 satellites over a three-part group, in arrival order.
	agg := NewAggregator()
	apply(t, agg, "GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00")
	apply(t, agg, "GPGSV,3,2,11,14,25,170,00,16,57,208,39,18,67,296,40,19,40,246,00")
	apply(t, agg, "GPGSV,3,3,11,22,42,067,42,24,14,311,43,27,05,244,00")

	snap := agg.Snapshot()
	require.NotNil(t, snap.SatellitesInView)
	assert.Equal(t, 11, *snap.SatellitesInView)
	require.Len(t, snap.Satellites, 11)
	assert.Equal(t, 3, snap.Satellites[0].PRN)
	assert.Equal(t, 14, snap.Satellites[4].PRN)
	assert.Equal(t, 27, snap.Satellites[10].PRN)
}

func TestAggregator_GSVPartOneRestartsGroup(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00")
	apply(t, agg, "GPGSV,3,2,11,14,25,170,00,16,57,208,39,18,67,296,40,19,40,246,00")
	// The receiver starts a new cycle before finishing the old one; the
	// partial group is simply replaced.
	apply(t, agg, "GPGSV,2,1,08,03,04,112,01,04,16,271,01,06,02,011,01,13,07,293,01")

	snap := agg.Snapshot()
	require.NotNil(t, snap.SatellitesInView)
	assert.Equal(t, 8, *snap.SatellitesInView)
	require.Len(t, snap.Satellites, 4)
	require.NotNil(t, snap.Satellites[0].Elevation)
	assert.Equal(t, 4, *snap.Satellites[0].Elevation)
}

func TestAggregator_GLLFillsGapAfterVoidRMC(t *testing.T) {
	// Void RMC with empty position, then an Active GLL with a position:
	// GLL fills both the coordinates and the status.
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,V,,,,,,,230394,,")
	apply(t, agg, "GPGLL,4916.45,N,12311.12,W,225444,A")

	snap := agg.Snapshot()
	require.NotNil(t, snap.Latitude)
	require.NotNil(t, snap.Longitude)
	assert.InDelta(t, 49.2742, *snap.Latitude, 1e-4)
	assert.Equal(t, nmea.StatusActive, snap.Status)
	assert.True(t, snap.IsValid())
}

func TestAggregator_GLLAloneProducesValidFix(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPGLL,4916.45,N,12311.12,W,225444,A")

	snap := agg.Snapshot()
	assert.Equal(t, nmea.StatusActive, snap.Status)
	require.NotNil(t, snap.UTCTime)
	assert.True(t, snap.IsValid())
}

func TestAggregator_GLLNeverOverwritesExistingPosition(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")
	apply(t, agg, "GPGLL,4916.45,N,12311.12,W,225444,A")

	snap := agg.Snapshot()
	require.NotNil(t, snap.Latitude)
	assert.InDelta(t, 48.1173, *snap.Latitude, 1e-4)
	assert.InDelta(t, 11.5167, *snap.Longitude, 1e-4)
}

func TestAggregator_GLLNeverDemotesActive(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")
	apply(t, agg, "GPGLL,4807.038,N,01131.000,E,225444,V")

	snap := agg.Snapshot()
	assert.Equal(t, nmea.StatusActive, snap.Status)
	assert.True(t, snap.IsValid())
}

func TestAggregator_GLLKeepsStalePositionFromVoidRMC(t *testing.T) {
	// Precedence is keyed on coordinate presence, not on status: stale
	// coordinates carried by a Void RMC still block GLL.
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,V,4807.038,N,01131.000,E,,,230394,,")
	apply(t, agg, "GPGLL,4916.45,N,12311.12,W,225444,A")

	snap := agg.Snapshot()
	require.NotNil(t, snap.Latitude)
	assert.InDelta(t, 48.1173, *snap.Latitude, 1e-4)
}

func TestFix_ZeroCoordinateSentinelIsInvalid(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPRMC,123519,A,0000.000,N,00000.000,E,,,230394,,")

	snap := agg.Snapshot()
	assert.Equal(t, nmea.StatusActive, snap.Status)
	require.NotNil(t, snap.Latitude)
	assert.False(t, snap.IsValid())
}

func TestAggregator_HasChangedPosition(t *testing.T) {
	agg := NewAggregator()
	assert.False(t, agg.HasChangedPosition(0.00001), "no position yet")

	apply(t, agg, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")
	assert.True(t, agg.HasChangedPosition(0.00001), "first fix counts as changed")

	// Same position again: no shift into the previous slot.
	apply(t, agg, "GPRMC,123520,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")
	assert.True(t, agg.HasChangedPosition(0.00001))

	// Move.
	apply(t, agg, "GPRMC,123521,A,4807.138,N,01131.000,E,022.4,084.4,230394,,")
	assert.True(t, agg.HasChangedPosition(0.00001))
	assert.False(t, agg.HasChangedPosition(1.0), "threshold larger than the move")

	snap := agg.Snapshot()
	require.NotNil(t, snap.PrevLatitude)
	assert.InDelta(t, 48.1173, *snap.PrevLatitude, 1e-4)
}

func TestAggregator_LastUpdateStamped(t *testing.T) {
	agg := NewAggregator()
	now := time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC)

	s, err := nmea.Decode(nmea.Encode("GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1"))
	require.NoError(t, err)
	agg.Apply(s, now)

	assert.Equal(t, now, agg.Snapshot().LastUpdate)
}

func TestAggregator_SnapshotIsDetached(t *testing.T) {
	agg := NewAggregator()
	apply(t, agg, "GPGSV,2,1,08,03,04,112,01,04,16,271,01,06,02,011,01,13,07,293,01")
	snap := agg.Snapshot()

	apply(t, agg, "GPGSV,2,2,08,14,25,170,00,16,57,208,39,18,67,296,40,19,40,246,00")
	assert.Len(t, snap.Satellites, 4, "earlier snapshot must not grow")
	assert.Len(t, agg.Snapshot().Satellites, 8)
}

func TestMockSource_ProducesDecodableSentences(t *testing.T) {
	src := NewMockSource()
	agg := NewAggregator()

	for i := 0; i < 8; i++ {
		line, err := src.Next()
		require.NoError(t, err)
		s, err := nmea.Decode(line)
		require.NoError(t, err, "line %q", line)
		agg.Apply(s, time.Now())
	}

	snap := agg.Snapshot()
	assert.True(t, snap.IsValid())
	require.NotNil(t, snap.AltitudeM)
	assert.Equal(t, nmea.DimensionThreeD, snap.Dimension)
	require.Len(t, snap.Satellites, 4)
}
