package gps

import (
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/vertiport_gps/internal/nmea"
)

// DefaultChangeThreshold is the position-change threshold in degrees used by
// the publisher when the config does not override it (~1 m at the equator).
const DefaultChangeThreshold = 0.00001

// Aggregator owns the one Fix for a receiver session and merges decoded
// sentences into it. RMC is canonical, GGA fills in quality and altitude,
// GSA fills dimension and DOPs, GSV rebuilds the satellite list, and GLL is
// only consulted for gaps the others left.
//
// Apply never fails: a sentence that reached the aggregator already passed
// Decode, and absent fields are skipped, not zeroed. The aggregator itself
// does no I/O and never blocks; a mutex makes it safe to share between one
// reader loop and any number of snapshot consumers.
type Aggregator struct {
	mu  sync.RWMutex
	fix Fix
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Apply merges one decoded sentence into the fix. now is stamped as the
// fix's last update time.
func (a *Aggregator) Apply(s nmea.Sentence, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch m := s.(type) {
	case nmea.RMC:
		a.applyRMC(m)
	case nmea.GGA:
		a.applyGGA(m)
	case nmea.GSA:
		a.applyGSA(m)
	case nmea.GSV:
		a.applyGSV(m)
	case nmea.GLL:
		a.applyGLL(m)
	}
	a.fix.LastUpdate = now
}

// Snapshot returns a consistent copy of the current fix. The copy shares no
// mutable state with the aggregator.
func (a *Aggregator) Snapshot() Fix {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := a.fix
	if len(a.fix.Satellites) > 0 {
		out.Satellites = make([]nmea.Satellite, len(a.fix.Satellites))
		copy(out.Satellites, a.fix.Satellites)
	}
	return out
}

// HasChangedPosition reports whether the position moved more than threshold
// degrees on either axis since the last distinct position. The first-ever
// position counts as changed.
func (a *Aggregator) HasChangedPosition(threshold float64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	f := &a.fix
	if f.Latitude == nil || f.Longitude == nil {
		return false
	}
	if f.PrevLatitude == nil || f.PrevLongitude == nil {
		return true
	}
	return math.Abs(*f.Latitude-*f.PrevLatitude) > threshold ||
		math.Abs(*f.Longitude-*f.PrevLongitude) > threshold
}

// RMC is the primary source: time, date and motion are overwritten whenever
// present, the status flag is taken verbatim, and the position is trusted
// outright when both coordinates decoded — even when that demotes a
// previously valid position.
func (a *Aggregator) applyRMC(m nmea.RMC) {
	f := &a.fix
	if m.Time != nil {
		f.UTCTime = m.Time
	}
	if m.Date != nil {
		f.Date = m.Date
	}
	if m.SpeedKnots != nil {
		f.SpeedKnots = m.SpeedKnots
	}
	if m.CourseDeg != nil {
		f.CourseDeg = m.CourseDeg
	}
	f.Status = m.Status
	if m.Latitude != nil && m.Longitude != nil {
		a.setPosition(*m.Latitude, *m.Longitude)
	}
}

// GGA overwrites position like RMC does, plus fix quality, satellites used,
// HDOP and altitude. It carries no status flag and never touches one.
func (a *Aggregator) applyGGA(m nmea.GGA) {
	f := &a.fix
	if m.Latitude != nil && m.Longitude != nil {
		a.setPosition(*m.Latitude, *m.Longitude)
	}
	if m.FixQuality != nil {
		f.FixQuality = m.FixQuality
	}
	if m.SatellitesUsed != nil {
		f.SatellitesUsed = m.SatellitesUsed
	}
	if m.HDOP != nil {
		f.HDOP = m.HDOP
	}
	if m.AltitudeM != nil {
		f.AltitudeM = m.AltitudeM
	}
}

// GSA carries the fix dimension and all three DOPs. GSA DOP values win over
// GGA's lone HDOP simply by arriving later in the receiver's cycle.
func (a *Aggregator) applyGSA(m nmea.GSA) {
	f := &a.fix
	if m.Dimension != nil {
		f.Dimension = *m.Dimension
	}
	if m.PDOP != nil {
		f.PDOP = m.PDOP
	}
	if m.HDOP != nil {
		f.HDOP = m.HDOP
	}
	if m.VDOP != nil {
		f.VDOP = m.VDOP
	}
}

// GSV part 1 starts a fresh satellite list; later parts append in arrival
// order. A group that never completes just leaves the records that did
// arrive — that is accepted, not an error.
func (a *Aggregator) applyGSV(m nmea.GSV) {
	f := &a.fix
	if m.MessageNumber == 1 {
		f.Satellites = nil
	}
	f.Satellites = append(f.Satellites, m.Satellites...)
	if m.SatellitesInView != nil {
		f.SatellitesInView = m.SatellitesInView
	}
}

// GLL is the fallback source. It may fill a position only while the fix has
// none (keyed on coordinate presence, not on status — stale coordinates from
// a Void RMC still block it), may set the time only while none is known, and
// its status never demotes an established Active.
func (a *Aggregator) applyGLL(m nmea.GLL) {
	f := &a.fix
	if m.Latitude != nil && m.Longitude != nil &&
		(f.Latitude == nil || f.Longitude == nil) {
		a.setPosition(*m.Latitude, *m.Longitude)
	}
	if m.Status != nmea.StatusNoFix && f.Status != nmea.StatusActive {
		f.Status = m.Status
	}
	if f.UTCTime == nil && m.Time != nil {
		f.UTCTime = m.Time
	}
}

// setPosition overwrites both coordinates together, shifting the old
// position into the previous-position slot when it differs. Coordinates are
// never written singly; both-present or both-absent is an invariant of Fix.
func (a *Aggregator) setPosition(lat, lon float64) {
	f := &a.fix
	if f.Latitude != nil && f.Longitude != nil &&
		(*f.Latitude != lat || *f.Longitude != lon) {
		f.PrevLatitude, f.PrevLongitude = f.Latitude, f.Longitude
	}
	f.Latitude, f.Longitude = &lat, &lon
}
