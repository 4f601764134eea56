package parse

import (
	"time"

	"github.com/speleo-data/cavetopo/internal/topo"
)

// Trip timestamps are .NET ticks: 100 ns units counted from 0001-01-01
// (proleptic Gregorian).
const (
	ticksPerSecond = 10_000_000

	// Seconds between 0001-01-01T00:00:00 and the Unix epoch.
	dotNetEpochOffsetSeconds = 62_135_596_800
)

// datetime converts a tick count into a UTC time.Time. Dividing before
// subtracting the epoch offset keeps the intermediate seconds value inside
// int64 for the whole tick domain; the tick remainder scales to whole
// nanoseconds without losing sub-second precision.
func (r *reader) datetime(what string) (time.Time, error) {
	ticks, err := r.i64(what)
	if err != nil {
		return time.Time{}, err
	}
	seconds := ticks/ticksPerSecond - dotNetEpochOffsetSeconds
	nanos := (ticks % ticksPerSecond) * 100
	return time.Unix(seconds, nanos).UTC(), nil
}

// Trip = { Int64 time, String comment, Int16 declination }
func (r *reader) trip() (topo.Trip, error) {
	var t topo.Trip
	var err error

	if t.Time, err = r.datetime("trip time"); err != nil {
		return t, err
	}
	if t.Comment, err = r.string("trip comment"); err != nil {
		return t, err
	}
	if t.Declination, err = r.i16("trip declination"); err != nil {
		return t, err
	}
	return t, nil
}

// Shot = { Id from, Id to, Int32 dist, Int16 azimuth, Int16 inclination,
// Byte flags, Byte roll, Int16 tripIndex, String comment if flags bit 1 }
//
// The trailing comment is the only place the grammar branches on already
// decoded data: reading it when the flag is clear (or skipping it when set)
// silently misaligns every byte that follows.
func (r *reader) shot() (topo.Shot, error) {
	var s topo.Shot
	var err error

	if s.From, err = r.stationID("shot from station"); err != nil {
		return s, err
	}
	if s.To, err = r.stationID("shot to station"); err != nil {
		return s, err
	}
	if s.Distance, err = r.i32("shot distance"); err != nil {
		return s, err
	}
	if s.Azimuth, err = r.i16("shot azimuth"); err != nil {
		return s, err
	}
	if s.Inclination, err = r.i16("shot inclination"); err != nil {
		return s, err
	}
	flags, err := r.u8("shot flags")
	if err != nil {
		return s, err
	}
	s.Flags = topo.ShotFlags(flags)
	if s.Roll, err = r.u8("shot roll"); err != nil {
		return s, err
	}
	if s.TripIndex, err = r.i16("shot trip index"); err != nil {
		return s, err
	}

	if s.Flags.HasComment() {
		if s.Comment, err = r.string("shot comment"); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Reference = { Id station, Int64 east, Int64 north, Int32 altitude,
// String comment }
func (r *reader) reference() (topo.Reference, error) {
	var ref topo.Reference
	var err error

	if ref.Station, err = r.stationID("reference station"); err != nil {
		return ref, err
	}
	if ref.East, err = r.i64("reference east"); err != nil {
		return ref, err
	}
	if ref.North, err = r.i64("reference north"); err != nil {
		return ref, err
	}
	if ref.Altitude, err = r.i32("reference altitude"); err != nil {
		return ref, err
	}
	if ref.Comment, err = r.string("reference comment"); err != nil {
		return ref, err
	}
	return ref, nil
}

// seqCap bounds the pre-allocated capacity for a count-prefixed sequence.
// Every record is at least one byte, so a count beyond the remaining input
// can never be satisfied; clamping keeps a corrupt count from allocating
// the full 32-bit range before the truncation error surfaces.
func (r *reader) seqCap(count uint32) int {
	if int64(count) > int64(r.remaining()) {
		return r.remaining()
	}
	return int(count)
}

func (r *reader) trips() ([]topo.Trip, error) {
	count, err := r.u32("trip count")
	if err != nil {
		return nil, err
	}
	trips := make([]topo.Trip, 0, r.seqCap(count))
	for i := uint32(0); i < count; i++ {
		t, err := r.trip()
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (r *reader) shots() ([]topo.Shot, error) {
	count, err := r.u32("shot count")
	if err != nil {
		return nil, err
	}
	shots := make([]topo.Shot, 0, r.seqCap(count))
	for i := uint32(0); i < count; i++ {
		s, err := r.shot()
		if err != nil {
			return nil, err
		}
		shots = append(shots, s)
	}
	return shots, nil
}

func (r *reader) references() ([]topo.Reference, error) {
	count, err := r.u32("reference count")
	if err != nil {
		return nil, err
	}
	refs := make([]topo.Reference, 0, r.seqCap(count))
	for i := uint32(0); i < count; i++ {
		ref, err := r.reference()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
