package surveydb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speleo-data/cavetopo/internal/topo"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.MigrateUp())
	return db
}

func testDocument() *topo.Document {
	from := topo.MajorMinorStation(1, 0)
	to := topo.MajorMinorStation(1, 1)
	return &topo.Document{
		Trips: []topo.Trip{
			{
				Time:        time.Date(2022, 10, 22, 0, 0, 0, 0, time.UTC),
				Comment:     "main passage",
				Declination: 628,
			},
		},
		Shots: []topo.Shot{
			{
				From: &from, To: &to,
				Distance: 123450, Azimuth: 1820, Inclination: 5461,
				Flags: topo.ShotHasComment, TripIndex: 0,
				Comment: "wet crawl",
			},
			{From: &to, Distance: 2000, TripIndex: -1},
		},
		References: []topo.Reference{
			{Station: &from, East: 24000, North: 42000, Altitude: 50000, Comment: "entrance"},
		},
	}
}

func TestImportAndGet(t *testing.T) {
	db := testDB(t)
	raw := []byte("Top\x03 not a real file, just stored bytes")

	id, err := db.ImportDocument("riesending", raw, testDocument())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	survey, err := db.GetSurvey(id)
	require.NoError(t, err)
	assert.Equal(t, "riesending", survey.Name)
	assert.Equal(t, 1, survey.TripCount)
	assert.Equal(t, 2, survey.ShotCount)
	assert.Equal(t, 1, survey.ReferenceCount)
	assert.Equal(t, int64(125450), survey.TotalLengthMM)

	stored, err := db.SurveyRaw(id)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)
}

func TestListSurveys(t *testing.T) {
	db := testDB(t)

	surveys, err := db.ListSurveys()
	require.NoError(t, err)
	assert.Empty(t, surveys)

	_, err = db.ImportDocument("a", []byte{1}, testDocument())
	require.NoError(t, err)
	_, err = db.ImportDocument("b", []byte{2}, testDocument())
	require.NoError(t, err)

	surveys, err = db.ListSurveys()
	require.NoError(t, err)
	assert.Len(t, surveys, 2)
}

func TestSurveyShots(t *testing.T) {
	db := testDB(t)

	id, err := db.ImportDocument("cave", []byte{1}, testDocument())
	require.NoError(t, err)

	shots, err := db.SurveyShots(id)
	require.NoError(t, err)
	require.Len(t, shots, 2)

	first := shots[0]
	require.NotNil(t, first.FromStation)
	assert.Equal(t, "1.0", *first.FromStation)
	require.NotNil(t, first.ToStation)
	assert.Equal(t, "1.1", *first.ToStation)
	assert.Equal(t, int64(123450), first.DistanceMM)
	assert.Equal(t, int16(1820), first.Azimuth)
	require.NotNil(t, first.Comment)
	assert.Equal(t, "wet crawl", *first.Comment)

	second := shots[1]
	assert.Nil(t, second.ToStation, "splay must keep a NULL far station")
	assert.Nil(t, second.Comment, "comment flag clear must store NULL")
	assert.Equal(t, int16(-1), second.TripIndex)
}

func TestSurveyTrips(t *testing.T) {
	db := testDB(t)

	id, err := db.ImportDocument("cave", []byte{1}, testDocument())
	require.NoError(t, err)

	trips, err := db.SurveyTrips(id)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "main passage", trips[0].Comment)
	assert.Equal(t, int16(628), trips[0].Declination)
	assert.True(t, trips[0].Time.Equal(time.Date(2022, 10, 22, 0, 0, 0, 0, time.UTC)))
}

func TestGetSurveyNotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetSurvey("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.SurveyShots("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSurvey(t *testing.T) {
	db := testDB(t)

	id, err := db.ImportDocument("cave", []byte{1}, testDocument())
	require.NoError(t, err)

	require.NoError(t, db.DeleteSurvey(id))

	_, err = db.GetSurvey(id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Cascade removed the child rows as well.
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM shots`).Scan(&count))
	assert.Zero(t, count)

	assert.ErrorIs(t, db.DeleteSurvey(id), ErrNotFound)
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, db.MigrateUp())
}
