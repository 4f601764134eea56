package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/speleo-data/cavetopo/internal/surveydb"
	"github.com/speleo-data/cavetopo/internal/testutil"
	"github.com/speleo-data/cavetopo/internal/timeutil"
)

// topFile assembles .top file bytes for upload tests.
type topFile struct {
	bytes.Buffer
}

func (f *topFile) u32(v uint32) *topFile {
	binary.Write(&f.Buffer, binary.LittleEndian, v)
	return f
}

func (f *topFile) i32(v int32) *topFile {
	binary.Write(&f.Buffer, binary.LittleEndian, v)
	return f
}

func (f *topFile) i16(v int16) *topFile {
	binary.Write(&f.Buffer, binary.LittleEndian, v)
	return f
}

func (f *topFile) i64(v int64) *topFile {
	binary.Write(&f.Buffer, binary.LittleEndian, v)
	return f
}

func (f *topFile) byte(v byte) *topFile {
	f.WriteByte(v)
	return f
}

func (f *topFile) str(s string) *topFile {
	// Short test strings fit in a single varint group.
	f.WriteByte(byte(len(s)))
	f.WriteString(s)
	return f
}

// station packs a major.minor station id.
func (f *topFile) station(major, minor uint16) *topFile {
	return f.u32(uint32(major)<<16 | uint32(minor))
}

func (f *topFile) mapping() *topFile {
	return f.i32(0).i32(0).i32(1000)
}

// fullShot writes one leg with the comment flag clear.
func (f *topFile) fullShot(fromMinor, toMinor uint16, distMM int32) *topFile {
	return f.station(1, fromMinor).station(1, toMinor).
		i32(distMM).i16(0).i16(0).byte(0).byte(0).i16(0)
}

// testFile is a well-formed document with one trip, two shots, and one
// reference.
func testFile(t *testing.T) []byte {
	t.Helper()
	var f topFile
	f.WriteString("Top")
	f.byte(0x03)
	f.u32(1).
		i64((62_135_596_800 + 1_666_396_800) * 10_000_000). // 2022-10-22
		str("main passage").
		i16(3185) // 2.8 degrees east
	f.u32(2)
	f.fullShot(0, 1, 5000)
	f.fullShot(1, 2, 3000)
	f.u32(1).
		station(1, 0).i64(551_000_000).i64(5_212_000_000).i32(412_000).
		str("entrance datum")
	f.mapping()
	f.mapping().byte(0x00) // outline
	f.mapping().byte(0x00) // sideview
	return f.Bytes()
}

func testServer(t *testing.T) (*Server, *surveydb.DB) {
	t.Helper()
	db, err := surveydb.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp())

	clock := timeutil.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewServer(db, "m", clock), db
}

// do runs one request through the full handler and decodes the JSON body.
func do(t *testing.T, s *Server, req *http.Request, wantStatus int, out any) {
	t.Helper()
	rec := testutil.NewTestRecorder()
	s.Handler().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, wantStatus)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

// importTestSurvey uploads testFile and returns its archive id.
func importTestSurvey(t *testing.T, s *Server) string {
	t.Helper()
	var resp struct {
		ID string `json:"id"`
	}
	req := testutil.NewTestUpload(http.MethodPost, "/api/surveys?name=test+cave", testFile(t))
	do(t, s, req, http.StatusCreated, &resp)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)

	var resp map[string]string
	do(t, s, testutil.NewTestRequest(http.MethodGet, "/healthz"), http.StatusOK, &resp)
	require.Equal(t, "ok", resp["status"])
}

func TestImportSurvey(t *testing.T) {
	s, _ := testServer(t)

	var resp struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Summary struct {
			LegCount    int     `json:"leg_count"`
			TotalLength float64 `json:"total_length_m"`
		} `json:"summary"`
	}
	req := testutil.NewTestUpload(http.MethodPost, "/api/surveys?name=test+cave", testFile(t))
	do(t, s, req, http.StatusCreated, &resp)

	require.NotEmpty(t, resp.ID)
	require.Equal(t, "test cave", resp.Name)
	require.Equal(t, 2, resp.Summary.LegCount)
	require.InDelta(t, 8.0, resp.Summary.TotalLength, 1e-9)
}

func TestImportSurveyDefaultName(t *testing.T) {
	s, _ := testServer(t)

	var resp struct {
		Name string `json:"name"`
	}
	req := testutil.NewTestUpload(http.MethodPost, "/api/surveys", testFile(t))
	do(t, s, req, http.StatusCreated, &resp)
	require.Equal(t, "unnamed survey", resp.Name)
}

func TestImportSurveyRejectsGarbage(t *testing.T) {
	s, _ := testServer(t)

	var resp map[string]string
	req := testutil.NewTestUpload(http.MethodPost, "/api/surveys", []byte("not a survey"))
	do(t, s, req, http.StatusUnprocessableEntity, &resp)
	require.Contains(t, resp["error"], "parse survey")
}

func TestListSurveys(t *testing.T) {
	s, _ := testServer(t)
	importTestSurvey(t, s)

	var resp struct {
		Surveys []surveydb.SurveyRecord `json:"surveys"`
	}
	do(t, s, testutil.NewTestRequest(http.MethodGet, "/api/surveys"), http.StatusOK, &resp)
	require.Len(t, resp.Surveys, 1)
	require.Equal(t, 2, resp.Surveys[0].ShotCount)
}

func TestGetSurvey(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	var resp struct {
		Survey      surveydb.SurveyRecord `json:"survey"`
		Units       string                `json:"units"`
		TotalLength float64               `json:"total_length"`
	}
	do(t, s, testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id), http.StatusOK, &resp)
	require.Equal(t, "test cave", resp.Survey.Name)
	require.Equal(t, "m", resp.Units)
	require.InDelta(t, 8.0, resp.TotalLength, 1e-9)
}

func TestGetSurveyFeet(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	var resp struct {
		Units       string  `json:"units"`
		TotalLength float64 `json:"total_length"`
	}
	req := testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"?units=ft")
	do(t, s, req, http.StatusOK, &resp)
	require.Equal(t, "ft", resp.Units)
	require.InDelta(t, 8000.0/304.8, resp.TotalLength, 1e-9)
}

func TestInvalidUnits(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	req := testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"?units=furlongs")
	do(t, s, req, http.StatusBadRequest, nil)
}

func TestSurveyNotFound(t *testing.T) {
	s, _ := testServer(t)

	for _, path := range []string{
		"/api/surveys/no-such-id",
		"/api/surveys/no-such-id/shots",
		"/api/surveys/no-such-id/trips",
		"/api/surveys/no-such-id/stations",
		"/api/surveys/no-such-id/sketch",
	} {
		do(t, s, testutil.NewTestRequest(http.MethodGet, path), http.StatusNotFound, nil)
	}
}

func TestDeleteSurvey(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	do(t, s, testutil.NewTestRequest(http.MethodDelete, "/api/surveys/"+id), http.StatusNoContent, nil)
	do(t, s, testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id), http.StatusNotFound, nil)
	do(t, s, testutil.NewTestRequest(http.MethodDelete, "/api/surveys/"+id), http.StatusNotFound, nil)
}

func TestSurveyShots(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	var resp struct {
		Units string         `json:"units"`
		Shots []shotResponse `json:"shots"`
	}
	do(t, s, testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"/shots"), http.StatusOK, &resp)

	require.Equal(t, "m", resp.Units)
	require.Len(t, resp.Shots, 2)
	first := resp.Shots[0]
	require.Equal(t, "1.0", *first.FromStation)
	require.Equal(t, "1.1", *first.ToStation)
	require.InDelta(t, 5.0, first.Distance, 1e-9)
	require.False(t, first.Flipped)
}

func TestSurveyTrips(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	var resp struct {
		Trips []tripResponse `json:"trips"`
	}
	do(t, s, testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"/trips"), http.StatusOK, &resp)

	require.Len(t, resp.Trips, 1)
	require.Equal(t, "main passage", resp.Trips[0].Comment)
	require.Equal(t, time.Date(2022, 10, 22, 0, 0, 0, 0, time.UTC), resp.Trips[0].Time.UTC())
	require.InDelta(t, 17.4957, resp.Trips[0].DeclinationDeg, 1e-3)
}

func TestSurveyStations(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	var resp struct {
		Units    string            `json:"units"`
		Stations []stationResponse `json:"stations"`
	}
	do(t, s, testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"/stations"), http.StatusOK, &resp)

	require.Equal(t, "m", resp.Units)
	require.Len(t, resp.Stations, 3)
	require.Equal(t, "1.0", resp.Stations[0].Station)
}

func TestSurveySketch(t *testing.T) {
	s, _ := testServer(t)
	id := importTestSurvey(t, s)

	rec := testutil.NewTestRecorder()
	s.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"/sketch"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.True(t, strings.Contains(rec.Body.String(), "outline"))

	for _, view := range []string{"outline", "sideview"} {
		rec := testutil.NewTestRecorder()
		req := testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"/sketch?view="+view)
		s.Handler().ServeHTTP(rec, req)
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	}

	do(t, s, testutil.NewTestRequest(http.MethodGet, "/api/surveys/"+id+"/sketch?view=isometric"),
		http.StatusBadRequest, nil)
}

func TestStatusCodeColor(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, colorBoldGreen + "200" + colorReset},
		{301, colorYellow + "301" + colorReset},
		{404, colorBoldRed + "404" + colorReset},
		{100, "100"},
	}
	for _, tt := range tests {
		if got := statusCodeColor(tt.code); got != tt.want {
			t.Errorf("statusCodeColor(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
