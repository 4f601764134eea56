package surveydb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a survey id does not exist in the archive.
var ErrNotFound = errors.New("survey not found")

// SurveyRecord is one archived survey's metadata row.
type SurveyRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TripCount      int       `json:"trip_count"`
	ShotCount      int       `json:"shot_count"`
	ReferenceCount int       `json:"reference_count"`
	TotalLengthMM  int64     `json:"total_length_mm"`
	ImportedAt     time.Time `json:"imported_at"`
}

// ShotRecord is one archived shot row, in raw file units.
type ShotRecord struct {
	Index       int     `json:"index"`
	FromStation *string `json:"from_station"`
	ToStation   *string `json:"to_station"`
	DistanceMM  int64   `json:"distance_mm"`
	Azimuth     int16   `json:"azimuth"`
	Inclination int16   `json:"inclination"`
	Flags       uint8   `json:"flags"`
	Roll        uint8   `json:"roll"`
	TripIndex   int16   `json:"trip_index"`
	Comment     *string `json:"comment"`
}

// TripRecord is one archived trip row.
type TripRecord struct {
	Index       int       `json:"index"`
	Time        time.Time `json:"time"`
	Comment     string    `json:"comment"`
	Declination int16     `json:"declination"`
}

const surveyColumns = `id, name, trip_count, shot_count, reference_count, total_length_mm, imported_at`

func scanSurvey(row interface{ Scan(...any) error }) (SurveyRecord, error) {
	var s SurveyRecord
	err := row.Scan(&s.ID, &s.Name, &s.TripCount, &s.ShotCount,
		&s.ReferenceCount, &s.TotalLengthMM, &s.ImportedAt)
	return s, err
}

// ListSurveys returns all archived surveys, newest first.
func (db *DB) ListSurveys() ([]SurveyRecord, error) {
	rows, err := db.Query(`SELECT ` + surveyColumns + ` FROM surveys ORDER BY imported_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	surveys := []SurveyRecord{}
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, s)
	}
	return surveys, rows.Err()
}

// GetSurvey returns one survey's metadata.
func (db *DB) GetSurvey(id string) (SurveyRecord, error) {
	s, err := scanSurvey(db.QueryRow(`SELECT `+surveyColumns+` FROM surveys WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return SurveyRecord{}, ErrNotFound
	}
	if err != nil {
		return SurveyRecord{}, fmt.Errorf("get survey: %w", err)
	}
	return s, nil
}

// SurveyRaw returns the original .top file bytes for a survey.
func (db *DB) SurveyRaw(id string) ([]byte, error) {
	var raw []byte
	err := db.QueryRow(`SELECT raw FROM surveys WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get survey raw: %w", err)
	}
	return raw, nil
}

// SurveyShots returns a survey's shots in file order.
func (db *DB) SurveyShots(id string) ([]ShotRecord, error) {
	if _, err := db.GetSurvey(id); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT shot_index, from_station, to_station, distance_mm,
			azimuth, inclination, flags, roll, trip_index, comment
		FROM shots WHERE survey_id = ? ORDER BY shot_index`, id)
	if err != nil {
		return nil, fmt.Errorf("list shots: %w", err)
	}
	defer rows.Close()

	shots := []ShotRecord{}
	for rows.Next() {
		var s ShotRecord
		if err := rows.Scan(&s.Index, &s.FromStation, &s.ToStation, &s.DistanceMM,
			&s.Azimuth, &s.Inclination, &s.Flags, &s.Roll, &s.TripIndex, &s.Comment); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		shots = append(shots, s)
	}
	return shots, rows.Err()
}

// SurveyTrips returns a survey's trips in file order.
func (db *DB) SurveyTrips(id string) ([]TripRecord, error) {
	if _, err := db.GetSurvey(id); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT trip_index, time, comment, declination
		FROM trips WHERE survey_id = ? ORDER BY trip_index`, id)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	trips := []TripRecord{}
	for rows.Next() {
		var t TripRecord
		if err := rows.Scan(&t.Index, &t.Time, &t.Comment, &t.Declination); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DeleteSurvey removes a survey and, via cascading foreign keys, all of its
// rows.
func (db *DB) DeleteSurvey(id string) error {
	result, err := db.Exec(`DELETE FROM surveys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
