package surveydb

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/speleo-data/cavetopo/internal/topo"
)

// stationText renders an optional station for storage; nil maps to SQL NULL.
func stationText(id *topo.StationId) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

// ImportDocument stores a parsed document plus its raw file bytes under a
// freshly assigned survey id. The whole import runs in one transaction:
// either the survey lands completely or not at all.
func (db *DB) ImportDocument(name string, raw []byte, doc *topo.Document) (string, error) {
	id := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO surveys (id, name, raw, trip_count, shot_count, reference_count, total_length_mm)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, raw, len(doc.Trips), len(doc.Shots), len(doc.References), doc.TotalShotLength(),
	)
	if err != nil {
		return "", fmt.Errorf("insert survey: %w", err)
	}

	for i, trip := range doc.Trips {
		_, err = tx.Exec(`
			INSERT INTO trips (survey_id, trip_index, time, comment, declination)
			VALUES (?, ?, ?, ?, ?)`,
			id, i, trip.Time, trip.Comment, trip.Declination,
		)
		if err != nil {
			return "", fmt.Errorf("insert trip %d: %w", i, err)
		}
	}

	for i, shot := range doc.Shots {
		comment := sql.NullString{}
		if shot.Flags.HasComment() {
			comment = sql.NullString{String: shot.Comment, Valid: true}
		}
		_, err = tx.Exec(`
			INSERT INTO shots (survey_id, shot_index, from_station, to_station,
				distance_mm, azimuth, inclination, flags, roll, trip_index, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, stationText(shot.From), stationText(shot.To),
			shot.Distance, shot.Azimuth, shot.Inclination,
			int(shot.Flags), shot.Roll, shot.TripIndex, comment,
		)
		if err != nil {
			return "", fmt.Errorf("insert shot %d: %w", i, err)
		}
	}

	for i, ref := range doc.References {
		_, err = tx.Exec(`
			INSERT INTO survey_references (survey_id, ref_index, station,
				east_mm, north_mm, altitude_mm, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, stationText(ref.Station),
			ref.East, ref.North, ref.Altitude, ref.Comment,
		)
		if err != nil {
			return "", fmt.Errorf("insert reference %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit import: %w", err)
	}
	return id, nil
}
