package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/track.report/internal/gpx"
	"github.com/banshee-data/track.report/internal/stats"
	"github.com/banshee-data/track.report/internal/track"
)

var (
	// ErrTrackNotFound is returned when no track row matches the given id.
	ErrTrackNotFound = errors.New("track not found")

	// ErrDuplicateTrack is returned when an upload's content hash matches
	// an already-stored track.
	ErrDuplicateTrack = errors.New("track already uploaded")
)

// TrackRecord is a full stored track: the original upload plus the
// processed document and the configuration that produced it.
type TrackRecord struct {
	ID        string         `json:"track_id"`
	Name      string         `json:"name"`
	FileHash  string         `json:"file_hash"`
	GPX       []byte         `json:"-"`
	Document  track.Document `json:"document"`
	Config    track.Config   `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TrackSummary is the listing view of a stored track: identity plus the
// headline numbers from its current statistics.
type TrackSummary struct {
	ID            string    `json:"track_id"`
	Name          string    `json:"name"`
	WaypointCount int       `json:"waypoint_count"`
	TotalDistance float64   `json:"total_distance"`
	AvgSpeed      float64   `json:"avg_speed"`
	MaxSpeed      float64   `json:"max_speed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HashContent returns the hex sha256 of raw upload content, used for
// duplicate detection.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// InsertTrack stores a newly processed track and returns its generated
// id. A content-hash collision with an existing row returns
// ErrDuplicateTrack.
func (db *DB) InsertTrack(name string, content []byte, doc *track.Document, cfg track.Config) (string, error) {
	hash := HashContent(content)
	if existing, err := db.TrackIDByHash(hash); err == nil {
		return existing, ErrDuplicateTrack
	} else if !errors.Is(err, ErrTrackNotFound) {
		return "", err
	}

	waypointsJSON, err := json.Marshal(doc.Waypoints)
	if err != nil {
		return "", fmt.Errorf("failed to marshal waypoints: %w", err)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	statisticsJSON, err := json.Marshal(doc.Statistics)
	if err != nil {
		return "", fmt.Errorf("failed to marshal statistics: %w", err)
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	id := uuid.NewString()
	now := db.clock.Now().UTC()
	_, err = db.Exec(
		`INSERT INTO tracks (
			track_id, name, file_hash, gpx_data,
			waypoints, metadata, statistics, config,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, hash, content,
		string(waypointsJSON), string(metadataJSON), string(statisticsJSON), string(configJSON),
		now, now,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// TrackByID loads a full stored track.
func (db *DB) TrackByID(id string) (*TrackRecord, error) {
	row := db.QueryRow(
		`SELECT track_id, name, file_hash, gpx_data,
			waypoints, metadata, statistics, config,
			created_at, updated_at
		FROM tracks WHERE track_id = ?`, id)

	var (
		rec                                                  TrackRecord
		waypointsJSON, metadataJSON, statisticsJSON, cfgJSON string
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.FileHash, &rec.GPX,
		&waypointsJSON, &metadataJSON, &statisticsJSON, &cfgJSON,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(waypointsJSON), &rec.Document.Waypoints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal waypoints for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &rec.Document.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(statisticsJSON), &rec.Document.Statistics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statistics for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(cfgJSON), &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config for %s: %w", id, err)
	}
	return &rec, nil
}

// Tracks lists stored tracks, newest first.
func (db *DB) Tracks() ([]TrackSummary, error) {
	rows, err := db.Query(
		`SELECT track_id, name, metadata, statistics, created_at, updated_at
		FROM tracks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []TrackSummary
	for rows.Next() {
		var (
			s                       TrackSummary
			metadataJSON, statsJSON string
		)
		if err := rows.Scan(&s.ID, &s.Name, &metadataJSON, &statsJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}

		var md gpx.TrackMetadata
		if err := json.Unmarshal([]byte(metadataJSON), &md); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", s.ID, err)
		}
		var st stats.Statistics
		if err := json.Unmarshal([]byte(statsJSON), &st); err != nil {
			return nil, fmt.Errorf("failed to unmarshal statistics for %s: %w", s.ID, err)
		}
		s.WaypointCount = md.WaypointCount
		s.TotalDistance = st.BasicMetrics.TotalDistance
		s.AvgSpeed = st.BasicMetrics.AvgSpeed
		s.MaxSpeed = st.Results.ProcessedMaxSpeed

		tracks = append(tracks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tracks, nil
}

// UpdateStatistics replaces a track's statistics and processing config.
// Concurrent reprocessing is last-write-wins at this statement.
func (db *DB) UpdateStatistics(id string, st stats.Statistics, cfg track.Config) error {
	statisticsJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	res, err := db.Exec(
		`UPDATE tracks SET statistics = ?, config = ?, updated_at = ? WHERE track_id = ?`,
		string(statisticsJSON), string(configJSON), db.clock.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTrackNotFound
	}
	return nil
}

// DeleteTrack removes a stored track.
func (db *DB) DeleteTrack(id string) error {
	res, err := db.Exec(`DELETE FROM tracks WHERE track_id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTrackNotFound
	}
	return nil
}

// TrackIDByHash resolves a content hash to the id of the track that
// carries it, or ErrTrackNotFound.
func (db *DB) TrackIDByHash(hash string) (string, error) {
	var id string
	err := db.QueryRow(`SELECT track_id FROM tracks WHERE file_hash = ?`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTrackNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
