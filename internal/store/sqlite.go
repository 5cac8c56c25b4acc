package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Fullex26/linenotify/pkg/models"
	_ "modernc.org/sqlite"
)

// Store persists delivery history in SQLite
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS deliveries (
			id TEXT PRIMARY KEY,
			notifier TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			outcome INTEGER NOT NULL,
			status_code INTEGER NOT NULL,
			message TEXT,
			error TEXT,
			payload TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_deliveries_timestamp ON deliveries(timestamp);
		CREATE INDEX IF NOT EXISTS idx_deliveries_outcome ON deliveries(outcome);
	`)
	return err
}

// SaveDelivery persists a delivery record
func (s *Store) SaveDelivery(d models.Delivery) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding delivery: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO deliveries (id, notifier, timestamp, outcome, status_code, message, error, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Notifier, d.Timestamp, d.Outcome, d.StatusCode,
		d.Payload.Message, d.Error, string(payload),
	)
	return err
}

// RecentDeliveries returns up to limit deliveries, newest first
func (s *Store) RecentDeliveries(limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT payload FROM deliveries
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			continue
		}
		var d models.Delivery
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			continue
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// LastDelivery returns the newest delivery, or nil when the history is empty
func (s *Store) LastDelivery() (*models.Delivery, error) {
	deliveries, err := s.RecentDeliveries(1)
	if err != nil {
		return nil, err
	}
	if len(deliveries) == 0 {
		return nil, nil
	}
	return &deliveries[0], nil
}

// LastDeliveredAt returns when a notification last got a 2xx answer
func (s *Store) LastDeliveredAt() (time.Time, error) {
	var ts time.Time
	err := s.db.QueryRow(`
		SELECT timestamp FROM deliveries
		WHERE outcome = ?
		ORDER BY timestamp DESC
		LIMIT 1`, models.OutcomeDelivered).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	return ts, err
}

// DeliveryCount returns the number of deliveries in the last N hours,
// grouped by outcome
func (s *Store) DeliveryCount(hours int) (map[models.Outcome]int, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	rows, err := s.db.Query(`
		SELECT outcome, COUNT(*) FROM deliveries
		WHERE timestamp > ?
		GROUP BY outcome`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Outcome]int)
	for rows.Next() {
		var o models.Outcome
		var n int
		if err := rows.Scan(&o, &n); err != nil {
			return nil, err
		}
		counts[o] = n
	}
	return counts, rows.Err()
}

// Prune removes deliveries older than N days
func (s *Store) Prune(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result, err := s.db.Exec(`DELETE FROM deliveries WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
