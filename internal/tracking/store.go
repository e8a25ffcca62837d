package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// placeholderLocation is written for country/city on every event. There is
// no geolocation lookup; the columns exist for schema compatibility.
const placeholderLocation = "Unknown"

// Store provides database operations on the email_metrics table.
// Every token-keyed mutation is a single UPDATE so concurrent opens and
// clicks for the same token cannot lose increments or overwrite the
// first-seen timestamps.
type Store struct {
	db *sql.DB
}

// NewStore creates a new metrics store over an injected database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the email_metrics table if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS email_metrics (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(120) NOT NULL,
			tracking_token VARCHAR(36) NOT NULL UNIQUE,
			sent_at TIMESTAMPTZ NOT NULL,
			opened BOOLEAN NOT NULL DEFAULT FALSE,
			opened_at TIMESTAMPTZ,
			open_count INTEGER NOT NULL DEFAULT 0,
			button_clicked BOOLEAN NOT NULL DEFAULT FALSE,
			button_clicked_at TIMESTAMPTZ,
			click_count INTEGER NOT NULL DEFAULT 0,
			user_agent VARCHAR(200) NOT NULL DEFAULT '',
			ip_address VARCHAR(45) NOT NULL DEFAULT '',
			device_type VARCHAR(20) NOT NULL DEFAULT '',
			os VARCHAR(50) NOT NULL DEFAULT '',
			browser VARCHAR(50) NOT NULL DEFAULT '',
			country VARCHAR(50) NOT NULL DEFAULT '',
			city VARCHAR(50) NOT NULL DEFAULT '',
			engagement_time INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("create email_metrics: %w", err)
	}
	return nil
}

// InsertRecord creates the initial tracking row for a successfully sent
// message. All flags and counters start at their zero values.
func (s *Store) InsertRecord(ctx context.Context, email, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_metrics (email, tracking_token, sent_at)
		VALUES ($1, $2, $3)`,
		email, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert metric for %s: %w", token, err)
	}
	return nil
}

// RecordOpen applies a pixel fetch to the row for token. The first open
// sets opened/opened_at; every fetch increments open_count and overwrites
// the client metadata. Returns false when the token is unknown.
func (s *Store) RecordOpen(ctx context.Context, token string, client ClientInfo) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE email_metrics SET
			opened = TRUE,
			opened_at = COALESCE(opened_at, NOW()),
			open_count = open_count + 1,
			user_agent = $2,
			ip_address = $3,
			device_type = $4,
			os = $5,
			browser = $6,
			country = $7,
			city = $7
		WHERE tracking_token = $1`,
		token, client.UserAgent, client.IPAddress, client.DeviceType,
		client.OS, client.Browser, placeholderLocation)
	if err != nil {
		return false, fmt.Errorf("record open for %s: %w", token, err)
	}
	return rowUpdated(res), nil
}

// RecordClick applies a tracked-link click to the row for token. A click
// without a prior pixel fetch still counts as the first open, so the open
// fields are folded into the same statement. button_clicked_at is only set
// once; click_count always increments.
func (s *Store) RecordClick(ctx context.Context, token string, client ClientInfo) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE email_metrics SET
			open_count = open_count + CASE WHEN opened THEN 0 ELSE 1 END,
			opened = TRUE,
			opened_at = COALESCE(opened_at, NOW()),
			button_clicked = TRUE,
			button_clicked_at = COALESCE(button_clicked_at, NOW()),
			click_count = click_count + 1,
			user_agent = $2,
			ip_address = $3,
			device_type = $4,
			os = $5,
			browser = $6,
			country = $7,
			city = $7
		WHERE tracking_token = $1`,
		token, client.UserAgent, client.IPAddress, client.DeviceType,
		client.OS, client.Browser, placeholderLocation)
	if err != nil {
		return false, fmt.Errorf("record click for %s: %w", token, err)
	}
	return rowUpdated(res), nil
}

// AddEngagement accumulates client-reported seconds onto the row for
// token. The counter only ever grows.
func (s *Store) AddEngagement(ctx context.Context, token string, seconds int) (bool, error) {
	if seconds < 0 {
		seconds = 0
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE email_metrics
		SET engagement_time = engagement_time + $2
		WHERE tracking_token = $1`,
		token, seconds)
	if err != nil {
		return false, fmt.Errorf("add engagement for %s: %w", token, err)
	}
	return rowUpdated(res), nil
}

// ListRecords returns every tracking row, oldest first.
func (s *Store) ListRecords(ctx context.Context) ([]*MetricRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, tracking_token, sent_at, opened, opened_at, open_count,
			button_clicked, button_clicked_at, click_count, user_agent, ip_address,
			device_type, os, browser, country, city, engagement_time
		FROM email_metrics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*MetricRecord
	for rows.Next() {
		rec := &MetricRecord{}
		err := rows.Scan(&rec.ID, &rec.Email, &rec.TrackingToken, &rec.SentAt,
			&rec.Opened, &rec.OpenedAt, &rec.OpenCount,
			&rec.ButtonClicked, &rec.ButtonClickedAt, &rec.ClickCount,
			&rec.UserAgent, &rec.IPAddress, &rec.DeviceType, &rec.OS,
			&rec.Browser, &rec.Country, &rec.City, &rec.EngagementTime)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summary holds the dashboard totals.
type Summary struct {
	TotalSent    int `json:"total_sent"`
	TotalOpened  int `json:"total_opened"`
	TotalClicked int `json:"total_clicked"`
}

// GetSummary computes sent/opened/clicked totals in one pass.
func (s *Store) GetSummary(ctx context.Context) (*Summary, error) {
	sum := &Summary{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE opened),
			COUNT(*) FILTER (WHERE button_clicked)
		FROM email_metrics`).Scan(&sum.TotalSent, &sum.TotalOpened, &sum.TotalClicked)
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// DeviceCount is one bar of the device-type histogram.
type DeviceCount struct {
	DeviceType string `json:"device_type"`
	Count      int    `json:"count"`
}

// GetDeviceBreakdown returns the device-type histogram over opened rows
// only. A row that never fired the pixel or a click has no classification
// and contributes nothing.
func (s *Store) GetDeviceBreakdown(ctx context.Context) ([]DeviceCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT device_type, COUNT(*)
		FROM email_metrics
		WHERE opened
		GROUP BY device_type
		ORDER BY COUNT(*) DESC, device_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DeviceCount
	for rows.Next() {
		var dc DeviceCount
		if err := rows.Scan(&dc.DeviceType, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

func rowUpdated(res sql.Result) bool {
	n, err := res.RowsAffected()
	return err == nil && n > 0
}
