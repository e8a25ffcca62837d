package tracking

import "time"

// MetricRecord is one per-recipient tracking row. A row is inserted once,
// right after a successful send, and mutated only by the open, click, and
// engagement handlers. Rows are never deleted.
type MetricRecord struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	TrackingToken   string     `json:"tracking_token"`
	SentAt          time.Time  `json:"sent_at"`
	Opened          bool       `json:"opened"`
	OpenedAt        *time.Time `json:"opened_at"`
	OpenCount       int        `json:"open_count"`
	ButtonClicked   bool       `json:"button_clicked"`
	ButtonClickedAt *time.Time `json:"button_clicked_at"`
	ClickCount      int        `json:"click_count"`
	UserAgent       string     `json:"user_agent"`
	IPAddress       string     `json:"ip_address"`
	DeviceType      string     `json:"device_type"`
	OS              string     `json:"os"`
	Browser         string     `json:"browser"`
	Country         string     `json:"country"`
	City            string     `json:"city"`
	EngagementTime  int        `json:"engagement_time"`
}

// ClientInfo carries the per-request client metadata written on every
// open and click. Country and city are fixed placeholders; there is no
// geolocation lookup.
type ClientInfo struct {
	UserAgent  string
	IPAddress  string
	DeviceType string
	OS         string
	Browser    string
}
