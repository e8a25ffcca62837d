package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ignite/mailtrace/internal/tracking"
)

type stubSource struct {
	summary *tracking.Summary
	devices []tracking.DeviceCount
	records []*tracking.MetricRecord
	err     error
}

func (s *stubSource) GetSummary(ctx context.Context) (*tracking.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func (s *stubSource) GetDeviceBreakdown(ctx context.Context) ([]tracking.DeviceCount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.devices, nil
}

func (s *stubSource) ListRecords(ctx context.Context) ([]*tracking.MetricRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func testSource() *stubSource {
	sentAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return &stubSource{
		summary: &tracking.Summary{TotalSent: 4, TotalOpened: 2, TotalClicked: 1},
		devices: []tracking.DeviceCount{
			{DeviceType: "desktop", Count: 1},
			{DeviceType: "mobile", Count: 1},
		},
		records: []*tracking.MetricRecord{
			{
				ID: 1, Email: "a@example.com", TrackingToken: "tok-1",
				SentAt: sentAt, Opened: true, OpenCount: 2,
				ButtonClicked: true, ClickCount: 1,
				DeviceType: "mobile", OS: "iPhone OS", Browser: "Safari",
				EngagementTime: 42,
			},
			{
				ID: 2, Email: "b@example.com", TrackingToken: "tok-2",
				SentAt: sentAt,
			},
		},
	}
}

func TestHandleDashboard(t *testing.T) {
	h := NewHandler(testSource())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"a@example.com",
		"b@example.com",
		"50.0%",          // open rate, 2 of 4
		"25.0%",          // click rate, 1 of 4
		`"Not Opened"`,   // pie labels embedded in the chart JSON
		`"desktop"`,      // device histogram label
		"2025-06-01 09:30",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHandleDashboardStoreError(t *testing.T) {
	h := NewHandler(&stubSource{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleExport(t *testing.T) {
	h := NewHandler(testSource())

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Charts map[string]string `json:"charts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, name := range []string{"opens", "clicks", "devices"} {
		u, ok := resp.Charts[name]
		if !ok {
			t.Errorf("missing %q chart URL", name)
			continue
		}
		if !strings.Contains(u, "quickchart.io") {
			t.Errorf("%s URL = %q, want quickchart.io host", name, u)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total int
		want        string
	}{
		{0, 0, "0.0%"},
		{1, 4, "25.0%"},
		{3, 3, "100.0%"},
		{1, 3, "33.3%"},
	}
	for _, tt := range tests {
		if got := percent(tt.part, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %q, want %q", tt.part, tt.total, got, tt.want)
		}
	}
}
