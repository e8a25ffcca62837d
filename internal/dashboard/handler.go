package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mailtrace/internal/pkg/logger"
	"github.com/ignite/mailtrace/internal/tracking"
)

// MetricsSource is the slice of the tracking store the dashboard reads.
type MetricsSource interface {
	GetSummary(ctx context.Context) (*tracking.Summary, error)
	GetDeviceBreakdown(ctx context.Context) ([]tracking.DeviceCount, error)
	ListRecords(ctx context.Context) ([]*tracking.MetricRecord, error)
}

// Handler renders the metrics dashboard. Everything is recomputed per
// request; there is no caching layer in front of the store.
type Handler struct {
	store MetricsSource
}

func NewHandler(store MetricsSource) *Handler {
	return &Handler{store: store}
}

// Routes mounts the dashboard endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleDashboard)
	r.Get("/export", h.HandleExport)
	return r
}

type pageData struct {
	Summary    *tracking.Summary
	OpenRate   string
	ClickRate  string
	Records    []*tracking.MetricRecord
	ChartsJSON template.JS
}

// HandleDashboard serves the chart page. The chart configs are embedded
// as JSON and drawn client-side.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sum, err := h.store.GetSummary(ctx)
	if err != nil {
		logger.Error("dashboard summary query failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	devices, err := h.store.GetDeviceBreakdown(ctx)
	if err != nil {
		logger.Error("dashboard device query failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	records, err := h.store.ListRecords(ctx)
	if err != nil {
		logger.Error("dashboard records query failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	charts := BuildCharts(sum, devices)
	chartsJSON, err := json.Marshal(charts)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Summary:    sum,
		OpenRate:   percent(sum.TotalOpened, sum.TotalSent),
		ClickRate:  percent(sum.TotalClicked, sum.TotalSent),
		Records:    records,
		ChartsJSON: template.JS(chartsJSON),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error("dashboard render failed", "error", err)
	}
}

// HandleExport returns QuickChart image URLs for the three charts, for
// embedding the dashboard outside the service (reports, chat snippets).
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sum, err := h.store.GetSummary(ctx)
	if err != nil {
		logger.Error("export summary query failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	devices, err := h.store.GetDeviceBreakdown(ctx)
	if err != nil {
		logger.Error("export device query failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	charts := BuildCharts(sum, devices)
	urls := make(map[string]string, 3)
	for name, cfg := range map[string]ChartConfig{
		"opens":   charts.Opens,
		"clicks":  charts.Clicks,
		"devices": charts.Devices,
	} {
		u, err := ExportURL(cfg)
		if err != nil {
			logger.Error("chart export failed", "chart", name, "error", err)
			http.Error(w, `{"error":"chart export failed"}`, http.StatusInternalServerError)
			return
		}
		urls[name] = u
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"charts": urls})
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}
