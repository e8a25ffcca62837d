package tracking

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mailtrace/internal/pkg/logger"
)

// 1x1 transparent PNG served for every pixel fetch
var pixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// Handler serves the tracking endpoints. A lookup miss is never surfaced
// to the caller: the pixel is always returned and the redirect always
// happens, so token validity cannot be probed from outside.
type Handler struct {
	store *Store
	live  *LiveCounters
}

// NewHandler creates a tracking handler over the store and the optional
// live counters.
func NewHandler(store *Store, live *LiveCounters) *Handler {
	return &Handler{store: store, live: live}
}

// Routes builds the tracking router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/track/{token}", h.HandleOpen)
	r.Get("/click/{token}", h.HandleClick)
	r.Post("/engagement/{token}", h.HandleEngagement)
	r.Get("/metrics", h.HandleMetrics)
	r.Get("/metrics/live", h.HandleLiveMetrics)
	r.Get("/health", h.HandleHealth)
	return r
}

// HandleOpen records a pixel fetch and always answers with the image,
// whether or not the token exists.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	client := clientFromRequest(r)

	found, err := h.store.RecordOpen(r.Context(), token, client)
	if err != nil {
		logger.Error("open update failed", "token", token, "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if found {
		h.live.RecordOpen(r.Context(), token)
		logger.Info("open recorded", "token", token, "ip", client.IPAddress, "device", client.DeviceType)
	}

	h.servePixel(w)
}

// HandleClick records a click (which implies an open) and redirects to
// the destination URL whether or not the token exists.
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	destination := r.URL.Query().Get("url")
	if destination == "" {
		http.Error(w, "bad link", http.StatusBadRequest)
		return
	}

	client := clientFromRequest(r)
	found, err := h.store.RecordClick(r.Context(), token, client)
	if err != nil {
		logger.Error("click update failed", "token", token, "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if found {
		h.live.RecordClick(r.Context(), token)
		logger.Info("click recorded", "token", token, "ip", client.IPAddress, "url", destination)
	}

	http.Redirect(w, r, destination, http.StatusFound)
}

type engagementRequest struct {
	EngagementTime int `json:"engagement_time"`
}

// HandleEngagement accumulates client-reported read time. Absent or
// malformed payloads count as zero; the response never reveals whether
// the token resolved.
func (h *Handler) HandleEngagement(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.EngagementTime = 0
	}

	found, err := h.store.AddEngagement(r.Context(), token, req.EngagementTime)
	if err != nil {
		logger.Error("engagement update failed", "token", token, "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if found {
		logger.Info("engagement recorded", "token", token, "seconds", req.EngagementTime)
	}

	writeJSON(w, map[string]string{"status": "success"})
}

// HandleMetrics returns every tracking record as JSON.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListRecords(r.Context())
	if err != nil {
		logger.Error("metrics listing failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*MetricRecord{}
	}
	writeJSON(w, map[string]interface{}{"metrics": records})
}

// HandleLiveMetrics returns the Redis-backed live counters.
func (h *Handler) HandleLiveMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.live.Snapshot(r.Context())
	if err != nil {
		logger.Error("live snapshot failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}

// HandleHealth is the liveness probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelPNG)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func clientFromRequest(r *http.Request) ClientInfo {
	ua := r.UserAgent()
	c := Classify(ua)
	return ClientInfo{
		UserAgent:  ua,
		IPAddress:  realIP(r),
		DeviceType: c.DeviceType,
		OS:         c.OS,
		Browser:    c.Browser,
	}
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
