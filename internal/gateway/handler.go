package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jgoulah/gridserve/internal/consumptionpb"
	"github.com/sirupsen/logrus"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	apiName    = "Electricity Consumption API"
	apiVersion = "1.0.0"
)

// Record is one reading in the JSON response
type Record struct {
	Datetime    string  `json:"datetime"`
	EnergyUsage float64 `json:"energy_usage"`
}

// ConsumptionResponse is the body of a successful consumption query
type ConsumptionResponse struct {
	Records    []Record `json:"records"`
	TotalCount int      `json:"total_count"`
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

type handler struct {
	backend        *Backend
	log            logrus.FieldLogger
	requestTimeout time.Duration
	healthTimeout  time.Duration
	staticEnabled  bool
}

func (h *handler) consumption(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get(consumptionpb.StartDatetimeField)
	end := q.Get(consumptionpb.EndDatetimeField)
	reqID := requestIDFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.backend.GetConsumptionData(ctx, reqID, start, end)
	if err != nil {
		code, body := httpError(err)
		h.log.WithError(err).WithFields(logrus.Fields{
			"request_id": reqID,
			"start":      start,
			"end":        end,
			"status":     code,
		}).Warn("Consumption query failed")
		writeJSON(w, code, body)
		return
	}

	out := ConsumptionResponse{Records: make([]Record, 0, len(resp.GetRecords()))}
	for _, rec := range resp.GetRecords() {
		out.Records = append(out.Records, Record{
			Datetime:    rec.GetDatetime(),
			EnergyUsage: rec.GetEnergyUsage(),
		})
	}
	out.TotalCount = len(out.Records)

	writeJSON(w, http.StatusOK, out)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	resp := HealthResponse{Service: "consumption-api"}

	st, err := h.backend.Check(ctx)
	if err != nil {
		h.log.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Warn("Backend health check failed")
		resp.Status = "unhealthy"
		resp.Backend = healthpb.HealthCheckResponse_UNKNOWN.String()
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Backend = st.String()
	if st != healthpb.HealthCheckResponse_SERVING {
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Status = "healthy"
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"consumption": "/api/consumption",
		"health":      "/health",
		"metrics":     "/metrics",
	}
	if h.staticEnabled {
		endpoints["frontend"] = "/static/"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   apiName,
		"version":   apiVersion,
		"endpoints": endpoints,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
