package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"industrial-ai-backend/internal/ai"
	"industrial-ai-backend/internal/catalog"
	"industrial-ai-backend/internal/models"
	"industrial-ai-backend/internal/services"
	"industrial-ai-backend/internal/twin"
	"industrial-ai-backend/internal/views"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200

	// devices silent for longer than this are shown offline
	offlineAfter = 5 * time.Minute
)

// DeviceRegistry lists devices that have reported
type DeviceRegistry interface {
	ListDevices(ctx context.Context) ([]models.RegisteredDevice, error)
}

// LiveDevices is the in-memory view of devices seen since startup
type LiveDevices interface {
	Devices() []string
	LastSeen(deviceID string) (time.Time, bool)
}

// BrokerStatus reports the MQTT connection state
type BrokerStatus interface {
	IsConnected() bool
}

// Deps are the components the HTTP API serves. Registry, Live and Broker
// are optional.
type Deps struct {
	Catalog          *catalog.Catalog
	Twin             *twin.Simulator
	Maintenance      *services.MaintenanceService
	Configurator     *services.ConfiguratorService
	MaintenanceView  *views.Controller[models.MaintenanceReport]
	ConfiguratorView *views.Controller[models.AutomationSolution]
	Registry         DeviceRegistry
	Live             LiveDevices
	Broker           BrokerStatus
}

// Handler provides HTTP API endpoints
type Handler struct {
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(deps Deps, logger *zap.Logger) *Handler {
	return &Handler{deps: deps, logger: logger, now: time.Now}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET")

	// Static views
	r.HandleFunc("/api/dashboard", h.handleDashboard).Methods("GET")
	r.HandleFunc("/api/devices", h.handleDevices).Methods("GET")
	r.HandleFunc("/api/resources", h.handleResources).Methods("GET")
	r.HandleFunc("/api/twin", h.handleGetTwin).Methods("GET")
	r.HandleFunc("/api/twin", h.handleUpdateTwin).Methods("PUT")
	r.HandleFunc("/api/twin", h.handleResetTwin).Methods("DELETE")

	// Predictive maintenance
	r.HandleFunc("/api/maintenance", h.handleMaintenanceState).Methods("GET")
	r.HandleFunc("/api/maintenance", h.handleMaintenanceReset).Methods("DELETE")
	r.HandleFunc("/api/maintenance/sensors", h.handleMaintenanceSensors).Methods("GET")
	r.HandleFunc("/api/maintenance/analyze", h.handleMaintenanceAnalyze).Methods("POST")
	r.HandleFunc("/api/maintenance/history", h.handleMaintenanceHistory).Methods("GET")

	// Solution configurator
	r.HandleFunc("/api/configurator", h.handleConfiguratorState).Methods("GET")
	r.HandleFunc("/api/configurator", h.handleConfiguratorSubmit).Methods("POST")
	r.HandleFunc("/api/configurator", h.handleConfiguratorReset).Methods("DELETE")
}

// respondJSON sends a JSON response
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("Error encoding response", zap.Error(err))
	}
}

// respondError sends a JSON error response
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a pipeline error to an HTTP status. A parse failure is not
// an HTTP error: the view simply shows no result.
func statusFor(err error) int {
	switch {
	case errors.Is(err, views.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, ai.ErrEmptyRequirements),
		errors.Is(err, ai.ErrInvalidOption),
		errors.Is(err, ai.ErrNoReadings),
		errors.Is(err, ai.ErrInvalidReading):
		return http.StatusBadRequest
	case ai.IsParse(err):
		return http.StatusOK
	case ai.IsTransport(err):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondSubmit writes the outcome of a view submission
func respondSubmit[T any](h *Handler, w http.ResponseWriter, state views.State[T], err error) {
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	if status == http.StatusOK {
		h.respondJSON(w, status, state)
		return
	}
	h.respondError(w, status, err.Error())
}

// decodeBody decodes an optional JSON body into v
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleHealth reports liveness. A lost broker connection is reported but
// does not fail the check; the client reconnects on its own.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	broker := "disabled"
	if h.deps.Broker != nil {
		broker = "disconnected"
		if h.deps.Broker.IsConnected() {
			broker = "connected"
		}
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "mqtt": broker})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.deps.Catalog.Dashboard())
}

func (h *Handler) handleResources(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.deps.Catalog.Resources)
}

// handleDevices merges the catalog fleet with devices seen live
func (h *Handler) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices := make([]models.Device, 0, len(h.deps.Catalog.Devices))
	index := make(map[string]int)
	upsert := func(d models.Device) {
		if i, ok := index[d.ID]; ok {
			d.Battery = devices[i].Battery
			if d.Name == d.ID {
				d.Name = devices[i].Name
			}
			devices[i] = d
			return
		}
		index[d.ID] = len(devices)
		devices = append(devices, d)
	}

	for _, d := range h.deps.Catalog.Devices {
		upsert(d)
	}

	if h.deps.Registry != nil {
		registered, err := h.deps.Registry.ListDevices(r.Context())
		if err != nil {
			h.logger.Warn("Error listing registered devices", zap.Error(err))
		}
		for _, rd := range registered {
			upsert(h.liveDevice(rd.DeviceID, rd.LastSeen, rd.Status))
		}
	}

	if h.deps.Live != nil {
		for _, id := range h.deps.Live.Devices() {
			seen, _ := h.deps.Live.LastSeen(id)
			status := models.DeviceOnline
			if i, ok := index[id]; ok && devices[i].Status == models.DeviceWarning {
				status = models.DeviceWarning
			}
			upsert(h.liveDevice(id, seen, status))
		}
	}

	h.respondJSON(w, http.StatusOK, devices)
}

func (h *Handler) liveDevice(id string, lastSeen time.Time, status models.DeviceStatus) models.Device {
	since := h.now().Sub(lastSeen)
	if since > offlineAfter {
		status = models.DeviceOffline
	}
	return models.Device{
		ID:       id,
		Name:     id,
		Status:   status,
		LastSeen: formatAgo(since),
	}
}

// formatAgo renders a duration the way the device table shows it
func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func (h *Handler) handleGetTwin(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.deps.Twin.State())
}

func (h *Handler) handleUpdateTwin(w http.ResponseWriter, r *http.Request) {
	var update twin.Update
	if err := decodeBody(r, &update); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := h.deps.Twin.Apply(update)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleResetTwin(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.deps.Twin.Reset())
}

// handleMaintenanceSensors returns the readings an analysis would use
func (h *Handler) handleMaintenanceSensors(w http.ResponseWriter, r *http.Request) {
	req := models.AnalysisRequest{DeviceID: r.URL.Query().Get("device_id")}
	h.respondJSON(w, http.StatusOK, h.deps.Maintenance.ResolveReadings(req))
}

func (h *Handler) handleMaintenanceState(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.deps.MaintenanceView.State())
}

func (h *Handler) handleMaintenanceReset(w http.ResponseWriter, r *http.Request) {
	h.deps.MaintenanceView.Reset()
	h.respondJSON(w, http.StatusOK, h.deps.MaintenanceView.State())
}

// handleMaintenanceAnalyze runs an analysis. The body is optional; without
// readings the device's live readings (or the demo set) are analysed.
func (h *Handler) handleMaintenanceAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := h.deps.MaintenanceView.Submit(r.Context(), func(ctx context.Context) (*models.MaintenanceReport, error) {
		return h.deps.Maintenance.Analyze(ctx, req)
	})
	respondSubmit(h, w, state, err)
}

func (h *Handler) handleMaintenanceHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	reports, err := h.deps.Maintenance.History(r.Context(), r.URL.Query().Get("device_id"), limit)
	if err != nil {
		h.logger.Error("Error loading report history", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load report history")
		return
	}
	if reports == nil {
		reports = []models.MaintenanceReport{}
	}
	h.respondJSON(w, http.StatusOK, reports)
}

func (h *Handler) handleConfiguratorState(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.deps.ConfiguratorView.State())
}

func (h *Handler) handleConfiguratorReset(w http.ResponseWriter, r *http.Request) {
	h.deps.ConfiguratorView.Reset()
	h.respondJSON(w, http.StatusOK, h.deps.ConfiguratorView.State())
}

func (h *Handler) handleConfiguratorSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.SolutionRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := h.deps.ConfiguratorView.Submit(r.Context(), func(ctx context.Context) (*models.AutomationSolution, error) {
		return h.deps.Configurator.Configure(ctx, req)
	})
	respondSubmit(h, w, state, err)
}
