package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ashureev/shotcoach/internal/assess"
	"github.com/go-chi/chi/v5"
)

// AssessmentHandler exposes the assess operation and the auxiliary session
// endpoints. It only sees the Assessor interface, so the in-process service
// and the subprocess bridge relay are interchangeable behind it.
type AssessmentHandler struct {
	assessor    assess.Assessor
	maxBodySize int64
}

// NewAssessmentHandler creates the handler.
func NewAssessmentHandler(assessor assess.Assessor, maxBodySize int64) *AssessmentHandler {
	if maxBodySize <= 0 {
		maxBodySize = 16 << 20
	}
	return &AssessmentHandler{assessor: assessor, maxBodySize: maxBodySize}
}

// RegisterRoutes registers assessment routes.
func (h *AssessmentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/assess", h.HandleAssess)
		r.Get("/shoots/{shootID}/rooms/{roomType}", h.HandleSnapshot)
		r.Delete("/shoots/{shootID}", h.HandleDeleteShoot)
	})
}

// HandleAssess handles POST /api/assess.
func (h *AssessmentHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req assess.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.assessor.Assess(r.Context(), req)
	if err != nil {
		h.writeAssessError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

// HandleSnapshot handles GET /api/shoots/{shootID}/rooms/{roomType}.
func (h *AssessmentHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	shootID := pathParam(r, "shootID")
	roomType := pathParam(r, "roomType")
	if shootID == "" || roomType == "" {
		Error(w, http.StatusBadRequest, "shoot ID and room type are required")
		return
	}

	sess, err := h.assessor.Snapshot(r.Context(), shootID, roomType)
	if err != nil {
		h.writeAssessError(w, r, err)
		return
	}
	if sess == nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	JSON(w, http.StatusOK, sess)
}

// HandleDeleteShoot handles DELETE /api/shoots/{shootID}.
func (h *AssessmentHandler) HandleDeleteShoot(w http.ResponseWriter, r *http.Request) {
	shootID := pathParam(r, "shootID")
	if shootID == "" {
		Error(w, http.StatusBadRequest, "shoot ID is required")
		return
	}

	removed, err := h.assessor.DeleteShoot(r.Context(), shootID)
	if err != nil {
		h.writeAssessError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, map[string]int64{"deleted": removed})
}

// writeAssessError maps orchestration error kinds to HTTP statuses.
// Upstream detail goes to the log, not the client.
func (h *AssessmentHandler) writeAssessError(w http.ResponseWriter, r *http.Request, err error) {
	kind := assess.KindOf(err)
	switch kind {
	case assess.KindValidation:
		Error(w, http.StatusBadRequest, assess.MessageOf(err))
	case assess.KindTimeout, assess.KindUpstream, assess.KindTransport:
		slog.Error("Assessment failed", "kind", string(kind), "error", err, "path", r.URL.Path)
		Error(w, http.StatusBadGateway, "assessment temporarily unavailable")
	default:
		slog.Error("Assessment failed", "kind", string(kind), "error", err, "path", r.URL.Path)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

// pathParam returns a URL parameter with percent-escapes decoded, so shoot
// IDs and room types with reserved characters round-trip through the path.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
