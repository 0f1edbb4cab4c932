package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/gatekeeper"
	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/router"
)

// Handler serves the gatekeeper endpoints.
type Handler struct {
	gk  Brain
	rt  *router.Router
	log *zap.Logger
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type feedbackRequest struct {
	SessionID string        `json:"session_id"`
	Verdict   model.Verdict `json:"verdict"`
	Reply     string        `json:"reply"`
}

type learnRequest struct {
	Phrase   string         `json:"phrase"`
	Category model.Category `json:"category"`
	Reply    string         `json:"reply"`
}

type learnResponse struct {
	Phrase    string         `json:"phrase"`
	Category  model.Category `json:"category"`
	Persisted bool           `json:"persisted"`
}

type healthResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.gk.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting", Key: h.gk.Key()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Key: h.gk.Key()})
}

// Ask handles POST /ask. A request without session_id starts a new session
// whose ID is returned in the reply.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	writeJSON(w, http.StatusOK, h.rt.Route(r.Context(), req.SessionID, req.Query))
}

// Feedback handles POST /feedback
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	res, err := h.rt.Feedback(r.Context(), req.SessionID, req.Verdict, req.Reply)
	switch {
	case errors.Is(err, router.ErrNoTurn):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, router.ErrInvalidVerdict):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// Classify handles GET /classify?q=
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gk.Explain(r.URL.Query().Get("q")))
}

// Stats handles GET /brain
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gk.Stats())
}

// Memory handles GET /brain/memory
func (h *Handler) Memory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := gatekeeper.MemoryParams{
		Category: model.Category(q.Get("category")),
		Source:   model.Source(q.Get("source")),
	}
	if p.Category != "" && !p.Category.Valid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	if p.Source != "" && !model.ValidSources[p.Source] {
		writeError(w, http.StatusBadRequest, "invalid source")
		return
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		p.Limit = n
	}

	records := h.gk.History(p)
	if records == nil {
		records = []model.MemoryRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Learn handles POST /brain/learn
func (h *Handler) Learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.gk.Learn(r.Context(), req.Phrase, req.Category, req.Reply, model.SourceManual)
	switch {
	case errors.Is(err, gatekeeper.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, gatekeeper.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, gatekeeper.ErrPersist):
		h.log.Warn("learned without saving", zap.String("request_id", GetRequestID(r)), zap.Error(err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, learnResponse{
		Phrase:    req.Phrase,
		Category:  req.Category,
		Persisted: err == nil,
	})
}
