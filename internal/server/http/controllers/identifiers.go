package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/samber/lo"

	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
	"github.com/rzbill/cuidd/pkg/cuid"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// IdentifiersController exposes minting, inspection and listing.
type IdentifiersController struct {
	svc    *identifiersvc.Service
	logger logpkg.Logger
}

// NewIdentifiersController creates a new identifiers controller.
func NewIdentifiersController(svc *identifiersvc.Service, logger logpkg.Logger) *IdentifiersController {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	return &IdentifiersController{svc: svc, logger: logger}
}

// RegisterRoutes registers identifier routes with the given mux.
func (c *IdentifiersController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ids/mint", c.handleMint)
	mux.HandleFunc("/v1/ids/generate", c.handleGenerate)
	mux.HandleFunc("/v1/ids/inspect", c.handleInspect)
	mux.HandleFunc("/v1/ids/list", c.handleList)
	mux.HandleFunc("/v1/ids/revoke", c.handleRevoke)
	mux.HandleFunc("/v1/events", c.handleEvents)
}

// handleMint records new identifiers. Returns 201 with the records.
func (c *IdentifiersController) handleMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req mintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	recs, err := c.svc.Mint(r.Context(), identifiersvc.MintRequest{Kind: req.Kind, Count: req.Count, Label: req.Label})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mintResp{IDs: recs})
}

// handleGenerate returns identifiers without recording them.
func (c *IdentifiersController) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	count, ok := parseInt(r.URL.Query().Get("count"))
	if !ok {
		writeError(w, http.StatusBadRequest, "count must be an integer")
		return
	}
	ids, err := c.svc.Generate(r.Context(), count)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResp{IDs: lo.Map(ids, func(id cuid.ID, _ int) string { return id.String() })})
}

// handleInspect decodes ?id= and reports whether it was issued here.
func (c *IdentifiersController) handleInspect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	info, err := c.svc.Inspect(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleList pages through recorded identifiers.
//
// Query: kind, after, limit, reverse, filter (CEL).
func (c *IdentifiersController) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	q := r.URL.Query()
	limit, ok := parseInt(q.Get("limit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	res, err := c.svc.List(r.Context(), identifiersvc.ListRequest{
		Kind:    q.Get("kind"),
		After:   q.Get("after"),
		Limit:   limit,
		Reverse: parseBool(q.Get("reverse")),
		Filter:  q.Get("filter"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRevoke deletes ?id= from the ledger. Returns 204.
func (c *IdentifiersController) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if err := c.svc.Revoke(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	c.logger.Info("identifier revoked over http", logpkg.Str("id", id))
	writeNoContent(w)
}

// handleEvents pages through the mint/revoke audit trail.
//
// Query: after (sequence), limit, reverse, wait_ms (long poll).
func (c *IdentifiersController) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	q := r.URL.Query()
	after, ok := parseUint(q.Get("after"))
	if !ok {
		writeError(w, http.StatusBadRequest, "after must be a sequence number")
		return
	}
	limit, ok := parseInt(q.Get("limit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	waitMs, ok := parseInt(q.Get("wait_ms"))
	if !ok {
		writeError(w, http.StatusBadRequest, "wait_ms must be an integer")
		return
	}
	res, err := c.svc.Events(r.Context(), identifiersvc.EventsRequest{
		After:   after,
		Limit:   limit,
		Reverse: parseBool(q.Get("reverse")),
		WaitMs:  waitMs,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
