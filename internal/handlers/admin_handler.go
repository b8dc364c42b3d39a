package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/hobbyshop/internal/admin"
	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/auth"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/Lixing-Zhang/hobbyshop/internal/tcg"
	"github.com/go-chi/chi/v5"
)

// ConfirmDeleteHeader must be "true" for a delete to go ahead
const ConfirmDeleteHeader = "X-Confirm-Delete"

// WorkspaceProvider hands out the admin workspace of a session
type WorkspaceProvider interface {
	For(key string, authz admin.Authorization) *admin.Workspace
}

// AdminHandler serves the owner's product manager. Every route expects
// the session put in the context by middleware.RequireAdmin.
type AdminHandler struct {
	workspaces WorkspaceProvider
	cards      *tcg.Catalog
	searcher   tcg.Searcher
	logger     *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(workspaces WorkspaceProvider, cards *tcg.Catalog, searcher tcg.Searcher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		workspaces: workspaces,
		cards:      cards,
		searcher:   searcher,
		logger:     logger,
	}
}

func (h *AdminHandler) workspace(r *http.Request) (*admin.Workspace, error) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return h.workspaces.For(session.Token, session), nil
}

// requireWorkspace resolves the workspace or writes 401
func (h *AdminHandler) requireWorkspace(w http.ResponseWriter, r *http.Request) (*admin.Workspace, bool) {
	ws, err := h.workspace(r)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return nil, false
	}
	return ws, true
}

// ListProducts handles GET /api/admin/products
// Reloads every product, hidden ones included
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	products, err := ws.Load(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, products, h.logger)
}

// ExportProducts handles GET /api/admin/products/export
func (h *AdminHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	products, err := ws.Load(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if err := admin.ExportProducts(&buf, products); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", admin.ExportContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=products.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write export", "error", err)
	}
}

// GetIntake handles GET /api/admin/intake
func (h *AdminHandler) GetIntake(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, ws.State(), h.logger)
}

// SetIntakeRequest is the body of PUT /api/admin/intake
type SetIntakeRequest struct {
	Mode string `json:"mode"`
}

// SetIntake handles PUT /api/admin/intake
func (h *AdminHandler) SetIntake(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	var req SetIntakeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	mode, err := admin.ParseMode(req.Mode)
	if err == nil {
		err = ws.EnterMode(mode)
	}
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, ws.State(), h.logger)
}

// CreateManual handles POST /api/admin/products/manual
func (h *AdminHandler) CreateManual(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	var form admin.ManualForm
	if err := decodeJSON(w, r, &form); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	product, err := ws.SubmitManual(r.Context(), form)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// CreateExternal handles POST /api/admin/products/external
func (h *AdminHandler) CreateExternal(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	var form admin.ExternalForm
	if err := decodeJSON(w, r, &form); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	product, err := ws.SubmitExternal(r.Context(), form)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// ToggleVisibility handles PATCH /api/admin/products/{id}/visibility
func (h *AdminHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	product, err := ws.ToggleVisibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, product, h.logger)
}

// DeleteProduct handles DELETE /api/admin/products/{id}
// Nothing happens unless the request carries X-Confirm-Delete: true
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	confirmed := strings.EqualFold(r.Header.Get(ConfirmDeleteHeader), "true")
	confirm := admin.ConfirmFunc(func(models.Product) bool { return confirmed })

	if err := ws.Delete(r.Context(), chi.URLParam(r, "id"), confirm); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditProduct handles POST /api/admin/products/{id}/edit
// Only records the edit target
func (h *AdminHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	product, err := ws.Edit(chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusAccepted, product, h.logger)
}

// CardCategory is one searchable game as listed to the admin
type CardCategory struct {
	Name       string `json:"name"`
	ComingSoon bool   `json:"comingSoon"`
}

// ListCardCategories handles GET /api/admin/tcg/categories
func (h *AdminHandler) ListCardCategories(w http.ResponseWriter, r *http.Request) {
	endpoints := h.cards.Endpoints()
	categories := make([]CardCategory, 0, len(endpoints))
	for _, e := range endpoints {
		categories = append(categories, CardCategory{Name: e.Name, ComingSoon: e.ComingSoon()})
	}
	WriteJSON(w, http.StatusOK, categories, h.logger)
}

// SetCardCategoryRequest is the body of PUT /api/admin/tcg/category
type SetCardCategoryRequest struct {
	Category string `json:"category"`
}

// SetCardCategory handles PUT /api/admin/tcg/category
// Results and selection are reset
func (h *AdminHandler) SetCardCategory(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	var req SetCardCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	endpoint, err := h.cards.Lookup(req.Category)
	if err == nil {
		err = ws.SetSearchCategory(endpoint.Name)
	}
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, ws.State(), h.logger)
}

// SearchCards handles GET /api/admin/tcg/search?q=&byId=&category=
// Runs the search immediately. The WebSocket route is the debounced one.
func (h *AdminHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	name := query.Get("category")
	if name == "" {
		name = ws.State().SearchCategory
	}
	endpoint := h.cards.Default()
	if name != "" {
		var err error
		if endpoint, err = h.cards.Lookup(name); err != nil {
			WriteServiceError(w, err, h.logger)
			return
		}
	}
	if err := ws.SetSearchCategory(endpoint.Name); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	byID, _ := strconv.ParseBool(query.Get("byId"))
	cards, err := h.searcher.Search(r.Context(), endpoint, tcg.Query{Text: query.Get("q"), ByID: byID})
	if errors.Is(err, tcg.ErrEmptyQuery) {
		cards, err = []models.CardSummary{}, nil
	}
	if err != nil {
		ws.SetResults(nil)
		WriteServiceError(w, err, h.logger)
		return
	}

	ws.SetResults(cards)
	WriteJSON(w, http.StatusOK, cards, h.logger)
}

// SelectCardRequest is the body of POST /api/admin/tcg/select
type SelectCardRequest struct {
	CardID string `json:"cardId"`
}

// SelectCard handles POST /api/admin/tcg/select
func (h *AdminHandler) SelectCard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.requireWorkspace(w, r)
	if !ok {
		return
	}

	var req SelectCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	card, err := ws.SelectCard(req.CardID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, card, h.logger)
}
