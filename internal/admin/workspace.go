// Package admin implements the owner's product manager: a local copy of
// the full product list, an intake form state machine (manual entry or
// external card search) and the visibility, delete and edit actions. Every
// mutation goes to the catalog first; the local list only changes once the
// catalog call succeeded.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/Lixing-Zhang/hobbyshop/internal/repository"
)

var (
	ErrInvalidMode  = errors.New("invalid intake mode")
	ErrWrongMode    = errors.New("action not available in the current intake mode")
	ErrCardNotFound = errors.New("card is not in the current search results")
)

// Mode is the intake form state
type Mode string

const (
	ModeNone           Mode = "none"
	ModeManual         Mode = "manual"
	ModeExternalSearch Mode = "external-search"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeManual, ModeExternalSearch:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Catalog is the remote product store the workspace writes through
type Catalog interface {
	ListAllProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Authorization is the is-authorized capability handed in by the access
// gate
type Authorization interface {
	Authorized() bool
}

// Confirmer asks the owner to confirm a destructive action
type Confirmer interface {
	Confirm(product models.Product) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(product models.Product) bool

func (f ConfirmFunc) Confirm(product models.Product) bool {
	return f(product)
}

// State is a snapshot of the intake form
type State struct {
	Mode           Mode                 `json:"mode"`
	SearchCategory string               `json:"searchCategory,omitempty"`
	Results        []models.CardSummary `json:"results"`
	Selected       *models.CardSummary  `json:"selected,omitempty"`
	EditTarget     *models.Product      `json:"editTarget,omitempty"`
}

// Workspace is one owner's admin screen
type Workspace struct {
	mu      sync.Mutex
	catalog Catalog
	authz   Authorization
	logger  *slog.Logger

	products       []models.Product
	mode           Mode
	searchCategory string
	results        []models.CardSummary
	selected       *models.CardSummary
	editTarget     *models.Product

	closeOnce sync.Once
	done      chan struct{}
}

// NewWorkspace creates a workspace in ModeNone with an empty product list
func NewWorkspace(catalog Catalog, authz Authorization, logger *slog.Logger) *Workspace {
	return &Workspace{
		catalog: catalog,
		authz:   authz,
		logger:  logger,
		mode:    ModeNone,
		done:    make(chan struct{}),
	}
}

// Close revokes the workspace. Every later operation fails with
// ErrUnauthorized and Done is closed.
func (w *Workspace) Close() {
	w.closeOnce.Do(func() { close(w.done) })
}

// Done is closed once the workspace has been revoked
func (w *Workspace) Done() <-chan struct{} {
	return w.done
}

func (w *Workspace) authorize() error {
	select {
	case <-w.done:
		return apperr.ErrUnauthorized
	default:
	}
	if w.authz == nil || !w.authz.Authorized() {
		return apperr.ErrUnauthorized
	}
	return nil
}

// Load replaces the local list with every product in the catalog. On
// failure the previous list is kept.
func (w *Workspace) Load(ctx context.Context) ([]models.Product, error) {
	if err := w.authorize(); err != nil {
		return nil, err
	}

	products, err := w.catalog.ListAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.products = append([]models.Product(nil), products...)
	return w.productsLocked(), nil
}

// Products returns the local product list
func (w *Workspace) Products() []models.Product {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.productsLocked()
}

func (w *Workspace) productsLocked() []models.Product {
	return append([]models.Product{}, w.products...)
}

// State returns the intake form snapshot
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	state := State{
		Mode:           w.mode,
		SearchCategory: w.searchCategory,
		Results:        append([]models.CardSummary{}, w.results...),
	}
	if w.selected != nil {
		card := *w.selected
		state.Selected = &card
	}
	if w.editTarget != nil {
		product := *w.editTarget
		state.EditTarget = &product
	}
	return state
}

// EnterMode switches the intake form. Any search results and selection
// from the previous mode are dropped.
func (w *Workspace) EnterMode(mode Mode) error {
	if err := w.authorize(); err != nil {
		return err
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.mode = mode
	w.resetSearchLocked()
	return nil
}

// Cancel closes the intake form
func (w *Workspace) Cancel() error {
	return w.EnterMode(ModeNone)
}

func (w *Workspace) resetSearchLocked() {
	w.results = nil
	w.selected = nil
}

// SubmitManual validates the form, creates the product, appends it
// locally and closes the form
func (w *Workspace) SubmitManual(ctx context.Context, form ManualForm) (*models.Product, error) {
	if err := w.authorize(); err != nil {
		return nil, err
	}
	if err := w.requireMode(ModeManual); err != nil {
		return nil, err
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	return w.create(ctx, form.draft())
}

// SubmitExternal creates a product from the selected card
func (w *Workspace) SubmitExternal(ctx context.Context, form ExternalForm) (*models.Product, error) {
	if err := w.authorize(); err != nil {
		return nil, err
	}
	if err := w.requireMode(ModeExternalSearch); err != nil {
		return nil, err
	}

	w.mu.Lock()
	selected := w.selected
	w.mu.Unlock()

	if selected == nil {
		return nil, apperr.NewValidationError("card", "Select a card first")
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	return w.create(ctx, form.draft(*selected))
}

func (w *Workspace) create(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	product, err := w.catalog.CreateProduct(ctx, draft)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.products = append(w.products, *product)
	w.mode = ModeNone
	w.resetSearchLocked()
	return product, nil
}

func (w *Workspace) requireMode(mode Mode) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != mode {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongMode, w.mode, mode)
	}
	return nil
}

// SetSearchCategory records the selected card game. Results and selection
// belong to the previous game and are dropped.
func (w *Workspace) SetSearchCategory(name string) error {
	if err := w.authorize(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if name != w.searchCategory {
		w.searchCategory = name
		w.resetSearchLocked()
	}
	return nil
}

// SetResults replaces the card search results. The selection survives
// only if the selected card is still among them.
func (w *Workspace) SetResults(cards []models.CardSummary) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.results = append([]models.CardSummary(nil), cards...)
	if w.selected != nil && w.indexOfCardLocked(w.selected.ID) < 0 {
		w.selected = nil
	}
}

// SelectCard picks a card from the current results
func (w *Workspace) SelectCard(id string) (*models.CardSummary, error) {
	if err := w.authorize(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOfCardLocked(id)
	if i < 0 {
		return nil, ErrCardNotFound
	}
	card := w.results[i]
	w.selected = &card
	return &card, nil
}

func (w *Workspace) indexOfCardLocked(id string) int {
	for i := range w.results {
		if w.results[i].ID == id {
			return i
		}
	}
	return -1
}

// ToggleVisibility flips the hidden flag of a listed product
func (w *Workspace) ToggleVisibility(ctx context.Context, id string) (*models.Product, error) {
	if err := w.authorize(); err != nil {
		return nil, err
	}

	current, err := w.find(id)
	if err != nil {
		return nil, err
	}

	hidden := !current.Hidden
	updated, err := w.catalog.UpdateProduct(ctx, id, models.ProductPatch{Hidden: &hidden})
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexOfLocked(id); i >= 0 {
		w.products[i] = *updated
	}
	return updated, nil
}

// Delete removes a listed product once the owner confirmed it. A declined
// confirmation returns ErrNotConfirmed and touches nothing.
func (w *Workspace) Delete(ctx context.Context, id string, confirmer Confirmer) error {
	if err := w.authorize(); err != nil {
		return err
	}

	product, err := w.find(id)
	if err != nil {
		return err
	}
	if confirmer == nil || !confirmer.Confirm(product) {
		return apperr.ErrNotConfirmed
	}

	if err := w.catalog.DeleteProduct(ctx, id); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexOfLocked(id); i >= 0 {
		w.products = append(w.products[:i], w.products[i+1:]...)
	}
	if w.editTarget != nil && w.editTarget.ID == id {
		w.editTarget = nil
	}
	return nil
}

// Edit marks a product as the edit target. There is no edit form yet.
func (w *Workspace) Edit(id string) (*models.Product, error) {
	if err := w.authorize(); err != nil {
		return nil, err
	}

	product, err := w.find(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.editTarget = &product
	w.logger.Info("product edit requested", "productId", id)
	return &product, nil
}

func (w *Workspace) find(id string) (models.Product, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOfLocked(id)
	if i < 0 {
		return models.Product{}, repository.ErrProductNotFound
	}
	return w.products[i], nil
}

func (w *Workspace) indexOfLocked(id string) int {
	for i := range w.products {
		if w.products[i].ID == id {
			return i
		}
	}
	return -1
}
