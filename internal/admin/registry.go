package admin

import (
	"log/slog"
	"sync"
)

// Workspaces keeps one Workspace per owner session. Entries live until
// Discard; sessions that never log out keep theirs for the process lifetime.
type Workspaces struct {
	mu      sync.Mutex
	catalog Catalog
	logger  *slog.Logger
	byKey   map[string]*Workspace
}

// NewWorkspaces creates an empty registry
func NewWorkspaces(catalog Catalog, logger *slog.Logger) *Workspaces {
	return &Workspaces{
		catalog: catalog,
		logger:  logger,
		byKey:   make(map[string]*Workspace),
	}
}

// For returns the workspace for key, creating it on first use. authz is
// bound at creation.
func (r *Workspaces) For(key string, authz Authorization) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.byKey[key]; ok {
		return ws
	}
	ws := NewWorkspace(r.catalog, authz, r.logger)
	r.byKey[key] = ws
	return ws
}

// Discard forgets the workspace for key and closes it, which ends any
// search socket still bound to it
func (r *Workspaces) Discard(key string) {
	r.mu.Lock()
	ws, ok := r.byKey[key]
	delete(r.byKey, key)
	r.mu.Unlock()

	if ok {
		ws.Close()
	}
}

// Len returns the number of live workspaces
func (r *Workspaces) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byKey)
}
