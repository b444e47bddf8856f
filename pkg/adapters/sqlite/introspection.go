package sqlite

import (
	"time"

	"github.com/aretw0/introspection"
)

// GatewayState exposes internal state for observability.
type GatewayState struct {
	Path          string     `json:"path"`
	SchemaVersion int        `json:"schema_version"`
	Stores        []string   `json:"stores"`
	Open          bool       `json:"open"`
	ReadOnly      bool       `json:"read_only"`
	WatcherActive bool       `json:"watcher_active"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (g *Gateway) State() any {
	stores := g.Stores()

	g.mu.RLock()
	defer g.mu.RUnlock()

	return GatewayState{
		Path:          g.config.Path,
		SchemaVersion: g.version,
		Stores:        stores,
		Open:          g.db != nil,
		ReadOnly:      g.config.ReadOnly,
		WatcherActive: g.watcherActive,
		LastEvent:     g.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (g *Gateway) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Gateway)(nil)
var _ introspection.Component = (*Gateway)(nil)

func (g *Gateway) setWatcherActive(active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.watcherActive = active
}

func (g *Gateway) recordEvent() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	g.lastEvent = &now
}
