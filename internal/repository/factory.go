package repository

import (
	"fmt"

	"github.com/circadia-app/circadia/backend/internal/config"
	"github.com/circadia-app/circadia/backend/pkg/supabase"
)

// Repositories bundles the store access layers behind one construction point.
type Repositories struct {
	Events   EventRepository
	Insights InsightRepository

	closer func() error
}

// Close releases store resources, if the driver holds any.
func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// New builds the repositories for the configured store driver.
// The supabase client may be nil for the sqlite driver.
func New(cfg *config.Config, client *supabase.Client) (*Repositories, error) {
	switch cfg.Store.Driver {
	case "supabase":
		if client == nil {
			return nil, fmt.Errorf("supabase driver requires a client")
		}
		return &Repositories{
			Events:   NewEventRepository(client),
			Insights: NewInsightRepository(client),
		}, nil
	case "sqlite":
		store, err := OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Events:   store,
			Insights: &sqliteInsightRepository{store: store},
			closer:   store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
