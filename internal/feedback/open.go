package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/ra-risk-server/internal/domain"
)

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg domain.FeedbackConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return Disabled{}, nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStoreFromURL(ctx, cfg.DatabaseURL, int(cfg.MaxConns))
	default:
		return nil, fmt.Errorf("unknown feedback backend %q", cfg.Backend)
	}
}
