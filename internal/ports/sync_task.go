package ports

import (
	"context"

	"github.com/bnema/poolrdp/internal/domain"
)

// SyncTask runs next to acquisition and must finish before the connect
// decision is made.
type SyncTask interface {
	Sync(ctx context.Context, req domain.SessionRequest) error
}
