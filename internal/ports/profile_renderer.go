package ports

import (
	"context"

	"github.com/bnema/poolrdp/internal/domain"
)

type ProfileRenderer interface {
	Render(ctx context.Context, endpointFQDN, sharedResourceID string) (domain.SessionProfile, error)
	Load(ctx context.Context) (domain.SessionProfile, error)
}
