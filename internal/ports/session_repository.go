package ports

import (
	"context"

	"github.com/bnema/poolrdp/internal/domain"
)

type SessionRepository interface {
	Last(ctx context.Context) (domain.SessionRecord, error)
	Save(ctx context.Context, record domain.SessionRecord) error
}
