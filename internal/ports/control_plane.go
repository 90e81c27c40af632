package ports

import (
	"context"

	"github.com/bnema/poolrdp/internal/domain"
)

// ControlPlane opens authenticated sessions against the virtualization
// control plane. Authenticate must wrap domain.ErrBadCredentials when the
// control plane rejects the credentials and domain.ErrControlPlane for any
// other failure.
type ControlPlane interface {
	Authenticate(ctx context.Context, username, password string) (PoolSession, error)
}

type PoolSession interface {
	ListMembers(ctx context.Context, poolName string) ([]domain.PoolMember, error)
	Allocate(ctx context.Context, poolName string) error
	Start(ctx context.Context, id domain.MemberID) error
	Close() error
}
