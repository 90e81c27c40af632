package ports

import (
	"context"

	"github.com/bnema/poolrdp/internal/domain"
)

// Desktop is the process-level surface of the local machine: shared drive
// mapping, host-scoped credential registration and the remote-desktop client.
type Desktop interface {
	MapShare(ctx context.Context, drive, folder string) error
	UnmapShare(ctx context.Context, drive string) error
	RegisterCredential(ctx context.Context, scope domain.CredentialScope) error
	UnregisterCredential(ctx context.Context, endpointFQDN string) error
	// RunClient blocks until the user closes the client.
	RunClient(ctx context.Context, profilePath string) error
}
