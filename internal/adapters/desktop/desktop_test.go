package desktop

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	name string
	args []string
}

func newRecordingDesktop(commands Commands, fail map[string]error) (*Desktop, *[]recordedCall) {
	calls := &[]recordedCall{}
	d := NewDesktop(commands, nil)
	d.run = func(_ context.Context, name string, args ...string) (string, string, error) {
		*calls = append(*calls, recordedCall{name: name, args: args})
		if err := fail[name]; err != nil {
			return "", "access denied", err
		}
		return "", "", nil
	}
	return d, calls
}

func windowsCommands() Commands {
	return Commands{
		MapShare:             []string{"subst", "{{.Drive}}", "{{.Folder}}"},
		UnmapShare:           []string{"subst", "{{.Drive}}", "/d"},
		RegisterCredential:   []string{"cmdkey", "/add:{{.Endpoint}}", "/user:{{.Username}}", "/pass:{{.Password}}"},
		UnregisterCredential: []string{"cmdkey", "/delete:{{.Endpoint}}"},
		RunClient:            []string{"mstsc", "{{.Profile}}"},
	}
}

func TestDesktopExpandsEveryOperation(t *testing.T) {
	t.Parallel()

	d, calls := newRecordingDesktop(windowsCommands(), nil)
	ctx := context.Background()

	require.NoError(t, d.MapShare(ctx, "Z:", `C:\Users\alice\shared`))
	require.NoError(t, d.RegisterCredential(ctx, domain.CredentialScope{EndpointFQDN: "vm1.internal.example.com", Username: "alice", Password: "s3cret"}))
	require.NoError(t, d.RunClient(ctx, `C:\Users\alice\session.rdp`))
	require.NoError(t, d.UnregisterCredential(ctx, "vm1.internal.example.com"))
	require.NoError(t, d.UnmapShare(ctx, "Z:"))

	assert.Equal(t, []recordedCall{
		{name: "subst", args: []string{"Z:", `C:\Users\alice\shared`}},
		{name: "cmdkey", args: []string{"/add:vm1.internal.example.com", "/user:alice", "/pass:s3cret"}},
		{name: "mstsc", args: []string{`C:\Users\alice\session.rdp`}},
		{name: "cmdkey", args: []string{"/delete:vm1.internal.example.com"}},
		{name: "subst", args: []string{"Z:", "/d"}},
	}, *calls)
}

func TestDesktopSkipsUnconfiguredOperations(t *testing.T) {
	t.Parallel()

	d, calls := newRecordingDesktop(Commands{RunClient: []string{"xfreerdp", "{{.Profile}}"}}, nil)
	ctx := context.Background()

	require.NoError(t, d.MapShare(ctx, "Z:", "/srv/shared"))
	require.NoError(t, d.RegisterCredential(ctx, domain.CredentialScope{EndpointFQDN: "vm1"}))
	require.NoError(t, d.RunClient(ctx, "/tmp/session.rdp"))

	assert.Equal(t, []recordedCall{{name: "xfreerdp", args: []string{"/tmp/session.rdp"}}}, *calls)
}

func TestDesktopReportsStderr(t *testing.T) {
	t.Parallel()

	d, _ := newRecordingDesktop(windowsCommands(), map[string]error{"subst": errors.New("exit status 1")})

	err := d.MapShare(context.Background(), "Z:", "/srv/shared")
	require.Error(t, err)
	assert.ErrorContains(t, err, "map share (subst)")
	assert.ErrorContains(t, err, "access denied")
}
