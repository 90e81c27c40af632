package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/poolrdp/internal/domain"
	portmocks "github.com/bnema/poolrdp/internal/ports/mocks"
	"github.com/cenkalti/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testProfile = domain.SessionProfile{
		EndpointFQDN:     "vm17.internal.example.com",
		SharedResourceID: "Z:",
		DocumentPath:     "/tmp/poolrdp/session.rdp",
	}
	testScope = domain.CredentialScope{
		EndpointFQDN: "vm17.internal.example.com",
		Username:     "alice",
		Password:     "secret",
	}
)

func newTestLaunchService(desktop *portmocks.MockDesktop) *LaunchService {
	svc := NewLaunchService(desktop, LaunchConfig{Drive: "Z:", Folder: "/srv/shared"}, nil)
	svc.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}
	return svc
}

func TestLaunchRunsStepsInOrder(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	mock.InOrder(
		desktop.EXPECT().MapShare(mock.Anything, "Z:", "/srv/shared").Return(nil).Once(),
		desktop.EXPECT().RegisterCredential(mock.Anything, testScope).Return(nil).Once(),
		desktop.EXPECT().RunClient(mock.Anything, "/tmp/poolrdp/session.rdp").Return(nil).Once(),
		desktop.EXPECT().UnregisterCredential(mock.Anything, "vm17.internal.example.com").Return(nil).Once(),
		desktop.EXPECT().UnmapShare(mock.Anything, "Z:").Return(nil).Once(),
	)

	result := newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)

	require.NoError(t, result.Err())
}

func TestLaunchCleansUpWhenClientFails(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, "Z:", "/srv/shared").Return(nil).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, testScope).Return(nil).Once()
	desktop.EXPECT().RunClient(mock.Anything, mock.Anything).Return(errors.New("exit status 1")).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, "vm17.internal.example.com").Return(nil).Once()
	desktop.EXPECT().UnmapShare(mock.Anything, "Z:").Return(nil).Once()

	result := newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)

	assert.True(t, result.Failed(domain.StepRunClient))
	assert.False(t, result.Failed(domain.StepUnregisterCredential))
	assert.False(t, result.Failed(domain.StepUnmapShare))
	assert.ErrorContains(t, result.Err(), "exit status 1")
}

func TestLaunchCleansUpWhenClientPanics(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RunClient(mock.Anything, mock.Anything).Run(func(context.Context, string) {
		panic("client crashed")
	}).Return(nil).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, "vm17.internal.example.com").Return(nil).Once()
	desktop.EXPECT().UnmapShare(mock.Anything, "Z:").Return(nil).Once()

	var result domain.LaunchResult
	require.NotPanics(t, func() {
		result = newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)
	})

	assert.True(t, result.Failed(domain.StepRunClient))
	assert.ErrorContains(t, result.Err(), "client crashed")
}

func TestLaunchContinuesPastFailedAcquireSteps(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("drive in use")).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, mock.Anything).Return(errors.New("cmdkey failed")).Once()
	desktop.EXPECT().RunClient(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnmapShare(mock.Anything, mock.Anything).Return(nil).Once()

	result := newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)

	assert.True(t, result.Failed(domain.StepMapShare))
	assert.True(t, result.Failed(domain.StepRegisterCredential))
	assert.False(t, result.Failed(domain.StepRunClient))
}

func TestLaunchSkipsClientWhenCancelledButStillCleansUp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnmapShare(mock.Anything, mock.Anything).Return(nil).Once()

	result := newTestLaunchService(desktop).Launch(ctx, testProfile, testScope)

	assert.True(t, result.Failed(domain.StepRunClient))
	assert.ErrorIs(t, result.StepErrors[domain.StepRunClient], context.Canceled)
	desktop.AssertNotCalled(t, "RunClient", mock.Anything, mock.Anything)
}

func TestLaunchRetriesCleanup(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RunClient(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, mock.Anything).Return(errors.New("element not found")).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnmapShare(mock.Anything, mock.Anything).Return(nil).Once()

	result := newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)

	require.NoError(t, result.Err())
}

func TestLaunchUnmapsEvenWhenUnregisterKeepsFailing(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RunClient(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, mock.Anything).Return(errors.New("access denied")).Times(3)
	desktop.EXPECT().UnmapShare(mock.Anything, "Z:").Return(nil).Once()

	result := newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)

	assert.True(t, result.Failed(domain.StepUnregisterCredential))
	assert.ErrorContains(t, result.StepErrors[domain.StepUnregisterCredential], "after 3 attempts")
	assert.False(t, result.Failed(domain.StepUnmapShare))
}

func TestLaunchDoesNotRetryMissingBinary(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().RunClient(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, mock.Anything).
		Return(fmt.Errorf("cmdkey: %w", domain.ErrToolUnavailable)).Once()
	desktop.EXPECT().UnmapShare(mock.Anything, mock.Anything).Return(nil).Once()

	result := newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)

	assert.ErrorIs(t, result.StepErrors[domain.StepUnregisterCredential], domain.ErrToolUnavailable)
	assert.ErrorContains(t, result.StepErrors[domain.StepUnregisterCredential], "after 1 attempts")
}

func TestLaunchReleasesFailedAcquireStepsOnce(t *testing.T) {
	desktop := portmocks.NewMockDesktop(t)
	desktop.EXPECT().MapShare(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("drive in use")).Once()
	desktop.EXPECT().RegisterCredential(mock.Anything, mock.Anything).Return(errors.New("cmdkey failed")).Once()
	desktop.EXPECT().RunClient(mock.Anything, mock.Anything).Return(nil).Once()
	desktop.EXPECT().UnregisterCredential(mock.Anything, mock.Anything).Return(errors.New("element not found")).Once()
	desktop.EXPECT().UnmapShare(mock.Anything, mock.Anything).Return(errors.New("network connection could not be found")).Once()

	result := newTestLaunchService(desktop).Launch(context.Background(), testProfile, testScope)

	assert.ErrorContains(t, result.StepErrors[domain.StepUnregisterCredential], "after 1 attempts")
	assert.ErrorContains(t, result.StepErrors[domain.StepUnmapShare], "after 1 attempts")
}
