package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/deploysched/deploysched/config"
	"github.com/deploysched/deploysched/internal/domain/model"
	"github.com/deploysched/deploysched/internal/mocks"
)

func newTestHistoryReaper(t *testing.T, repo *mocks.MockJobExecutionRepository) *HistoryReaperService {
	t.Helper()
	svc, err := NewHistoryReaperService(HistoryReaperServiceOptions{
		Repo: repo,
		Config: config.HistoryReaperConfig{
			Interval:  time.Hour,
			MaxAge:    48 * time.Hour,
			BatchSize: 100,
		},
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return svcTestNow }
	return svc
}

func TestNewHistoryReaperService_Validation(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobExecutionRepository(ctrl)

	_, err := NewHistoryReaperService(HistoryReaperServiceOptions{})
	require.Error(t, err)

	_, err = NewHistoryReaperService(HistoryReaperServiceOptions{
		Repo:   repo,
		Config: config.HistoryReaperConfig{Interval: time.Minute},
	})
	require.ErrorContains(t, err, "batch size")
}

func TestHistoryReaper_RunOnceDrainsBatches(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockJobExecutionRepository(ctrl)
	ctx := context.Background()

	want := model.PruneExecutionsParams{Before: svcTestNow.Add(-48 * time.Hour), BatchSize: 100}
	gomock.InOrder(
		repo.EXPECT().DeleteOlderThan(ctx, want).Return(int64(100), nil),
		repo.EXPECT().DeleteOlderThan(ctx, want).Return(int64(100), nil),
		repo.EXPECT().DeleteOlderThan(ctx, want).Return(int64(7), nil),
	)

	total, err := newTestHistoryReaper(t, repo).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(207), total)
}

func TestHistoryReaper_RunOnceError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockJobExecutionRepository(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		repo.EXPECT().DeleteOlderThan(ctx, gomock.Any()).Return(int64(100), nil),
		repo.EXPECT().DeleteOlderThan(ctx, gomock.Any()).Return(int64(0), errors.New("lock timeout")),
	)

	total, err := newTestHistoryReaper(t, repo).RunOnce(ctx)
	require.ErrorContains(t, err, "lock timeout")
	assert.Equal(t, int64(100), total)
}

func TestHistoryReaper_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockJobExecutionRepository(ctrl)
	repo.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	svc := newTestHistoryReaper(t, repo)
	svc.config.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}

func TestIsContextCancellation(t *testing.T) {
	t.Parallel()
	assert.False(t, isContextCancellation(nil))
	assert.True(t, isContextCancellation(context.Canceled))
	assert.True(t, isContextCancellation(errors.Join(errors.New("x"), context.DeadlineExceeded)))
	assert.False(t, isContextCancellation(errors.New("x")))
}
