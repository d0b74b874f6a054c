package thresholds

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mfreeman451/fleetradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func defaults() models.EvaluationSettings {
	return models.EvaluationSettings{
		Thresholds: models.DefaultThresholds(),
		Groups:     models.DefaultGroupSettings(),
	}
}

func newTestStore(t *testing.T) (*Store, *MemoryRepository) {
	t.Helper()

	repo := NewMemoryRepository()

	store, err := NewStore(context.Background(), repo, defaults(), zap.NewNop())
	require.NoError(t, err)

	return store, repo
}

func intPtr(v int) *int { return &v }

func TestNewStore_SeedsDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	_, err := NewStore(ctx, repo, defaults(), zap.NewNop())
	require.NoError(t, err)

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current.Thresholds.Version)
	assert.Equal(t, models.DefaultCheckInHours, current.Thresholds.CheckInHours)
	assert.Equal(t, models.DefaultComplianceGroup, current.Groups.ComplianceGroup)

	history, err := store.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestNewStore_RejectsInvalidDefaults(t *testing.T) {
	d := defaults()
	d.Thresholds.PendingCommandHours = 100

	_, err := NewStore(context.Background(), NewMemoryRepository(), d, nil)

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "pending_command_hours", vErr.Field)
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		update models.ThresholdsUpdate
		field  string
	}{
		{name: "zero_check_in", update: models.ThresholdsUpdate{CheckInHours: intPtr(0)}, field: "check_in_hours"},
		{name: "negative_recon", update: models.ThresholdsUpdate{ReconHours: intPtr(-1)}, field: "recon_hours"},
		{name: "check_in_above_week", update: models.ThresholdsUpdate{CheckInHours: intPtr(169)}, field: "check_in_hours"},
		{
			name:   "pending_above_three_days",
			update: models.ThresholdsUpdate{PendingCommandHours: intPtr(73)},
			field:  "pending_command_hours",
		},
		{
			name:   "second_field_invalid",
			update: models.ThresholdsUpdate{CheckInHours: intPtr(12), ReconHours: intPtr(0)},
			field:  "recon_hours",
		},
		{name: "empty", update: models.ThresholdsUpdate{}, field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, _ := newTestStore(t)

			_, err := store.Update(ctx, tt.update)
			require.ErrorIs(t, err, models.ErrValidation)

			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)

			history, err := store.History(ctx, 10)
			require.NoError(t, err)
			assert.Len(t, history, 1, "rejected update must not write a version")
		})
	}
}

func TestUpdate_KeepsHistory(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	before, err := store.Thresholds(ctx)
	require.NoError(t, err)

	updated, err := store.Update(ctx, models.ThresholdsUpdate{CheckInHours: intPtr(48)})
	require.NoError(t, err)
	assert.Equal(t, 48, updated.CheckInHours)
	assert.Equal(t, models.DefaultReconHours, updated.ReconHours)
	assert.Equal(t, before.Version+1, updated.Version)

	current, err := store.Thresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 48, current.CheckInHours)

	history, err := store.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 48, history[0].CheckInHours)
	assert.Equal(t, models.DefaultCheckInHours, history[1].CheckInHours)
	assert.False(t, history[1].EffectiveAt.IsZero())
	assert.False(t, history[1].EffectiveAt.After(history[0].EffectiveAt))
}

func TestUpdate_ConcurrentWritersAllLand(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	const writers = 20

	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func(hours int) {
			defer wg.Done()

			_, err := store.Update(ctx, models.ThresholdsUpdate{ReconHours: intPtr(hours)})
			assert.NoError(t, err)
		}(i + 1)
	}

	wg.Wait()

	history, err := store.History(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, history, writers+1)

	current, err := store.Thresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(writers+1), current.Version)
	assert.Equal(t, history[0], current)
}

func TestUpdateGroups(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	monitored := []string{" Finance ", "Executives", "Finance"}

	updated, err := store.UpdateGroups(ctx, models.GroupSettingsUpdate{MonitoredGroups: &monitored})
	require.NoError(t, err)
	assert.Equal(t, []string{"Executives", "Finance"}, updated.MonitoredGroups)
	assert.Equal(t, models.DefaultComplianceGroup, updated.ComplianceGroup)

	thresholdsBefore, err := store.Thresholds(ctx)
	require.NoError(t, err)

	compliance := "Baseline"

	updated, err = store.UpdateGroups(ctx, models.GroupSettingsUpdate{ComplianceGroup: &compliance})
	require.NoError(t, err)
	assert.Equal(t, "Baseline", updated.ComplianceGroup)
	assert.Equal(t, []string{"Executives", "Finance"}, updated.MonitoredGroups)

	thresholdsAfter, err := store.Thresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, thresholdsBefore.Version, thresholdsAfter.Version)
}

func TestUpdateGroups_Validation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	blank := "  "
	_, err := store.UpdateGroups(ctx, models.GroupSettingsUpdate{ComplianceGroup: &blank})
	require.ErrorIs(t, err, models.ErrValidation)

	withBlank := []string{"Finance", ""}
	_, err = store.UpdateGroups(ctx, models.GroupSettingsUpdate{MonitoredGroups: &withBlank})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = store.UpdateGroups(ctx, models.GroupSettingsUpdate{})
	require.ErrorIs(t, err, models.ErrValidation)

	gs, err := store.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gs.Version)
}

type failingRepo struct {
	*MemoryRepository
}

var errDiskFull = errors.New("disk full")

func (failingRepo) CurrentSettings(context.Context) (models.EvaluationSettings, error) {
	return models.EvaluationSettings{}, errDiskFull
}

func (failingRepo) CurrentThresholds(context.Context) (models.Thresholds, error) {
	return models.Thresholds{}, errDiskFull
}

func TestThresholds_WrapsRepositoryFailure(t *testing.T) {
	store := &Store{repo: failingRepo{NewMemoryRepository()}, logger: zap.NewNop()}

	tests := []struct {
		name string
		read func(ctx context.Context) error
		op   string
	}{
		{
			name: "current",
			read: func(ctx context.Context) error {
				_, err := store.Current(ctx)

				return err
			},
			op: "read settings",
		},
		{
			name: "thresholds",
			read: func(ctx context.Context) error {
				_, err := store.Thresholds(ctx)

				return err
			},
			op: "read thresholds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(context.Background())

			var storeErr *models.CacheStoreError
			require.ErrorAs(t, err, &storeErr)
			assert.ErrorIs(t, err, errDiskFull)
			assert.Equal(t, tt.op, storeErr.Op)
		})
	}
}

// countingRepo records which read paths the store uses.
type countingRepo struct {
	*MemoryRepository

	mu                                    sync.Mutex
	settingsReads, thresholdReads, groups int
}

func (r *countingRepo) CurrentSettings(ctx context.Context) (models.EvaluationSettings, error) {
	r.mu.Lock()
	r.settingsReads++
	r.mu.Unlock()

	return r.MemoryRepository.CurrentSettings(ctx)
}

func (r *countingRepo) CurrentThresholds(ctx context.Context) (models.Thresholds, error) {
	r.mu.Lock()
	r.thresholdReads++
	r.mu.Unlock()

	return r.MemoryRepository.CurrentThresholds(ctx)
}

func (r *countingRepo) GroupSettings(ctx context.Context) (models.GroupSettings, error) {
	r.mu.Lock()
	r.groups++
	r.mu.Unlock()

	return r.MemoryRepository.GroupSettings(ctx)
}

func TestCurrent_ReadsOneSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{MemoryRepository: NewMemoryRepository()}

	store, err := NewStore(ctx, repo, defaults(), zap.NewNop())
	require.NoError(t, err)

	_, err = store.Update(ctx, models.ThresholdsUpdate{CheckInHours: intPtr(48)})
	require.NoError(t, err)

	_, err = store.UpdateGroups(ctx, models.GroupSettingsUpdate{MonitoredGroups: &[]string{"Beta"}})
	require.NoError(t, err)

	repo.mu.Lock()
	repo.settingsReads, repo.thresholdReads, repo.groups = 0, 0, 0
	repo.mu.Unlock()

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Thresholds.Version)
	assert.Equal(t, 48, current.Thresholds.CheckInHours)
	assert.Equal(t, []string{"Beta"}, current.Groups.MonitoredGroups)

	assert.Equal(t, 1, repo.settingsReads)
	assert.Zero(t, repo.thresholdReads)
	assert.Zero(t, repo.groups)
}
