package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/ensemble"
	"github.com/retailpulse/forecast-engine/internal/forecast"
	"github.com/retailpulse/forecast-engine/internal/repository"
	"github.com/retailpulse/forecast-engine/internal/storage"
)

func newTestTrainer(t *testing.T) (*Trainer, *forecast.Registry, *ensemble.Store, *MemoryRunStore) {
	t.Helper()

	repo := repository.NewSyntheticRepository(42, 30, 180)
	registry := forecast.NewRegistry()
	weights := ensemble.NewStore()
	runs := NewMemoryRunStore()

	trainer := NewTrainer(Config{
		Folds:       5,
		Holdout:     0.2,
		WorkerCount: 4,
		HistoryDays: 180,
	}, registry, repo, runs, weights, storage.NoopStorage{})

	return trainer, registry, weights, runs
}

func TestTrainerRunCompletes(t *testing.T) {
	trainer, registry, weights, runs := newTestTrainer(t)

	report, err := trainer.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	// All three vertical models trained and queryable afterwards.
	assert.Len(t, report.Models, 3)
	assert.Len(t, registry.Reports(), 3)
	for _, m := range registry.All() {
		_, trained := m.Accuracy()
		assert.True(t, trained, m.Name())
	}

	// One component validation per ensemble component.
	require.Len(t, report.Validation, 4)
	for _, v := range report.Validation {
		assert.NotEmpty(t, v.Accuracies, v.Component)
		assert.GreaterOrEqual(t, v.Mean, 0.0, v.Component)
		assert.LessOrEqual(t, v.Mean, 1.0, v.Component)
	}

	// Weight update keeps the invariants.
	snap := weights.Snapshot()
	assert.InDelta(t, 1.0, snap.Sum(), 1e-6)
	for name, w := range snap {
		assert.GreaterOrEqual(t, w, 0.0, name)
	}
	assert.Equal(t, snap, report.Weights)

	// Run row tracked to completion.
	run, err := runs.GetRun(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 3, run.ModelsTrained)
	require.NotNil(t, run.CompletedAt)
	assert.False(t, run.CompletedAt.Before(run.StartedAt))
}

func TestTrainerRunWithoutGeneralVertical(t *testing.T) {
	// A catalog of only apparel and industrial products must still
	// complete the run and update the weights, validating against the
	// longest available series instead of the general one.
	repo := repository.NewSyntheticRepository(42, 0, 0)
	gen := forecast.NewSyntheticGenerator(7)
	end := time.Now().UTC().Truncate(24 * time.Hour)

	ctx := context.Background()
	for i := 0; i < 8; i++ {
		vertical := domain.VerticalApparel
		if i%2 == 0 {
			vertical = domain.VerticalIndustrial
		}
		p := domain.Product{
			ID:              fmt.Sprintf("SKU-%04d", i+1),
			Name:            fmt.Sprintf("Item %d", i+1),
			Vertical:        vertical,
			Criticality:     domain.CriticalityStandard,
			LeadTimeDays:    7,
			UnitCost:        20,
			HoldingCostRate: 0.2,
			CreatedAt:       end,
		}
		require.NoError(t, repo.SaveProduct(ctx, p))
		require.NoError(t, repo.SaveSalesHistory(ctx, p.ID, gen.History(p, 180, end)))
	}

	registry := forecast.NewRegistry()
	weights := ensemble.NewStore()
	runs := NewMemoryRunStore()
	trainer := NewTrainer(Config{
		Folds:       5,
		Holdout:     0.2,
		WorkerCount: 4,
		HistoryDays: 180,
	}, registry, repo, runs, weights, storage.NoopStorage{})

	report, err := trainer.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Len(t, report.Models, 2)
	require.Len(t, report.Validation, 4)
	for _, v := range report.Validation {
		assert.NotEmpty(t, v.Accuracies, v.Component)
	}
	assert.InDelta(t, 1.0, weights.Snapshot().Sum(), 1e-6)

	run, err := runs.GetRun(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 2, run.ModelsTrained)
}

func TestTrainerFailsWithoutProducts(t *testing.T) {
	repo := repository.NewSyntheticRepository(42, 0, 0)
	runs := NewMemoryRunStore()

	trainer := NewTrainer(DefaultConfig(), forecast.NewRegistry(), repo, runs, ensemble.NewStore(), storage.NoopStorage{})

	_, err := trainer.Run(context.Background())
	require.Error(t, err)

	// The run row records the failure.
	listed, listErr := runs.ListRuns(context.Background(), 10)
	require.NoError(t, listErr)
	require.Len(t, listed, 1)
	assert.Equal(t, StatusFailed, listed[0].Status)
	assert.NotEmpty(t, listed[0].ErrorMessage)
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]storage.ObjectInfo, 0, len(m.objects))
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStorage) DownloadObject(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func TestTrainerArchivesFetchableReport(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSyntheticRepository(42, 30, 180)
	archive := newMemoryStorage()

	trainer := NewTrainer(Config{
		Folds:       5,
		Holdout:     0.2,
		WorkerCount: 4,
		HistoryDays: 180,
	}, forecast.NewRegistry(), repo, NewMemoryRunStore(), ensemble.NewStore(), archive)

	report, err := trainer.Run(ctx)
	require.NoError(t, err)

	objects, err := ListArchivedReports(ctx, archive, "")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.True(t, strings.HasPrefix(objects[0].Key, "reports/"))

	fetched, err := FetchArchivedReport(ctx, archive, objects[0].Key)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, fetched.RunID)
	assert.Len(t, fetched.Models, 3)

	_, err = FetchArchivedReport(ctx, archive, "reports/missing.json")
	assert.Error(t, err)
}

func TestMemoryRunStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRunStore()

	run := &TrainingRun{ID: "run-1", Status: StatusPending, StartedAt: now().UTC()}
	require.NoError(t, store.CreateRun(ctx, run))

	run.Status = StatusProcessing
	require.NoError(t, store.UpdateRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)

	_, err = store.GetRun(ctx, "missing")
	assert.Error(t, err)
}
