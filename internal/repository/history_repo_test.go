package repository

import (
	"context"
	"testing"
	"time"

	"PipocaFlix/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: 每个连接一个库
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func watchEntry(viewer string, episodeID int64, at time.Time) *model.WatchHistory {
	return &model.WatchHistory{
		ViewerID:   viewer,
		SeriesID:   100,
		SeriesName: "Dark",
		EpisodeID:  episodeID,
		Season:     1,
		Episode:    int(episodeID),
		WatchedAt:  at,
	}
}

func TestSaveWatch_DedupesEpisode(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveWatch(ctx, watchEntry("v1", 1, base), 50))
	require.NoError(t, repo.SaveWatch(ctx, watchEntry("v1", 2, base.Add(time.Minute)), 50))
	again := watchEntry("v1", 1, base.Add(2*time.Minute))
	require.NoError(t, repo.SaveWatch(ctx, again, 50))
	assert.NotEmpty(t, again.EntryUUID)

	list, err := repo.ListWatch(ctx, "v1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].EpisodeID)
	assert.Equal(t, int64(2), list[1].EpisodeID)
}

func TestSaveWatch_TrimsToKeep(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.SaveWatch(ctx, watchEntry("v1", int64(i), base.Add(time.Duration(i)*time.Minute)), 3))
	}
	require.NoError(t, repo.SaveWatch(ctx, watchEntry("v2", 9, base), 3))

	list, err := repo.ListWatch(ctx, "v1", 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{5, 4, 3}, []int64{list[0].EpisodeID, list[1].EpisodeID, list[2].EpisodeID})

	other, err := repo.ListWatch(ctx, "v2", 10)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestListWatch_Limit(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	for i := 1; i <= 4; i++ {
		require.NoError(t, repo.SaveWatch(ctx, watchEntry("v1", int64(i), base.Add(time.Duration(i)*time.Second)), 0))
	}

	list, err := repo.ListWatch(ctx, "v1", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	none, err := repo.ListWatch(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProgress_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	missing, err := repo.GetProgress(ctx, "v1", 7)
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertProgress(ctx, &model.EpisodeProgress{ViewerID: "v1", EpisodeID: 7, Percent: 25, UpdatedAt: now}))
	require.NoError(t, repo.UpsertProgress(ctx, &model.EpisodeProgress{ViewerID: "v1", EpisodeID: 7, Percent: 80.5, UpdatedAt: now.Add(time.Minute)}))

	got, err := repo.GetProgress(ctx, "v1", 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 80.5, got.Percent, 0.001)

	var count int64
	require.NoError(t, db.Model(&model.EpisodeProgress{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAdminDSNFor(t *testing.T) {
	name, admin, err := adminDSNFor("postgres://u:p@localhost:5432/pipocaflix?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pipocaflix", name)
	assert.Equal(t, "postgres://u:p@localhost:5432/postgres?sslmode=disable", admin)

	name, _, err = adminDSNFor("postgres://u:p@localhost:5432/postgres")
	require.NoError(t, err)
	assert.Empty(t, name)
}
