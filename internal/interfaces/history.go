package interfaces

import (
	"context"

	"PipocaFlix/internal/model"
)

// HistoryRepository 观看历史与播放进度的持久化
type HistoryRepository interface {
	// SaveWatch 写入一条记录：同一观众同一单集只保留最新一条，并裁剪到 keep 条
	SaveWatch(ctx context.Context, entry *model.WatchHistory, keep int) error
	// ListWatch 按观看时间倒序
	ListWatch(ctx context.Context, viewerID string, limit int) ([]*model.WatchHistory, error)
	// UpsertProgress 按 (viewer, episode) 覆盖进度
	UpsertProgress(ctx context.Context, progress *model.EpisodeProgress) error
	// GetProgress 不存在时返回 nil, nil
	GetProgress(ctx context.Context, viewerID string, episodeID int64) (*model.EpisodeProgress, error)
}
