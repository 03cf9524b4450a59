package repository

import (
	"context"
	"errors"
	"fmt"

	"PipocaFlix/internal/interfaces"
	"PipocaFlix/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository 创建 HistoryRepository 实例
func NewHistoryRepository(db *gorm.DB) interfaces.HistoryRepository {
	return &historyRepository{db: db}
}

// SaveWatch 同一单集只保留最新一条，超出 keep 的旧记录删除
func (r *historyRepository) SaveWatch(ctx context.Context, entry *model.WatchHistory, keep int) error {
	if entry.EntryUUID == "" {
		entry.EntryUUID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("viewer_id = ? AND episode_id = ?", entry.ViewerID, entry.EpisodeID).
			Delete(&model.WatchHistory{}).Error; err != nil {
			return fmt.Errorf("删除重复观看记录失败: %w", err)
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("保存观看记录失败: %w, episode_id: %d", err, entry.EpisodeID)
		}
		if keep <= 0 {
			return nil
		}

		var ids []uint64
		if err := tx.Model(&model.WatchHistory{}).
			Where("viewer_id = ?", entry.ViewerID).
			Order("watched_at DESC, id DESC").
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("查询观看记录失败: %w", err)
		}
		if len(ids) <= keep {
			return nil
		}
		if err := tx.Where("id IN ?", ids[keep:]).Delete(&model.WatchHistory{}).Error; err != nil {
			return fmt.Errorf("裁剪观看记录失败: %w", err)
		}
		return nil
	})
}

// ListWatch 按观看时间倒序
func (r *historyRepository) ListWatch(ctx context.Context, viewerID string, limit int) ([]*model.WatchHistory, error) {
	if limit <= 0 || limit > model.MaxHistoryEntries {
		limit = model.MaxHistoryEntries
	}
	var list []*model.WatchHistory
	err := r.db.WithContext(ctx).
		Where("viewer_id = ?", viewerID).
		Order("watched_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpsertProgress 按 (viewer_id, episode_id) 覆盖
func (r *historyRepository) UpsertProgress(ctx context.Context, progress *model.EpisodeProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "episode_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"percent", "updated_at"}),
	}).Create(progress).Error
}

// GetProgress 不存在时返回 nil, nil
func (r *historyRepository) GetProgress(ctx context.Context, viewerID string, episodeID int64) (*model.EpisodeProgress, error) {
	var p model.EpisodeProgress
	err := r.db.WithContext(ctx).
		Where("viewer_id = ? AND episode_id = ?", viewerID, episodeID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
