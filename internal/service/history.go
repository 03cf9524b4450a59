package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"PipocaFlix/internal/interfaces"
	"PipocaFlix/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var (
	ErrMissingViewer   = errors.New("缺少观众标识")
	ErrInvalidEpisode  = errors.New("无效的单集ID")
	ErrInvalidProgress = errors.New("无效的播放进度")
)

// WatchRequest 一次观看事件
type WatchRequest struct {
	SeriesID   int64             `json:"serie_id"`
	SeriesName string            `json:"serie_nome"`
	Episode    model.EpisodeItem `json:"episodio"`
}

// HistoryService 观看历史与播放进度
type HistoryService struct {
	repo   interfaces.HistoryRepository
	logger *logrus.Logger
	now    func() time.Time
}

// NewHistoryService 创建 HistoryService
func NewHistoryService(repo interfaces.HistoryRepository, logger *logrus.Logger) *HistoryService {
	return &HistoryService{repo: repo, logger: logger, now: time.Now}
}

// RecordWatch 记录观看，单集快照以 JSON 存储
func (s *HistoryService) RecordWatch(ctx context.Context, viewerID string, req WatchRequest) (*model.WatchHistory, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, ErrMissingViewer
	}
	if req.Episode.ID <= 0 {
		return nil, ErrInvalidEpisode
	}

	snapshot, err := json.Marshal(req.Episode)
	if err != nil {
		return nil, fmt.Errorf("序列化单集快照失败: %w", err)
	}
	entry := &model.WatchHistory{
		EntryUUID:  uuid.NewString(),
		ViewerID:   viewerID,
		SeriesID:   req.SeriesID,
		SeriesName: req.SeriesName,
		EpisodeID:  req.Episode.ID,
		Season:     req.Episode.Season,
		Episode:    req.Episode.Episode,
		Snapshot:   datatypes.JSON(snapshot),
		WatchedAt:  s.now().UTC(),
	}
	if err := s.repo.SaveWatch(ctx, entry, model.MaxHistoryEntries); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"viewer": viewerID, "episode_id": entry.EpisodeID}).Error("保存观看记录失败")
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"viewer": viewerID, "episode_id": entry.EpisodeID}).Debug("观看记录已保存")
	return entry, nil
}

// History 最近观看，按时间倒序
func (s *HistoryService) History(ctx context.Context, viewerID string, limit int) ([]*model.WatchHistory, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, ErrMissingViewer
	}
	list, err := s.repo.ListWatch(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*model.WatchHistory{}
	}
	return list, nil
}

// SaveProgress 按 currentTime/duration 换算百分比并限制在 0~100
func (s *HistoryService) SaveProgress(ctx context.Context, viewerID string, episodeID int64, currentTime, duration float64) (*model.EpisodeProgress, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, ErrMissingViewer
	}
	if episodeID <= 0 {
		return nil, ErrInvalidEpisode
	}
	if duration <= 0 || currentTime < 0 {
		return nil, ErrInvalidProgress
	}

	p := &model.EpisodeProgress{
		ViewerID:  viewerID,
		EpisodeID: episodeID,
		Percent:   ProgressPercent(currentTime, duration),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.UpsertProgress(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Progress 未记录过时为 0
func (s *HistoryService) Progress(ctx context.Context, viewerID string, episodeID int64) (float64, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return 0, ErrMissingViewer
	}
	if episodeID <= 0 {
		return 0, ErrInvalidEpisode
	}
	p, err := s.repo.GetProgress(ctx, viewerID, episodeID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}
	return p.Percent, nil
}

// ProgressPercent currentTime 占 duration 的百分比，限制在 0~100
func ProgressPercent(currentTime, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := currentTime / duration * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
