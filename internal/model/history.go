package model

import (
	"time"

	"gorm.io/datatypes"
)

// WatchHistory 观看记录（按观众去重到单集，保留最近 MaxHistoryEntries 条）
type WatchHistory struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	EntryUUID  string         `gorm:"column:entry_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID" json:"entry_uuid"`
	ViewerID   string         `gorm:"column:viewer_id;type:varchar(64);not null;index:idx_viewer_episode;comment:观众标识" json:"viewer_id"`
	SeriesID   int64          `gorm:"column:series_id;type:bigint;not null;comment:剧集行ID" json:"serie_id"`
	SeriesName string         `gorm:"column:series_name;type:varchar(256);comment:剧集名称" json:"serie_nome"`
	EpisodeID  int64          `gorm:"column:episode_id;type:bigint;not null;index:idx_viewer_episode;comment:单集行ID" json:"episode_id"`
	Season     int            `gorm:"column:season;type:int;not null;comment:季" json:"temporada"`
	Episode    int            `gorm:"column:episode;type:int;not null;comment:集" json:"episodio"`
	Snapshot   datatypes.JSON `gorm:"column:snapshot;comment:单集快照" json:"snapshot"`
	WatchedAt  time.Time      `gorm:"column:watched_at;type:timestamp;not null;index;comment:观看时间" json:"watched_at"`
}

// EpisodeProgress 单集播放进度（百分比）
type EpisodeProgress struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	ViewerID  string    `gorm:"column:viewer_id;type:varchar(64);not null;uniqueIndex:uq_viewer_episode;comment:观众标识" json:"viewer_id"`
	EpisodeID int64     `gorm:"column:episode_id;type:bigint;not null;uniqueIndex:uq_viewer_episode;comment:单集行ID" json:"episode_id"`
	Percent   float64   `gorm:"column:percent;type:numeric(6,2);not null;default:0;comment:进度百分比" json:"percent"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;comment:更新时间" json:"updated_at"`
}

// MaxHistoryEntries 每个观众保留的观看记录条数
const MaxHistoryEntries = 50

func (WatchHistory) TableName() string    { return "watch_history" }
func (EpisodeProgress) TableName() string { return "episode_progress" }
