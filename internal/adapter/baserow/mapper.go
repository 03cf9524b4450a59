package baserow

import (
	"PipocaFlix/internal/model"
)

// Mapper 把原始行转换为目录领域对象；每次调用都新建对象，字段缺失一律兜底
type Mapper struct {
	fields *FieldMap
}

// NewMapper 创建 Mapper
func NewMapper(fields *FieldMap) *Mapper {
	return &Mapper{fields: fields}
}

// Fields 返回只读字段映射（构造查询参数用）
func (m *Mapper) Fields() *FieldMap {
	return m.fields
}

// Content 内容行 → ContentItem
func (m *Mapper) Content(row model.RawRow) model.ContentItem {
	f := m.fields.Content
	photos, _ := lookup(row, f.CastPhotos)
	cover, _ := lookup(row, f.Cover)
	return model.ContentItem{
		ID:         row.ID(),
		Cover:      ExtractImageURL(cover),
		Title:      textOr(row, f.Title, model.DefaultTitle),
		Link:       textOr(row, f.Link, ""),
		Synopsis:   textOr(row, f.Synopsis, model.DefaultSynopsis),
		Category:   textOr(row, f.Category, ""),
		Year:       textOr(row, f.Year, ""),
		Duration:   textOr(row, f.Duration, ""),
		Trailer:    textOr(row, f.Trailer, ""),
		CastPhotos: ExtractImageURLs(photos),
		CastNames:  textOr(row, f.CastNames, ""),
		Type:       model.ContentType(textOr(row, f.Type, string(model.ContentMovie))),
	}
}

// ContentRows 批量映射内容行，结果不为 nil
func (m *Mapper) ContentRows(rows []model.RawRow) []model.ContentItem {
	items := make([]model.ContentItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, m.Content(row))
	}
	return items
}

// Banner 轮播行 → BannerItem
func (m *Mapper) Banner(row model.RawRow) model.BannerItem {
	f := m.fields.Banners
	image, _ := lookup(row, f.Image)
	return model.BannerItem{
		ID:       row.ID(),
		Image:    ExtractImageURL(image),
		Link:     textOr(row, f.Link, ""),
		Category: textOr(row, f.Category, ""),
	}
}

// BannerRows 批量映射轮播行
func (m *Mapper) BannerRows(rows []model.RawRow) []model.BannerItem {
	items := make([]model.BannerItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, m.Banner(row))
	}
	return items
}

// Episode 播放地址藏在名称字段的自由文本里
func (m *Mapper) Episode(row model.RawRow) model.EpisodeItem {
	f := m.fields.Episodes
	title := textOr(row, f.Title, "")
	return model.EpisodeItem{
		ID:      row.ID(),
		Title:   title,
		Season:  intOr(row, f.Season, 1),
		Episode: intOr(row, f.Episode, 1),
		Link:    ExtractVideoLink(title),
	}
}

// EpisodeRows 批量映射单集行
func (m *Mapper) EpisodeRows(rows []model.RawRow) []model.EpisodeItem {
	items := make([]model.EpisodeItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, m.Episode(row))
	}
	return items
}

// Session 分区行 → Session
func (m *Mapper) Session(row model.RawRow) model.Session {
	f := m.fields.Sessions
	return model.Session{
		ID:       row.ID(),
		Category: textOr(row, f.Category, ""),
		Type:     textOr(row, f.Type, ""),
	}
}

// SessionRows 批量映射分区行
func (m *Mapper) SessionRows(rows []model.RawRow) []model.Session {
	items := make([]model.Session, 0, len(rows))
	for _, row := range rows {
		items = append(items, m.Session(row))
	}
	return items
}
