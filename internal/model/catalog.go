package model

import "strings"

const (
	// PlaceholderImage 图片字段为空时的兜底路径
	PlaceholderImage = "/assets/images/placeholder.jpg"
	// AvatarPlaceholder 演员照片缺失时的兜底路径
	AvatarPlaceholder = "/assets/images/avatar-placeholder.jpg"

	DefaultTitle    = "Sem título"
	DefaultSynopsis = "Sinopse não disponível"
)

// ContentType 内容类型（后端直接存中文展示值）
type ContentType string

const (
	ContentMovie  ContentType = "Filme"
	ContentSeries ContentType = "Série"
)

// ContentItem 影片/剧集条目，每次映射都新建，不在原地修改
type ContentItem struct {
	ID         int64       `json:"id"`
	Cover      string      `json:"capa"`
	Title      string      `json:"nome"`
	Link       string      `json:"link"`
	Synopsis   string      `json:"sinopse"`
	Category   string      `json:"categoria"`
	Year       string      `json:"ano"`
	Duration   string      `json:"duracao"`
	Trailer    string      `json:"trailer"`
	CastPhotos []string    `json:"fotosElenco"`
	CastNames  string      `json:"nomeElenco"` // 竖线分隔
	Type       ContentType `json:"tipo"`
}

// IsSeries 是否剧集，兼容不带重音的 "Serie"
func (c ContentItem) IsSeries() bool {
	return c.Type == ContentSeries || c.Type == "Serie"
}

// CastMember 演员（名字+照片）
type CastMember struct {
	Name  string `json:"nome"`
	Photo string `json:"foto"`
}

// CastList 拆分竖线分隔的演员名，去掉空项
func (c ContentItem) CastList() []string {
	if c.CastNames == "" {
		return []string{}
	}
	parts := strings.Split(c.CastNames, "|")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Cast 按原始下标把演员名与照片配对（空名字占位但不输出），缺照片用头像占位图
func (c ContentItem) Cast() []CastMember {
	if c.CastNames == "" {
		return []CastMember{}
	}
	names := strings.Split(c.CastNames, "|")
	members := make([]CastMember, 0, len(names))
	for i, name := range names {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		photo := AvatarPlaceholder
		if i < len(c.CastPhotos) && c.CastPhotos[i] != "" {
			photo = c.CastPhotos[i]
		}
		members = append(members, CastMember{Name: name, Photo: photo})
	}
	return members
}

// BannerItem 首页轮播图
type BannerItem struct {
	ID       int64  `json:"id"`
	Image    string `json:"imagem"`
	Link     string `json:"link"`
	Category string `json:"categoria"`
}

// EpisodeItem 单集
type EpisodeItem struct {
	ID      int64  `json:"id"`
	Title   string `json:"nome"`
	Season  int    `json:"temporada"`
	Episode int    `json:"episodio"`
	Link    string `json:"link"` // 从自由文本中提取，可能不是URL
}

// Session 首页分区：按分类（+可选类型）渲染一个轮播
type Session struct {
	ID       int64  `json:"id"`
	Category string `json:"categoria"`
	Type     string `json:"tipo"`
}
