package service

import (
	"context"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"

	"PipocaFlix/internal/adapter/baserow"
	"PipocaFlix/internal/interfaces"
	"PipocaFlix/internal/model"
	"PipocaFlix/internal/rowstore"

	"github.com/sirupsen/logrus"
)

const (
	DefaultRecentLimit  = 8
	DefaultSessionLimit = 12
	DefaultRandomLimit  = 6

	bannerLimit         = 10
	bannerFallbackLimit = 5
	randomPoolSize      = 50
	episodesLimit       = 200
)

// DefaultSessions 分区表为空时首页使用的分区
var DefaultSessions = []model.Session{
	{Category: "Ação", Type: string(model.ContentMovie)},
	{Category: "Comédia", Type: string(model.ContentMovie)},
	{Category: "Drama", Type: string(model.ContentSeries)},
	{Category: "Terror", Type: string(model.ContentMovie)},
}

// CatalogService 面向前端的目录查询。所有查询失败时只记日志并返回空结果，
// 单个分区出错不能拖垮整页。
type CatalogService struct {
	rows   interfaces.RowFetcher
	mapper *baserow.Mapper
	fields *baserow.FieldMap
	logger *logrus.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand // nil 时用全局随机源
}

// CatalogOption 可选项
type CatalogOption func(*CatalogService)

// WithRand 注入随机源（测试用固定种子）
func WithRand(r *rand.Rand) CatalogOption {
	return func(s *CatalogService) { s.rnd = r }
}

// NewCatalogService 创建 CatalogService
func NewCatalogService(rows interfaces.RowFetcher, mapper *baserow.Mapper, logger *logrus.Logger, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		rows:   rows,
		mapper: mapper,
		fields: mapper.Fields(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecentContent 最新内容，按ID倒序
func (s *CatalogService) RecentContent(ctx context.Context, limit int) []model.ContentItem {
	limit = orDefault(limit, DefaultRecentLimit)
	items := s.listContent(ctx, "RecentContent", rowstore.Params{
		"size":     strconv.Itoa(limit),
		"order_by": "-id",
	})
	return truncate(items, limit)
}

// Banners 轮播图，categoria 非空时按分类精确过滤
func (s *CatalogService) Banners(ctx context.Context, categoria string) []model.BannerItem {
	params := rowstore.Params{
		"size":     strconv.Itoa(bannerLimit),
		"order_by": "-id",
	}
	if categoria != "" {
		params[s.fields.Banners.Category.Filter("equal")] = categoria
	}

	set, err := s.rows.FetchRows(ctx, s.fields.Tables.Banners, params)
	if err != nil {
		s.logger.WithError(err).WithField("categoria", categoria).Warn("获取轮播图失败")
		return []model.BannerItem{}
	}
	return truncate(s.mapper.BannerRows(set.Results), bannerLimit)
}

// Sessions 首页分区配置
func (s *CatalogService) Sessions(ctx context.Context) []model.Session {
	set, err := s.rows.FetchRows(ctx, s.fields.Tables.Sessions, rowstore.Params{})
	if err != nil {
		s.logger.WithError(err).Warn("获取分区失败")
		return []model.Session{}
	}
	return s.mapper.SessionRows(set.Results)
}

// ContentBySession 分区内容：分类包含匹配，tipo 非空时类型精确匹配
func (s *CatalogService) ContentBySession(ctx context.Context, categoria, tipo string, limit int) []model.ContentItem {
	limit = orDefault(limit, DefaultSessionLimit)
	params := rowstore.Params{
		"size":     strconv.Itoa(limit),
		"order_by": "-id",
		s.fields.Content.Category.Filter("contains"): categoria,
	}
	if tipo != "" {
		params[s.fields.Content.Type.Filter("equal")] = tipo
	}
	items := s.listContent(ctx, "ContentBySession", params)
	return truncate(items, limit)
}

// ContentByID 单条内容。行不存在与请求失败都返回 (nil, false)，只在日志里区分
func (s *CatalogService) ContentByID(ctx context.Context, id int64) (*model.ContentItem, bool) {
	if id <= 0 {
		return nil, false
	}
	row, err := s.rows.FetchRowByID(ctx, s.fields.Tables.Content, id)
	if err != nil {
		entry := s.logger.WithError(err).WithField("id", id)
		if rowstore.IsNotFound(err) {
			entry.Info("内容不存在")
		} else {
			entry.Warn("获取内容失败")
		}
		return nil, false
	}
	item := s.mapper.Content(row)
	return &item, true
}

// SearchContent 全文搜索，顺序沿用后端返回
func (s *CatalogService) SearchContent(ctx context.Context, term string) []model.ContentItem {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.ContentItem{}
	}
	set, err := s.rows.SearchRows(ctx, s.fields.Tables.Content, term)
	if err != nil {
		s.logger.WithError(err).WithField("term", term).Warn("搜索内容失败")
		return []model.ContentItem{}
	}
	return truncate(s.mapper.ContentRows(set.Results), rowstore.SearchPageSize)
}

// Episodes 按剧名全文搜索单集（不是外键关联，同名或包含剧名的单集也会被匹配），
// 由后端按季、集排序
func (s *CatalogService) Episodes(ctx context.Context, seriesTitle string) []model.EpisodeItem {
	seriesTitle = strings.TrimSpace(seriesTitle)
	if seriesTitle == "" {
		return []model.EpisodeItem{}
	}
	f := s.fields.Episodes
	set, err := s.rows.FetchRows(ctx, s.fields.Tables.Episodes, rowstore.Params{
		"size":     strconv.Itoa(episodesLimit),
		"order_by": f.Season.Key() + "," + f.Episode.Key(),
		"search":   seriesTitle,
	})
	if err != nil {
		s.logger.WithError(err).WithField("serie", seriesTitle).Warn("获取单集失败")
		return []model.EpisodeItem{}
	}
	return s.mapper.EpisodeRows(set.Results)
}

// RandomContent 从最新50条中去掉 excludeID（<=0 表示不排除），洗牌后取 limit 条。推荐用，非密码学随机
func (s *CatalogService) RandomContent(ctx context.Context, excludeID int64, limit int) []model.ContentItem {
	limit = orDefault(limit, DefaultRandomLimit)
	pool := s.listContent(ctx, "RandomContent", rowstore.Params{
		"size":     strconv.Itoa(randomPoolSize),
		"order_by": "-id",
	})

	if excludeID > 0 {
		kept := pool[:0]
		for _, item := range pool {
			if item.ID != excludeID {
				kept = append(kept, item)
			}
		}
		pool = kept
	}

	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return truncate(pool, limit)
}

// ClearCache 清空后端客户端缓存
func (s *CatalogService) ClearCache() {
	s.rows.ClearCache()
}

// HomeSection 首页一个分区及其内容
type HomeSection struct {
	Session model.Session       `json:"sessao"`
	Items   []model.ContentItem `json:"conteudos"`
}

// HomePage 首页数据
type HomePage struct {
	Banners  []model.BannerItem  `json:"banners"`
	Recent   []model.ContentItem `json:"recentes"`
	Sections []HomeSection       `json:"sessoes"`
}

// Home 组装首页：轮播（没有轮播时用最新5条内容代替）、最新8条、各分区内容（分区依次加载，空分区不返回）
func (s *CatalogService) Home(ctx context.Context) *HomePage {
	page := &HomePage{
		Banners:  s.Banners(ctx, ""),
		Recent:   s.RecentContent(ctx, DefaultRecentLimit),
		Sections: []HomeSection{},
	}
	if len(page.Banners) == 0 {
		page.Banners = bannersFromContent(s.RecentContent(ctx, bannerFallbackLimit))
	}

	sessions := s.Sessions(ctx)
	if len(sessions) == 0 {
		sessions = DefaultSessions
	}
	for _, session := range sessions {
		if session.Category == "" {
			continue
		}
		items := s.ContentBySession(ctx, session.Category, session.Type, DefaultSessionLimit)
		if len(items) == 0 {
			continue
		}
		page.Sections = append(page.Sections, HomeSection{Session: session, Items: items})
	}
	return page
}

// bannersFromContent 内容转轮播：封面作图片，标题放在分类位置
func bannersFromContent(items []model.ContentItem) []model.BannerItem {
	banners := make([]model.BannerItem, 0, len(items))
	for _, item := range items {
		banners = append(banners, model.BannerItem{
			ID:       item.ID,
			Image:    item.Cover,
			Link:     item.Link,
			Category: item.Title,
		})
	}
	return banners
}

// GroupEpisodesBySeason 按季分组，每季内按集号升序；季号取自数据本身，不假定连续
func GroupEpisodesBySeason(episodes []model.EpisodeItem) map[int][]model.EpisodeItem {
	grouped := make(map[int][]model.EpisodeItem)
	for _, ep := range episodes {
		grouped[ep.Season] = append(grouped[ep.Season], ep)
	}
	for season := range grouped {
		list := grouped[season]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Episode < list[j].Episode })
	}
	return grouped
}

// SortedSeasons 分组后的季号升序
func SortedSeasons(grouped map[int][]model.EpisodeItem) []int {
	seasons := make([]int, 0, len(grouped))
	for season := range grouped {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)
	return seasons
}

func (s *CatalogService) listContent(ctx context.Context, op string, params rowstore.Params) []model.ContentItem {
	set, err := s.rows.FetchRows(ctx, s.fields.Tables.Content, params)
	if err != nil {
		s.logger.WithError(err).WithField("op", op).Warn("获取内容列表失败")
		return []model.ContentItem{}
	}
	return s.mapper.ContentRows(set.Results)
}

// shuffle Fisher–Yates
func (s *CatalogService) shuffle(n int, swap func(i, j int)) {
	if s.rnd == nil {
		rand.Shuffle(n, swap)
		return
	}
	s.rndMu.Lock()
	s.rnd.Shuffle(n, swap)
	s.rndMu.Unlock()
}

func orDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
