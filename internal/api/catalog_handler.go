package api

import (
	"net/http"
	"strconv"

	"PipocaFlix/internal/model"
	"PipocaFlix/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CatalogHandler 目录查询接口。查询失败时服务层已降级为空结果，这里只做参数解析
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *logrus.Logger
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalog *service.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// EpisodesResponse 单集列表及按季分组
type EpisodesResponse struct {
	Episodes []model.EpisodeItem         `json:"episodios"`
	Seasons  []int                       `json:"temporadas"`
	BySeason map[int][]model.EpisodeItem `json:"por_temporada"`
}

// ContentDetail 详情页数据：条目本身加配对好的演员列表
type ContentDetail struct {
	model.ContentItem
	Series bool               `json:"serie"`
	Cast   []model.CastMember `json:"elenco"`
}

// Register 挂载目录路由
func (h *CatalogHandler) Register(r gin.IRouter) {
	g := r.Group("/api/catalog")
	g.GET("/recent", h.RecentContent)
	g.GET("/banners", h.Banners)
	g.GET("/sessions", h.Sessions)
	g.GET("/sessions/content", h.ContentBySession)
	g.GET("/content/:id", h.ContentByID)
	g.GET("/search", h.Search)
	g.GET("/episodes", h.Episodes)
	g.GET("/random", h.RandomContent)
	g.POST("/cache/clear", h.ClearCache)
	r.GET("/api/home", h.Home)
}

// RecentContent GET /api/catalog/recent?limit=8
func (h *CatalogHandler) RecentContent(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.RecentContent(c.Request.Context(), queryInt(c, "limit")))
}

// Banners GET /api/catalog/banners?categoria=Ação
func (h *CatalogHandler) Banners(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Banners(c.Request.Context(), c.Query("categoria")))
}

// Sessions GET /api/catalog/sessions
func (h *CatalogHandler) Sessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Sessions(c.Request.Context()))
}

// ContentBySession GET /api/catalog/sessions/content?categoria=Drama&tipo=Série&limit=12
func (h *CatalogHandler) ContentBySession(c *gin.Context) {
	categoria := c.Query("categoria")
	if categoria == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "categoria is required"})
		return
	}
	c.JSON(http.StatusOK, h.catalog.ContentBySession(c.Request.Context(), categoria, c.Query("tipo"), queryInt(c, "limit")))
}

// ContentByID GET /api/catalog/content/:id
func (h *CatalogHandler) ContentByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	item, ok := h.catalog.ContentByID(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	c.JSON(http.StatusOK, ContentDetail{
		ContentItem: *item,
		Series:      item.IsSeries(),
		Cast:        item.Cast(),
	})
}

// Search GET /api/catalog/search?q=duna
func (h *CatalogHandler) Search(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.SearchContent(c.Request.Context(), c.Query("q")))
}

// Episodes GET /api/catalog/episodes?serie=Dark
func (h *CatalogHandler) Episodes(c *gin.Context) {
	episodes := h.catalog.Episodes(c.Request.Context(), c.Query("serie"))
	grouped := service.GroupEpisodesBySeason(episodes)
	c.JSON(http.StatusOK, EpisodesResponse{
		Episodes: episodes,
		Seasons:  service.SortedSeasons(grouped),
		BySeason: grouped,
	})
}

// RandomContent GET /api/catalog/random?exclude=7&limit=6
func (h *CatalogHandler) RandomContent(c *gin.Context) {
	exclude, _ := strconv.ParseInt(c.Query("exclude"), 10, 64)
	c.JSON(http.StatusOK, h.catalog.RandomContent(c.Request.Context(), exclude, queryInt(c, "limit")))
}

// Home GET /api/home
func (h *CatalogHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Home(c.Request.Context()))
}

// ClearCache POST /api/catalog/cache/clear
func (h *CatalogHandler) ClearCache(c *gin.Context) {
	h.catalog.ClearCache()
	h.logger.Info("目录缓存已清空")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// queryInt 非法或缺省时返回 0，由服务层套默认值
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
