package api

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PipocaFlix/internal/adapter/baserow"
	"PipocaFlix/internal/config"
	"PipocaFlix/internal/model"
	"PipocaFlix/internal/repository"
	"PipocaFlix/internal/rowstore"
	"PipocaFlix/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubRows 按表返回固定结果
type stubRows struct {
	sets    map[int64]*model.RawRowSet
	rows    map[int64]model.RawRow
	cleared int
}

func (s *stubRows) FetchRows(_ context.Context, tableID int64, _ rowstore.Params) (*model.RawRowSet, error) {
	if set, ok := s.sets[tableID]; ok {
		return set, nil
	}
	return &model.RawRowSet{Results: []model.RawRow{}}, nil
}

func (s *stubRows) FetchRowByID(_ context.Context, _ int64, rowID int64) (model.RawRow, error) {
	if row, ok := s.rows[rowID]; ok {
		return row, nil
	}
	return nil, &rowstore.HTTPError{StatusCode: http.StatusNotFound, Status: "404 Not Found"}
}

func (s *stubRows) SearchRows(ctx context.Context, tableID int64, _ string) (*model.RawRowSet, error) {
	return s.FetchRows(ctx, tableID, nil)
}

func (s *stubRows) ClearCache() { s.cleared++ }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRouter(t *testing.T, rows *stubRows, history *service.HistoryService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fm, err := baserow.NewFieldMap(&config.RowStoreConfig{
		Tables: config.TablesConfig{Conteudos: 4400, Episodios: 5175, Banners: 5352, Sessoes: 5353},
		Fields: config.FieldsConfig{
			Conteudos: config.ContentFieldsConfig{
				Capa: 34665, Nome: 29998, Link: 29999, Sinopse: 30000, Categoria: 34666, Ano: 34667,
				Duracao: 34668, Trailer: 34669, FotosElenco: 34670, NomeElenco: 34671, Tipo: 34672,
			},
			Episodios: config.EpisodeFieldsConfig{Nome: 35682, Temporada: 35684, Episodio: 35685},
			Banners:   config.BannerFieldsConfig{Imagem: 35687, Link: 35689, Categoria: 35692},
			Sessoes:   config.SessionFieldsConfig{Categoria: 35693, Tipo: 35694},
		},
	})
	require.NoError(t, err)

	catalog := service.NewCatalogService(rows, baserow.NewMapper(fm), quietLogger(), service.WithRand(rand.New(rand.NewPCG(3, 4))))
	r := gin.New()
	NewCatalogHandler(catalog, quietLogger()).Register(r)
	if history != nil {
		NewHistoryHandler(history, quietLogger()).Register(r)
	}
	return r
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestContentByID_Handler(t *testing.T) {
	rows := &stubRows{rows: map[int64]model.RawRow{
		7: {"id": float64(7), "field_29998": "Duna"},
		9: {
			"id":          float64(9),
			"field_29998": "Dark",
			"field_34672": "Serie",
			"field_34671": "Louis||Lisa",
			"field_34670": []any{
				map[string]any{"url": "https://cdn/louis.jpg"},
				map[string]any{"url": "https://cdn/x.jpg"},
				map[string]any{"url": "https://cdn/lisa.jpg"},
			},
		},
	}}
	r := newTestRouter(t, rows, nil)

	w := do(r, http.MethodGet, "/api/catalog/content/7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item model.ContentItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "Duna", item.Title)

	w = do(r, http.MethodGet, "/api/catalog/content/9", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail ContentDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Dark", detail.Title)
	assert.True(t, detail.Series)
	assert.Equal(t, []model.CastMember{
		{Name: "Louis", Photo: "https://cdn/louis.jpg"},
		{Name: "Lisa", Photo: "https://cdn/lisa.jpg"},
	}, detail.Cast)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/catalog/content/8", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/catalog/content/abc", "", nil).Code)
}

func TestEpisodes_Handler(t *testing.T) {
	rows := &stubRows{sets: map[int64]*model.RawRowSet{5175: {Results: []model.RawRow{
		{"id": float64(1), "field_35682": "Dark 1x1", "field_35684": float64(1), "field_35685": float64(1)},
		{"id": float64(2), "field_35682": "Dark 2x1", "field_35684": float64(2), "field_35685": float64(1)},
		{"id": float64(3), "field_35682": "Dark 1x2", "field_35684": float64(1), "field_35685": float64(2)},
	}}}}
	r := newTestRouter(t, rows, nil)

	w := do(r, http.MethodGet, "/api/catalog/episodes?serie=Dark", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Episodes []model.EpisodeItem            `json:"episodios"`
		Seasons  []int                          `json:"temporadas"`
		BySeason map[string][]model.EpisodeItem `json:"por_temporada"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Episodes, 3)
	assert.Equal(t, []int{1, 2}, resp.Seasons)
	require.Len(t, resp.BySeason["1"], 2)
	assert.Equal(t, int64(3), resp.BySeason["1"][1].ID)
}

func TestListEndpoints_EmptyArrays(t *testing.T) {
	r := newTestRouter(t, &stubRows{}, nil)

	for _, path := range []string{
		"/api/catalog/recent",
		"/api/catalog/banners",
		"/api/catalog/sessions",
		"/api/catalog/sessions/content?categoria=Drama",
		"/api/catalog/search?q=nada",
		"/api/catalog/random?exclude=1",
	} {
		w := do(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, "[]", w.Body.String(), path)
	}

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/catalog/sessions/content", "", nil).Code)
}

func TestHome_Handler(t *testing.T) {
	rows := &stubRows{sets: map[int64]*model.RawRowSet{4400: {Results: []model.RawRow{{"id": float64(1), "field_29998": "Duna"}}}}}
	r := newTestRouter(t, rows, nil)

	w := do(r, http.MethodGet, "/api/home", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.HomePage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Recent, 1)
	assert.Len(t, page.Sections, len(service.DefaultSessions))
}

func TestClearCache_Handler(t *testing.T) {
	rows := &stubRows{}
	r := newTestRouter(t, rows, nil)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/catalog/cache/clear", "", nil).Code)
	assert.Equal(t, 1, rows.cleared)
}

func newHistoryService(t *testing.T) *service.HistoryService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))
	return service.NewHistoryService(repository.NewHistoryRepository(db), quietLogger())
}

func TestHistory_Handler(t *testing.T) {
	r := newTestRouter(t, &stubRows{}, newHistoryService(t))
	viewer := map[string]string{ViewerHeader: "v1"}

	body := `{"serie_id": 100, "serie_nome": "Dark", "episodio": {"id": 40, "nome": "Dark 2x3", "temporada": 2, "episodio": 3, "link": "https://v/2-3"}}`
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/history", body, nil).Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/history", body, viewer).Code)

	w := do(r, http.MethodGet, "/api/history", "", viewer)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.EqualValues(t, 40, list[0]["episode_id"])

	w = do(r, http.MethodGet, "/api/history", "", map[string]string{ViewerHeader: "v2"})
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestProgress_Handler(t *testing.T) {
	r := newTestRouter(t, &stubRows{}, newHistoryService(t))
	viewer := map[string]string{ViewerHeader: "v1"}

	w := do(r, http.MethodPut, "/api/progress/40", `{"current_time": 90, "duration": 120}`, viewer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"episode_id": 40, "percent": 75}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/progress/40", "", viewer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"episode_id": 40, "percent": 75}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/progress/41", "", viewer)
	assert.JSONEq(t, `{"episode_id": 41, "percent": 0}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/api/progress/40", `{"current_time": 1}`, viewer).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/progress/x", "", viewer).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/progress/40", "", nil).Code)
}
