package baserow

import (
	"fmt"
	"strings"

	"PipocaFlix/internal/config"
)

// Field 一个逻辑字段：数字ID + 可读名称（user_field_names=true 时的key）
type Field struct {
	ID   int64
	Name string
}

// Key 行数据中的原始key
func (f Field) Key() string {
	return fmt.Sprintf("field_%d", f.ID)
}

// Filter 生成 Baserow 过滤参数名，如 filter__field_34666__contains
func (f Field) Filter(op string) string {
	return fmt.Sprintf("filter__%s__%s", f.Key(), op)
}

type ContentFields struct {
	Cover, Title, Link, Synopsis, Category, Year, Duration, Trailer, CastPhotos, CastNames, Type Field
}

type EpisodeFields struct {
	Title, Season, Episode Field
}

type BannerFields struct {
	Image, Link, Category Field
}

type SessionFields struct {
	Category, Type Field
}

// Tables 各业务表ID
type Tables struct {
	Content, Episodes, Banners, Sessions int64
}

// FieldMap 表 → 逻辑字段 → 字段ID，启动时构建，之后只读
type FieldMap struct {
	Tables   Tables
	Content  ContentFields
	Episodes EpisodeFields
	Banners  BannerFields
	Sessions SessionFields
}

// NewFieldMap 从配置构建字段映射，任一ID缺失即报错
func NewFieldMap(cfg *config.RowStoreConfig) (*FieldMap, error) {
	c := cfg.Fields.Conteudos
	e := cfg.Fields.Episodios
	b := cfg.Fields.Banners
	s := cfg.Fields.Sessoes

	fm := &FieldMap{
		Tables: Tables{
			Content:  cfg.Tables.Conteudos,
			Episodes: cfg.Tables.Episodios,
			Banners:  cfg.Tables.Banners,
			Sessions: cfg.Tables.Sessoes,
		},
		Content: ContentFields{
			Cover:      Field{ID: c.Capa, Name: "capa"},
			Title:      Field{ID: c.Nome, Name: "nome"},
			Link:       Field{ID: c.Link, Name: "link"},
			Synopsis:   Field{ID: c.Sinopse, Name: "sinopse"},
			Category:   Field{ID: c.Categoria, Name: "categoria"},
			Year:       Field{ID: c.Ano, Name: "ano"},
			Duration:   Field{ID: c.Duracao, Name: "duracao"},
			Trailer:    Field{ID: c.Trailer, Name: "trailer"},
			CastPhotos: Field{ID: c.FotosElenco, Name: "fotosElenco"},
			CastNames:  Field{ID: c.NomeElenco, Name: "nomeElenco"},
			Type:       Field{ID: c.Tipo, Name: "tipo"},
		},
		Episodes: EpisodeFields{
			Title:   Field{ID: e.Nome, Name: "nome"},
			Season:  Field{ID: e.Temporada, Name: "temporada"},
			Episode: Field{ID: e.Episodio, Name: "episodio"},
		},
		Banners: BannerFields{
			Image:    Field{ID: b.Imagem, Name: "imagem"},
			Link:     Field{ID: b.Link, Name: "link"},
			Category: Field{ID: b.Categoria, Name: "categoria"},
		},
		Sessions: SessionFields{
			Category: Field{ID: s.Categoria, Name: "categoria"},
			Type:     Field{ID: s.Tipo, Name: "tipo"},
		},
	}
	if err := fm.validate(); err != nil {
		return nil, err
	}
	return fm, nil
}

func (fm *FieldMap) validate() error {
	var missing []string
	check := func(name string, id int64) {
		if id <= 0 {
			missing = append(missing, name)
		}
	}
	check("tables.conteudos", fm.Tables.Content)
	check("tables.episodios", fm.Tables.Episodes)
	check("tables.banners", fm.Tables.Banners)
	check("tables.sessoes", fm.Tables.Sessions)

	for _, f := range []Field{
		fm.Content.Cover, fm.Content.Title, fm.Content.Link, fm.Content.Synopsis,
		fm.Content.Category, fm.Content.Year, fm.Content.Duration, fm.Content.Trailer,
		fm.Content.CastPhotos, fm.Content.CastNames, fm.Content.Type,
	} {
		check("fields.conteudos."+f.Name, f.ID)
	}
	for _, f := range []Field{fm.Episodes.Title, fm.Episodes.Season, fm.Episodes.Episode} {
		check("fields.episodios."+f.Name, f.ID)
	}
	for _, f := range []Field{fm.Banners.Image, fm.Banners.Link, fm.Banners.Category} {
		check("fields.banners."+f.Name, f.ID)
	}
	for _, f := range []Field{fm.Sessions.Category, fm.Sessions.Type} {
		check("fields.sessoes."+f.Name, f.ID)
	}

	if len(missing) > 0 {
		return fmt.Errorf("字段映射缺少ID: %s", strings.Join(missing, ", "))
	}
	return nil
}
