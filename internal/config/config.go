package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Postgres PostgresConfig `mapstructure:"postgres"` // 观看历史库配置（DSN为空则不启用）
	RowStore RowStoreConfig `mapstructure:"rowstore"` // 表格后端（Baserow）配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// Enabled 是否配置了数据库
func (p *PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != ""
}

// GetGORMConfig 获取GORM配置
func (p *PostgresConfig) GetGORMConfig() gorm.Config {
	return gorm.Config{}
}

// RowStoreConfig 表格后端的访问配置，启动时固定，运行期只读
type RowStoreConfig struct {
	BaseURL        string        `mapstructure:"base_url"`         // API基础地址，如 http://host/api
	AuthToken      string        `mapstructure:"auth_token"`       // 认证Token
	AuthScheme     string        `mapstructure:"auth_scheme"`      // Authorization头前缀（Baserow为Token）
	Timeout        int           `mapstructure:"timeout"`          // 单次请求超时（秒）
	RetryCount     int           `mapstructure:"retry_count"`      // 总尝试次数
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`        // 列表缓存有效期
	Proxy          string        `mapstructure:"proxy"`            // 代理地址
	UserFieldNames bool          `mapstructure:"user_field_names"` // 请求时是否带 user_field_names=true
	Tables         TablesConfig  `mapstructure:"tables"`           // 各表ID
	Fields         FieldsConfig  `mapstructure:"fields"`           // 各表字段ID
}

// TablesConfig 各业务表在后端的数字ID
type TablesConfig struct {
	Conteudos int64 `mapstructure:"conteudos"`
	Episodios int64 `mapstructure:"episodios"`
	Banners   int64 `mapstructure:"banners"`
	Sessoes   int64 `mapstructure:"sessoes"`
}

// FieldsConfig 各表逻辑字段名 → 数字字段ID
type FieldsConfig struct {
	Conteudos ContentFieldsConfig `mapstructure:"conteudos"`
	Episodios EpisodeFieldsConfig `mapstructure:"episodios"`
	Banners   BannerFieldsConfig  `mapstructure:"banners"`
	Sessoes   SessionFieldsConfig `mapstructure:"sessoes"`
}

type ContentFieldsConfig struct {
	Capa        int64 `mapstructure:"capa"`
	Nome        int64 `mapstructure:"nome"`
	Link        int64 `mapstructure:"link"`
	Sinopse     int64 `mapstructure:"sinopse"`
	Categoria   int64 `mapstructure:"categoria"`
	Ano         int64 `mapstructure:"ano"`
	Duracao     int64 `mapstructure:"duracao"`
	Trailer     int64 `mapstructure:"trailer"`
	FotosElenco int64 `mapstructure:"fotos_elenco"`
	NomeElenco  int64 `mapstructure:"nome_elenco"`
	Tipo        int64 `mapstructure:"tipo"`
}

type EpisodeFieldsConfig struct {
	Nome      int64 `mapstructure:"nome"`
	Temporada int64 `mapstructure:"temporada"`
	Episodio  int64 `mapstructure:"episodio"`
}

type BannerFieldsConfig struct {
	Imagem    int64 `mapstructure:"imagem"`
	Link      int64 `mapstructure:"link"`
	Categoria int64 `mapstructure:"categoria"`
}

type SessionFieldsConfig struct {
	Categoria int64 `mapstructure:"categoria"`
	Tipo      int64 `mapstructure:"tipo"`
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// .env 可不存在
	_ = godotenv.Load()
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录读取 config.yaml；文件不存在时只用默认值+环境变量
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 启动前校验必填项
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RowStore.BaseURL) == "" {
		return errors.New("rowstore.base_url 未配置")
	}
	if c.RowStore.RetryCount <= 0 {
		return fmt.Errorf("rowstore.retry_count 必须大于0，当前: %d", c.RowStore.RetryCount)
	}
	if c.RowStore.CacheTTL <= 0 {
		return fmt.Errorf("rowstore.cache_ttl 必须大于0，当前: %s", c.RowStore.CacheTTL)
	}
	return nil
}

// setDefaults 表ID与字段ID默认取线上 Baserow 库的值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)

	v.SetDefault("rowstore.auth_scheme", "Token")
	v.SetDefault("rowstore.timeout", 10)
	v.SetDefault("rowstore.retry_count", 3)
	v.SetDefault("rowstore.cache_ttl", 5*time.Minute)
	v.SetDefault("rowstore.user_field_names", true)

	v.SetDefault("rowstore.tables.conteudos", 4400)
	v.SetDefault("rowstore.tables.episodios", 5175)
	v.SetDefault("rowstore.tables.banners", 5352)
	v.SetDefault("rowstore.tables.sessoes", 5353)

	v.SetDefault("rowstore.fields.conteudos.capa", 34665)
	v.SetDefault("rowstore.fields.conteudos.nome", 29998)
	v.SetDefault("rowstore.fields.conteudos.link", 29999)
	v.SetDefault("rowstore.fields.conteudos.sinopse", 30000)
	v.SetDefault("rowstore.fields.conteudos.categoria", 34666)
	v.SetDefault("rowstore.fields.conteudos.ano", 34667)
	v.SetDefault("rowstore.fields.conteudos.duracao", 34668)
	v.SetDefault("rowstore.fields.conteudos.trailer", 34669)
	v.SetDefault("rowstore.fields.conteudos.fotos_elenco", 34670)
	v.SetDefault("rowstore.fields.conteudos.nome_elenco", 34671)
	v.SetDefault("rowstore.fields.conteudos.tipo", 34672)

	v.SetDefault("rowstore.fields.episodios.nome", 35682)
	v.SetDefault("rowstore.fields.episodios.temporada", 35684)
	v.SetDefault("rowstore.fields.episodios.episodio", 35685)

	v.SetDefault("rowstore.fields.banners.imagem", 35687)
	v.SetDefault("rowstore.fields.banners.link", 35689)
	v.SetDefault("rowstore.fields.banners.categoria", 35692)

	v.SetDefault("rowstore.fields.sessoes.categoria", 35693)
	v.SetDefault("rowstore.fields.sessoes.tipo", 35694)
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("ROWSTORE_BASE_URL"); v != "" {
		cfg.RowStore.BaseURL = v
	}
	if v := os.Getenv("ROWSTORE_AUTH_TOKEN"); v != "" {
		cfg.RowStore.AuthToken = v
	}
	if v := os.Getenv("ROWSTORE_PROXY"); v != "" {
		cfg.RowStore.Proxy = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
