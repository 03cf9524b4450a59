package main

import (
	"fmt"
	"log"
	"strings"

	"PipocaFlix/internal/adapter/baserow"
	"PipocaFlix/internal/api"
	"PipocaFlix/internal/config"
	"PipocaFlix/internal/repository"
	"PipocaFlix/internal/rowstore"
	"PipocaFlix/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := newLogger(cfg.Log)
	logrusLogger.Info("配置文件加载成功")

	// 3. 表格后端客户端 + 字段映射
	fields, err := baserow.NewFieldMap(&cfg.RowStore)
	if err != nil {
		logrusLogger.Fatalf("字段映射配置错误: %v", err)
	}
	rows := rowstore.NewClient(&cfg.RowStore, logrusLogger)
	catalog := service.NewCatalogService(rows, baserow.NewMapper(fields), logrusLogger)
	logrusLogger.Infof("表格后端: %s（缓存 %s，最多尝试 %d 次）", cfg.RowStore.BaseURL, cfg.RowStore.CacheTTL, cfg.RowStore.RetryCount)

	// 4. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 5. 目录接口（给前端页面用）
	api.NewCatalogHandler(catalog, logrusLogger).Register(r)

	// 6. 观看历史（配置了 PostgreSQL 才启用）
	if cfg.Postgres.Enabled() {
		db, err := repository.OpenDatabase(&cfg.Postgres, logrusLogger)
		if err != nil {
			logrusLogger.Fatalf("初始化观看历史库失败: %v", err)
		}
		history := service.NewHistoryService(repository.NewHistoryRepository(db), logrusLogger)
		api.NewHistoryHandler(history, logrusLogger).Register(r)
	} else {
		logrusLogger.Warn("未配置 postgres.dsn，观看历史接口不启用")
	}

	// 7. 启动服务（从配置读取端口）
	port := cfg.Server.Port
	logrusLogger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logrusLogger.Fatalf("启动服务失败: %v", err)
	}
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
