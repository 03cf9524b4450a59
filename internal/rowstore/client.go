package rowstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"PipocaFlix/internal/config"
	"PipocaFlix/internal/model"
	"PipocaFlix/internal/utils/httpclient"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultAttempts 未配置时的总尝试次数
	DefaultAttempts = 3
	// DefaultCacheTTL 未配置时列表缓存的有效期
	DefaultCacheTTL = 5 * time.Minute
	// SearchPageSize 搜索固定返回条数
	SearchPageSize = 50

	maxErrorBody = 256
)

// Params 列表请求的查询参数
type Params map[string]string

// Sleeper 重试前的等待，ctx 取消时应尽快返回错误
type Sleeper func(ctx context.Context, d time.Duration) error

// Client 表格后端（Baserow）客户端：认证、重试退避、列表缓存
type Client struct {
	baseURL        string
	attempts       int
	cacheTTL       time.Duration
	userFieldNames bool
	httpClient     *http.Client
	now            func() time.Time
	sleep          Sleeper
	cache          *Cache
	logger         *logrus.Logger
}

// Option 构造时的可选项，主要给测试注入时钟/等待/HTTP客户端
type Option func(*Client)

// WithClock 注入缓存时钟
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithSleeper 注入重试等待
func WithSleeper(sleep Sleeper) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithHTTPClient 替换默认HTTP客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient 创建客户端，每个进程一个实例，显式注入给使用方
func NewClient(cfg *config.RowStoreConfig, logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		attempts:       cfg.RetryCount,
		cacheTTL:       cfg.CacheTTL,
		userFieldNames: cfg.UserFieldNames,
		now:            time.Now,
		sleep:          sleepContext,
		logger:         logger,
	}
	if c.attempts <= 0 {
		c.attempts = DefaultAttempts
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = DefaultCacheTTL
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.NewHTTPClient(cfg, logger)
	}
	c.cache = NewCache(c.cacheTTL, c.now)
	return c
}

// CacheKey 由表与参数生成缓存键；url.Values.Encode 按键排序，参数顺序不影响结果
func CacheKey(tableID int64, params Params) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return fmt.Sprintf("table_%d_%s", tableID, values.Encode())
}

// FetchRows 列表查询。命中未过期缓存直接返回；请求最终失败但存在（哪怕过期的）缓存时返回缓存，只记日志
func (c *Client) FetchRows(ctx context.Context, tableID int64, params Params) (*model.RawRowSet, error) {
	key := CacheKey(tableID, params)
	if data, ok := c.cache.Fresh(key); ok {
		metricCache.WithLabelValues("hit").Inc()
		c.logger.WithField("cache_key", key).Debug("返回缓存数据")
		return data, nil
	}
	metricCache.WithLabelValues("miss").Inc()

	var set model.RawRowSet
	if err := c.getWithRetry(ctx, tableID, c.listURL(tableID, params), &set); err != nil {
		if stale, ok := c.cache.Get(key); ok {
			metricCache.WithLabelValues("stale").Inc()
			c.logger.WithError(err).WithField("cache_key", key).Warn("请求失败，返回过期缓存")
			return stale, nil
		}
		return nil, err
	}
	if set.Results == nil {
		set.Results = []model.RawRow{}
	}

	c.cache.Put(key, &set)
	return &set, nil
}

// FetchRowByID 单行查询，不走缓存，失败总是返回错误
func (c *Client) FetchRowByID(ctx context.Context, tableID, rowID int64) (model.RawRow, error) {
	var row model.RawRow
	if err := c.getWithRetry(ctx, tableID, c.rowURL(tableID, rowID), &row); err != nil {
		return nil, err
	}
	return row, nil
}

// SearchRows 全文搜索，固定 size=50，与 FetchRows 共用缓存/重试
func (c *Client) SearchRows(ctx context.Context, tableID int64, term string) (*model.RawRowSet, error) {
	return c.FetchRows(ctx, tableID, Params{
		"search": term,
		"size":   strconv.Itoa(SearchPageSize),
	})
}

// ClearCache 清空所有缓存条目
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.logger.Info("rowstore 缓存已清空")
}

func (c *Client) listURL(tableID int64, params Params) string {
	query := url.Values{}
	if c.userFieldNames {
		query.Set("user_field_names", "true")
	}
	for k, v := range params {
		query.Set(k, v)
	}
	u := fmt.Sprintf("%s/database/rows/table/%d/", c.baseURL, tableID)
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func (c *Client) rowURL(tableID, rowID int64) string {
	u := fmt.Sprintf("%s/database/rows/table/%d/%d/", c.baseURL, tableID, rowID)
	if c.userFieldNames {
		u += "?user_field_names=true"
	}
	return u
}

// getWithRetry 顺序尝试，第i次（从0开始）失败后等待 2^i 秒，最后一次失败后不再等待
func (c *Client) getWithRetry(ctx context.Context, tableID int64, rawURL string, out any) error {
	table := strconv.FormatInt(tableID, 10)
	retryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var lastErr error
	attempts := 0
	operation := func() error {
		attempts++
		err := c.get(ctx, rawURL, out)
		if err != nil {
			lastErr = err
			c.logger.WithError(err).WithFields(logrus.Fields{
				"table":   tableID,
				"attempt": attempts,
			}).Warn("rowstore 请求失败")
		}
		return err
	}
	notify := func(_ error, _ time.Duration) {
		metricRetries.WithLabelValues(table).Inc()
	}
	timer := &sleeperTimer{ctx: retryCtx, cancel: cancel, sleep: c.sleep}

	err := backoff.RetryNotifyWithTimer(operation, retryPolicy(retryCtx, c.attempts), notify, timer)
	if err == nil {
		metricRequests.WithLabelValues(table, "ok").Inc()
		return nil
	}
	metricRequests.WithLabelValues(table, "error").Inc()

	cause := lastErr
	if timer.err != nil {
		cause = &TransportError{Op: "request", Err: timer.err}
	} else if cause == nil {
		cause = &TransportError{Op: "request", Err: err}
	}
	return &RetriesExhaustedError{Attempts: attempts, Cause: cause}
}

// retryPolicy 1s 起步、每次翻倍、无抖动，共 attempts 次尝试
func retryPolicy(ctx context.Context, attempts int) backoff.BackOffContext {
	if attempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = time.Second
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Hour
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// sleeperTimer 让 backoff 的等待走可注入的 Sleeper；Sleeper 出错时取消重试
type sleeperTimer struct {
	ctx    context.Context
	cancel context.CancelFunc
	sleep  Sleeper
	ch     chan time.Time
	err    error
}

func (t *sleeperTimer) Start(d time.Duration) {
	t.ch = make(chan time.Time, 1)
	if err := t.sleep(t.ctx, d); err != nil {
		t.err = err
		t.cancel()
		return
	}
	t.ch <- time.Now()
}

func (t *sleeperTimer) Stop() {}

func (t *sleeperTimer) C() <-chan time.Time {
	return t.ch
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	start := time.Now()
	defer func() { metricRequestDuration.Observe(time.Since(start).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransportError{Op: "request", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "request", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Errorf("关闭rowstore响应体失败: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read", Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: "decode", Err: err}
	}
	return nil
}

// sleepContext 默认 Sleeper，ctx 取消时提前返回
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
