package httpclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"PipocaFlix/internal/config"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout 未配置超时时单次请求的上限
const DefaultTimeout = 10 * time.Second

// NewHTTPClient 表格后端专用HTTP客户端（代理、超时、认证头）
func NewHTTPClient(cfg *config.RowStoreConfig, logger *logrus.Logger) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  false,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	// 配置代理
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", cfg.Proxy).Warn("代理地址解析失败，将不使用代理")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", cfg.Proxy).Info("HTTP客户端已配置代理")
		}
	}

	timeout := DefaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: NewAuthTransport(transport, cfg.AuthScheme, cfg.AuthToken),
	}
}

// NewAuthTransport 给每个请求补上 Authorization / Content-Type 头
func NewAuthTransport(next http.RoundTripper, scheme, token string) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	scheme = strings.TrimSpace(scheme)
	if scheme == "" {
		scheme = "Token"
	}
	return &authTransport{transport: next, authorization: scheme + " " + token}
}

type authTransport struct {
	transport     http.RoundTripper
	authorization string
}

func (a *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTripper 不能修改传入的请求
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", a.authorization)
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	return a.transport.RoundTrip(r)
}
