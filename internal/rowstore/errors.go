package rowstore

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError 请求没能拿到可用响应（网络错误、读取或解析响应体失败）
type TransportError struct {
	Op  string // request / read / decode
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rowstore %s失败: %v", opName(e.Op), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func opName(op string) string {
	switch op {
	case "read":
		return "读取响应"
	case "decode":
		return "解析响应"
	default:
		return "请求"
	}
}

// HTTPError 后端返回非2xx状态码
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string // 截断后的响应体，便于排查
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.Body)
}

// RetriesExhaustedError 所有尝试均失败，Cause 为最后一次的错误
type RetriesExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("失败 %d 次尝试后放弃: %v", e.Attempts, e.Cause)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Cause }

// IsNotFound 最后一次失败是否为 404（行不存在）
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
