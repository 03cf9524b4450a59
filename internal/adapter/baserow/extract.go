package baserow

import (
	"regexp"
	"strconv"
	"strings"

	"PipocaFlix/internal/model"
)

var videoURLPattern = regexp.MustCompile(`https?://[^\s]+`)

// lookup 先取 field_<id>，不存在再按可读名称取（大小写不敏感）
func lookup(row model.RawRow, f Field) (any, bool) {
	if v, ok := row[f.Key()]; ok && v != nil {
		return v, true
	}
	if v, ok := row[f.Name]; ok && v != nil {
		return v, true
	}
	for k, v := range row {
		if v != nil && strings.EqualFold(k, f.Name) {
			return v, true
		}
	}
	return nil, false
}

// textOr 文本字段，空值用 def 兜底
func textOr(row model.RawRow, f Field, def string) string {
	v, ok := lookup(row, f)
	if !ok {
		return def
	}
	s := textValue(v)
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// intOr 数字字段，缺失、为0或无法解析时用 def 兜底
func intOr(row model.RawRow, f Field, def int) int {
	v, ok := lookup(row, f)
	if !ok {
		return def
	}
	if n := intValue(v); n != 0 {
		return n
	}
	return def
}

// textValue 兼容字符串、数字、单选（{"value": ...}）、多选/关联（数组）
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		return textValue(t["value"])
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := textValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	case map[string]any:
		return intValue(t["value"])
	}
	return 0
}

// attachmentURL 优先原图 url，其次 large 缩略图
func attachmentURL(v any) string {
	switch a := v.(type) {
	case map[string]any:
		if u, _ := a["url"].(string); u != "" {
			return u
		}
		if thumbs, ok := a["thumbnails"].(map[string]any); ok {
			if large, ok := thumbs["large"].(map[string]any); ok {
				if u, _ := large["url"].(string); u != "" {
					return u
				}
			}
		}
	case model.Attachment:
		if a.URL != "" {
			return a.URL
		}
		if a.Thumbnails.Large != nil {
			return a.Thumbnails.Large.URL
		}
	}
	return ""
}

func attachmentList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []model.Attachment:
		list := make([]any, len(t))
		for i := range t {
			list[i] = t[i]
		}
		return list
	}
	return nil
}

// ExtractImageURL 取第一个附件的地址，字段为空或无地址时返回占位图
func ExtractImageURL(v any) string {
	list := attachmentList(v)
	if len(list) == 0 {
		return model.PlaceholderImage
	}
	if u := attachmentURL(list[0]); u != "" {
		return u
	}
	return model.PlaceholderImage
}

// ExtractImageURLs 所有附件的地址，取不到地址的项丢弃
func ExtractImageURLs(v any) []string {
	list := attachmentList(v)
	urls := make([]string, 0, len(list))
	for _, item := range list {
		if u := attachmentURL(item); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// ExtractVideoLink 取文本中第一个 http(s) 地址；没有则原样返回（调用方需容忍非URL）
func ExtractVideoLink(text string) string {
	if text == "" {
		return ""
	}
	if m := videoURLPattern.FindString(text); m != "" {
		return m
	}
	return text
}
