package model

// RawRow 后端返回的一行原始数据，key 为 field_<id>（或开启 user_field_names 时的字段名）
type RawRow map[string]any

// ID 行主键，后端以数字返回
func (r RawRow) ID() int64 {
	switch v := r["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// RawRowSet 列表接口的根响应
type RawRowSet struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []RawRow `json:"results"`
}

// Attachment 文件字段中的单个附件描述
type Attachment struct {
	URL         string     `json:"url"`
	Name        string     `json:"name"`
	VisibleName string     `json:"visible_name"`
	Thumbnails  Thumbnails `json:"thumbnails"`
}

// Thumbnails 附件缩略图（只用到 large）
type Thumbnails struct {
	Small *Thumbnail `json:"small,omitempty"`
	Large *Thumbnail `json:"large,omitempty"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}
