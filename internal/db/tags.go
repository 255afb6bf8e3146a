package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TagList 是按原顺序保存的标签序列，落库时编码为 JSON 文本。
type TagList []string

// GormDataType 告诉 gorm 以 TEXT 存储。
func (TagList) GormDataType() string {
	return "text"
}

// Value 将标签编码为 JSON 字符串，nil 编码为 "[]"。
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 解析存储的 JSON 文本。空值或无法解析的内容按空列表处理，
// 避免一行脏数据拖垮整个列表查询。
func (t *TagList) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*t = TagList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags value %T", value)
	}

	*t = ParseTags(raw)
	return nil
}

// MarshalJSON 始终输出数组，nil 输出 []。
func (t TagList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON 同时接受数组与 JSON 编码后的字符串（如 "[\"go\"]"）。
func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if list == nil {
			list = []string{}
		}
		*t = list
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("tags must be an array of strings: %w", err)
	}
	if encoded == "" {
		*t = TagList{}
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return fmt.Errorf("tags must be an array of strings: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*t = list
	return nil
}

// ParseTags 解码 JSON 数组文本，失败时返回空列表。
func ParseTags(raw []byte) TagList {
	if len(raw) == 0 {
		return TagList{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return TagList{}
	}
	return list
}
