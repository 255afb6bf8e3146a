package service

import "encoding/json"

// Optional 区分“未提供”与“显式设置（包括 null）”，用于可空列的部分更新。
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some 构造一个已设置的值。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON 只要字段出现在请求体中就视为已设置。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}
