package decode

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Map 将 map[string]any 解码为具体业务结构（json tag 对齐）
func Map[T any](in map[string]any) (*T, error) {
	if in == nil {
		return nil, errors.New("nil payload map")
	}
	out := new(T)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new decoder")
	}
	if err := dec.Decode(in); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return out, nil
}

// Raw 将 json.RawMessage 解码为具体业务结构
func Raw[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty payload")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal payload")
	}
	return Map[T](m)
}
