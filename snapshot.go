package formkit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names an encoding accepted by LoadTree.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatOf picks a format from a file name; anything that is not .yaml or
// .yml is JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ToTree converts a Go value (typically a struct) into the data tree a
// Store works on, following its json tags. Numbers become float64.
func ToTree(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("formkit: encode: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("formkit: decode: %w", err)
	}
	return out, nil
}

// DecodeData converts the store's current data into T.
func DecodeData[T any](s *Store) (T, error) {
	var out T
	b, err := MarshalData(s)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("formkit: decode: %w", err)
	}
	return out, nil
}

// MarshalData encodes the store's current data as JSON.
func MarshalData(s *Store) ([]byte, error) {
	b, err := json.Marshal(s.Data())
	if err != nil {
		return nil, fmt.Errorf("formkit: encode: %w", err)
	}
	return b, nil
}

// LoadTree decodes a single JSON or YAML document into a data tree. YAML
// mappings with non-string keys are converted with fmt.Sprint keys.
func LoadTree(b []byte, f Format) (any, error) {
	var out any
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(&out); err != nil {
			if errors.Is(err, io.EOF) {
				return map[string]any{}, nil
			}
			return nil, fmt.Errorf("formkit: yaml: %w", err)
		}
		return normalizeYAML(out), nil
	default:
		if len(bytes.TrimSpace(b)) == 0 {
			return map[string]any{}, nil
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, fmt.Errorf("formkit: json: %w", err)
		}
		return out, nil
	}
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = normalizeYAML(vv)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		for i, vv := range t {
			t[i] = normalizeYAML(vv)
		}
		return t
	}
	return v
}
