package main

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/formkit"
)

func loadData(name string) (any, formkit.Format, error) {
	f := formkit.FormatOf(name)
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, f, err
	}
	tree, err := formkit.LoadTree(b, f)
	if err != nil {
		return nil, f, fmt.Errorf("%s: %w", name, err)
	}
	return tree, f, nil
}

func encode(v any, f formkit.Format) ([]byte, error) {
	if f == formkit.FormatYAML {
		return yaml.Marshal(v)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeValue(w io.Writer, v any, f formkit.Format) error {
	b, err := encode(v, f)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// parseValue reads a command line value as JSON, falling back to a plain
// string.
func parseValue(s string, raw bool) any {
	if raw {
		return s
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
