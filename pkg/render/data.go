package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadData reads the initial bindings of a context from a file. The format is
// chosen by the extension: .yaml or .yml, .toml, or .json.
func LoadData(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Decode(Format(path), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Format returns the data format of a file name, one of "yaml", "toml" and
// "json", or its extension without the dot if it is not known.
func Format(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

// Decode decodes a document whose top level is a mapping. Numbers become int
// when integral and float64 otherwise.
func Decode(format string, r io.Reader) (map[string]any, error) {
	m := map[string]any{}
	switch format {
	case "yaml":
		err := yaml.NewDecoder(r).Decode(&m)
		if err != nil && err != io.EOF {
			return nil, err
		}
	case "toml":
		if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
			return nil, err
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported data format %q", format)
	}
	for k, v := range m {
		m[k] = normalize(v)
	}
	return m, nil
}

func normalize(v any) any {
	switch v := v.(type) {
	case int64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, _ := v.Float64()
		return f
	case []any:
		for i, elem := range v {
			v[i] = normalize(elem)
		}
		return v
	case []map[string]any:
		// TOML arrays of tables.
		res := make([]any, len(v))
		for i, elem := range v {
			res[i] = normalize(elem)
		}
		return res
	case map[string]any:
		for k, elem := range v {
			v[k] = normalize(elem)
		}
		return v
	case map[any]any:
		for k, elem := range v {
			v[k] = normalize(elem)
		}
		return v
	}
	return v
}
