package report

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/scorelens-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

// JSON encodes the report as indented JSON. Undefined statistics become null.
func (r *Report) JSON() ([]byte, error) {
	return utils.PrettyJSON(r)
}

// YAML encodes the report as YAML.
func (r *Report) YAML() ([]byte, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// Render encodes the report in the named format: markdown, table, json or yaml.
func (r *Report) Render(format string) ([]byte, error) {
	switch format {
	case "", "markdown", "md":
		return []byte(r.Markdown()), nil
	case "table":
		var buf bytes.Buffer
		if err := r.WriteTable(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		return r.JSON()
	case "yaml", "yml":
		return r.YAML()
	}
	return nil, fmt.Errorf("unsupported format: %s (use markdown, table, json or yaml)", format)
}

// Ext returns the file extension conventionally used for format.
func Ext(format string) string {
	switch format {
	case "json":
		return ".json"
	case "yaml", "yml":
		return ".yaml"
	case "table":
		return ".txt"
	}
	return ".md"
}
