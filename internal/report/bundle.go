package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/energy-cli/internal/model"
)

// Bundle formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteBundle encodes res to w as JSON or YAML.
func WriteBundle(w io.Writer, res *model.Results, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "bundle: encode json")
		}
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "bundle: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "bundle: encode yaml")
		}
	default:
		return eris.Errorf("bundle: unsupported format %q", format)
	}
	return nil
}

// SaveBundle writes res to path, choosing the format from its extension.
func SaveBundle(path string, res *model.Results) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "bundle: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "bundle: create %s", path)
	}
	if err := WriteBundle(f, res, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
