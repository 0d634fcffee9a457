package evidence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	perr "signalkit/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a bundle from a JSON or YAML file (by extension; JSON otherwise).
// Unlike Normalize it reports unreadable or malformed files, since the caller named them
func LoadFile(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "evidence: read %s", path)
	}
	var m map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return Bundle{}, perr.Wrapf(err, perr.ErrorCodeJSON, "evidence: decode %s", path)
	}
	return Normalize(m), nil
}

// LoadEvents reads a JSON (or YAML) array of event records
func LoadEvents(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "evidence: read %s", path)
	}
	var xs []any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &xs)
	default:
		err = json.Unmarshal(data, &xs)
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "evidence: decode events %s", path)
	}
	if xs == nil {
		xs = []any{}
	}
	return xs, nil
}
