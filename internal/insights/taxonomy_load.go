package insights

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadTaxonomy reads a taxonomy file. The format is chosen by extension:
// .yaml/.yml, .toml or .json.
func LoadTaxonomy(path string) (Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	t, err := ParseTaxonomy(filepath.Ext(path), data)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTaxonomy decodes data in the format named by ext and validates it.
func ParseTaxonomy(ext string, data []byte) (Taxonomy, error) {
	var t Taxonomy
	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &t)
	case "toml":
		err = toml.Unmarshal(data, &t)
	case "json":
		err = json.Unmarshal(data, &t)
	default:
		return Taxonomy{}, fmt.Errorf("%w: %q", ErrUnsupportedTaxonomyFormat, ext)
	}
	if err != nil {
		return Taxonomy{}, fmt.Errorf("decode taxonomy: %w", err)
	}
	t = t.Clone()
	if err := t.Validate(); err != nil {
		return Taxonomy{}, err
	}
	return t, nil
}

// MarshalTaxonomy encodes t in the format named by ext.
func MarshalTaxonomy(ext string, t Taxonomy) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		return yaml.Marshal(t)
	case "toml":
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(t); err != nil {
			return nil, err
		}
		return []byte(sb.String()), nil
	case "json":
		return json.MarshalIndent(t, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedTaxonomyFormat, ext)
}
