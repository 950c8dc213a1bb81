package entity

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads an entity list from path. The file is a JSON array, or a YAML
// sequence when the extension is .yaml or .yml, of objects carrying "title"
// and creatorField (e.g. "artist"). Missing fields load as empty strings.
func Load(fs afero.Fs, path, creatorField string) ([]Entity, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading entity list: %w", err)
	}

	var raw []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing entity list %s: %w", path, err)
	}

	entities := make([]Entity, 0, len(raw))
	for i, item := range raw {
		entities = append(entities, Entity{
			Title:   stringField(item, "title"),
			Creator: stringField(item, creatorField),
			Index:   i,
		})
	}
	return entities, nil
}

func stringField(item map[string]any, name string) string {
	switch v := item[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
