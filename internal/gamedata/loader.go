// Package gamedata holds the ability catalog: definitions decoded from
// embedded JSON, lookup by id and display metadata.
package gamedata

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
)

const abilitiesFile = "abilities.json"

//go:embed abilities.json
var dataFS embed.FS

// Load decodes a JSON file from the embedded catalog data.
func Load[T any](filename string) (T, error) {
	return LoadFS[T](dataFS, filename)
}

// LoadFS decodes a JSON file from fsys. Custom catalogs on disk are read
// through os.DirFS.
func LoadFS[T any](fsys fs.FS, filename string) (T, error) {
	var result T

	content, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return result, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return result, nil
}
