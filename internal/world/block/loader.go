package block

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// jsonBlockOverride describes one entry of an external block-data file,
// letting the fuel/recipe tables be data-driven instead of compiled-in
// switch statements.
type jsonBlockOverride struct {
	ID         uint16 `json:"id"`
	FuelTicks  int    `json:"fuel_ticks,omitempty"`
	SmeltsInto uint16 `json:"smelts_into,omitempty"`
}

// LoadJSONOverrides scans a directory of *.json files and applies
// fuel/recipe overrides onto already-registered blocks. Unknown block
// ids are rejected rather than silently ignored.
func LoadJSONOverrides(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		dec := json.NewDecoder(file)
		var spec jsonBlockOverride
		if err := dec.Decode(&spec); err != nil {
			return fmt.Errorf("block override %s: %w", path, err)
		}

		id := BlockId(spec.ID)
		info, ok := Get(id)
		if !ok {
			return fmt.Errorf("block override %s: unknown block id %d", path, spec.ID)
		}
		if spec.FuelTicks > 0 {
			info.FuelTicks = spec.FuelTicks
		}
		if spec.SmeltsInto != 0 {
			info.SmeltsInto = BlockId(spec.SmeltsInto)
		}
		return nil
	})
}
