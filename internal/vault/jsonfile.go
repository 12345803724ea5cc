package vault

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// readJSON decodes path into v. A missing file leaves v untouched and
// reports false.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// writeJSON writes v to path and returns the hash of the bytes written.
func writeJSON(path string, v any) (uint64, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

// fileHash returns the hash of the file at path, or 0 if it cannot be read.
func fileHash(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// cloneMap deep-copies a JSON-shaped map.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
