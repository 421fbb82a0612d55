package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigYAML is written on first run so users have a commented
// file to edit instead of guessing key names.
const defaultConfigYAML = `# tdc configuration.
#
# data_dir is the root for both stores. Leave empty for the platform
# default (e.g. ~/.config/transport-data). Layout:
#   <data_dir>/local      per-user cache, safe to delete
#   <data_dir>/registry   working copy of the shared registry
data_dir: ""

registry:
  # Git remote for "tdc store clone" / "tdc store update".
  remote_url: "https://github.com/transport-data/registry.git"
  # Artefacts maintained by these ids are read from and written to the
  # registry; all others go to the local cache.
  maintainers:
    - TDCI

cache:
  enabled: true
  ttl: 10m
`

// WriteDefaultConfig writes the commented default config to path,
// creating parent directories. Write is atomic (temp file + rename) so a
// crash cannot leave a half-written config.
func WriteDefaultConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".tdc.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.WriteString(defaultConfigYAML); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
