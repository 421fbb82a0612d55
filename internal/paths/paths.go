// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
)

// DataDirEnv overrides the resolved data directory when set.
const DataDirEnv = "TDC_DATA_DIR"

// appDir is the subdirectory of the user config directory holding all
// tdc data (local cache, registry clone, log files).
const appDir = "transport-data"

// ResolveDataDir resolves the root data directory from user input.
//
// Resolution order:
//   - explicit non-empty path argument (e.g. from config or --data-dir)
//   - TDC_DATA_DIR environment variable
//   - <user config dir>/transport-data (e.g. ~/.config/transport-data)
//
// The directory is not created here; backends create what they need on
// first write.
func ResolveDataDir(path string) string {
	if path != "" {
		return filepath.Clean(path)
	}

	if env := os.Getenv(DataDirEnv); env != "" {
		return filepath.Clean(env)
	}

	base, err := os.UserConfigDir()
	if err != nil {
		// Last resort: a dot directory under the working directory, so
		// first use still works in minimal environments.
		return filepath.Join(".", "."+appDir)
	}
	return filepath.Join(base, appDir)
}

// LocalDir returns the local-store root under dataDir.
func LocalDir(dataDir string) string {
	return filepath.Join(dataDir, "local")
}

// RegistryDir returns the registry working-copy root under dataDir.
func RegistryDir(dataDir string) string {
	return filepath.Join(dataDir, "registry")
}

// ConfigDir returns the directory holding the tdc config file.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appDir)
	}
	return filepath.Join(base, "tdc")
}
