package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir lists the CSV and XLSX files directly inside dataDir. A missing
// directory yields no files and no error.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		format, ok := FormatOf(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, DiscoveredFile{
			Path:   filepath.Join(dataDir, e.Name()),
			Name:   e.Name(),
			Format: format,
			Size:   info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Resolve joins a relative dataset name onto dataDir. Absolute paths are
// returned unchanged.
func Resolve(dataDir, name string) string {
	if name == "" || filepath.IsAbs(name) || dataDir == "" {
		return name
	}
	return filepath.Join(dataDir, name)
}

// LooksLikePlatforms reports whether a file name suggests the platform
// reference table rather than a spending table.
func LooksLikePlatforms(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range []string{"shopping", "platform", "website"} {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
