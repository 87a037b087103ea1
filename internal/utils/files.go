package utils

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(fs afero.Fs, dir string) error {
	return fs.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(fs afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// UniquePath returns dir/base+ext, or the first free dir/base__N+ext (N >= 2)
// when that name is already taken.
func UniquePath(fs afero.Fs, dir, base, ext string) (string, error) {
	path := filepath.Join(dir, base+ext)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return "", err
	}
	for idx := 2; exists; idx++ {
		path = filepath.Join(dir, fmt.Sprintf("%s__%d%s", base, idx, ext))
		if exists, err = afero.Exists(fs, path); err != nil {
			return "", err
		}
	}
	return path, nil
}

// SlugName lowercases s and keeps letters and digits, turning spaces,
// dashes and underscores into single dashes.
func SlugName(s, fallback string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if !strings.HasSuffix(b.String(), "-") {
				b.WriteRune('-')
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return fallback
	}
	return out
}
