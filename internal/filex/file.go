// Package filex has filesystem helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnsureDir creates dir (relative paths resolve against the working
// directory) with owner-only permissions and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// FreeName returns a path for name inside dir that does not exist yet,
// adding "-1", "-2", ... before the extension when needed.
func FreeName(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	p := filepath.Join(dir, name)
	for i := 1; ; i++ {
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			return p
		}
		p = filepath.Join(dir, stem+"-"+strconv.Itoa(i)+ext)
	}
}
