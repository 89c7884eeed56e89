package mux

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NextAvailablePath returns base if it does not exist, else the first free
// name of the form stem_N.ext with N counting from 1.
func NextAvailablePath(base string) (string, error) {
	free, err := notExists(base)
	if err != nil || free {
		return base, err
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		p := fmt.Sprintf("%s_%d%s", stem, i, ext)
		free, err := notExists(p)
		if err != nil {
			return "", err
		}
		if free {
			return p, nil
		}
	}
}

func notExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("mux: stat %q: %w", path, err)
}
