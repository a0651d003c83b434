package app

import (
	"os"
	"path/filepath"

	"github.com/aurceive/plate_combos/internal/config"
)

// FindConfig looks for config.FileName in dir and up to ten of its parents.
// It returns "" when there is none, which selects the built-in defaults.
func FindConfig(dir string) string {
	for i := 0; i < 10; i++ {
		probe := filepath.Join(dir, config.FileName)
		if st, err := os.Stat(probe); err == nil && !st.IsDir() {
			return probe
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
