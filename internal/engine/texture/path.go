package texture

import (
	"path/filepath"
	"strings"
)

// Dir returns the text before the last '/' of a model path, or "" when there
// is none.
func Dir(modelPath string) string {
	p := filepath.ToSlash(modelPath)
	switch i := strings.LastIndex(p, "/"); {
	case i == 0:
		return "/"
	case i > 0:
		return p[:i]
	}
	return ""
}

// ResolvePath joins a material texture path to the model directory dir.
// Backslash separators written by some exporters are accepted. Absolute
// paths, and any path when dir is empty, are returned unjoined.
func ResolvePath(dir, rel string) string {
	p := filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}
