//go:build !darwin

package infer

import (
	"fmt"
	"path/filepath"
)

func resolveSharedLibraryPath(libPath string) (string, error) {
	if libPath == "" {
		return "", fmt.Errorf("empty onnxruntime shared library path")
	}
	return filepath.Abs(libPath)
}
