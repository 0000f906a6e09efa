package tavern

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// WriteFile writes data to dst through a temporary file in the same
// directory and renames it into place, so readers never see partial output.
func WriteFile(dst string, data []byte, overwrite bool) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewError("write", dst, 0, "failed to create output directory", err)
	}

	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return domain.NewErrorWithSuggestion("write", dst, 0, "destination already exists",
				"set output.overwrite to true or remove the file",
				domain.ErrDestinationConflict)
		}
	}

	tmp, err := os.CreateTemp(dir, ".vtc2tavern-*.tmp")
	if err != nil {
		return domain.NewError("write", dst, 0, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return domain.NewError("write", dst, 0, "failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewError("write", dst, 0, "failed to close temp file", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return domain.NewError("write", dst, 0, fmt.Sprintf("failed to chmod %s", tmpName), err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return domain.NewError("write", dst, 0, "failed to move output into place", err)
	}
	return nil
}
