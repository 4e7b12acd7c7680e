package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
)

// Renderer writes one output document for an inventory.
type Renderer interface {
	Render(w io.Writer, inv *model.Inventory) error
}

// RenderString renders into a string.
func RenderString(r Renderer, inv *model.Inventory) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, inv); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFile renders into path with the given mode. The file is left untouched
// when the rendered content matches what is already there; changed reports
// whether anything was written.
func WriteFile(path string, r Renderer, inv *model.Inventory, mode os.FileMode) (changed bool, err error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, inv); err != nil {
		return false, err
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(existing, buf.Bytes()) {
			return false, os.Chmod(path, mode)
		}
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := replaceFile(path, buf.Bytes(), mode); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// replaceFile writes data to a temporary file next to path and renames it
// into place, so readers never see a truncated file.
func replaceFile(path string, data []byte, mode os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
