package media

import (
	"fmt"
	"os"
	"path/filepath"
)

// PrepareRoot makes sure the media root exists, is a directory and can be
// written to, creating it when missing.
func PrepareRoot(root string) error {
	if root == "" {
		return fmt.Errorf("media root cannot be empty")
	}
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("cannot create media root: %w", err)
		}
	case err != nil:
		return fmt.Errorf("cannot access media root: %w", err)
	case !info.IsDir():
		return fmt.Errorf("media root exists but is not a directory: %s", root)
	}

	if err := checkWritePermission(root); err != nil {
		return fmt.Errorf("no write permission for media root: %w", err)
	}
	return nil
}

func checkWritePermission(dir string) error {
	f, err := os.CreateTemp(dir, ".cropduster_write_check")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
