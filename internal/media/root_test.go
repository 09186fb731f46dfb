package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrepareRoot(t *testing.T) {
	tempDir := t.TempDir()

	filePath := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	tests := []struct {
		name        string
		root        string
		expectError bool
	}{
		{name: "existing directory", root: tempDir},
		{name: "missing directory is created", root: filepath.Join(tempDir, "nested", "media")},
		{name: "empty root", root: "", expectError: true},
		{name: "root is a file", root: filePath, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PrepareRoot(tt.root)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected an error for %q", tt.root)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			info, err := os.Stat(tt.root)
			if err != nil || !info.IsDir() {
				t.Errorf("expected %q to be a directory", tt.root)
			}
			entries, _ := os.ReadDir(tt.root)
			for _, e := range entries {
				if strings.HasPrefix(e.Name(), ".cropduster_write_check") {
					t.Errorf("write check file %q was left behind", e.Name())
				}
			}
		})
	}
}
