package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDBPath(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, devDirName)

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{
			name:     "Normal Mode - Relative File",
			userPath: "biji.db",
			expected: "biji.db",
		},
		{
			name:     "Normal Mode - Specific Path",
			userPath: "/some/path/notes.db",
			expected: "/some/path/notes.db",
		},
		{
			name:      "Dev Mode - Empty Path",
			userPath:  "",
			forceTemp: true,
			expected:  filepath.Join(devBase, "default.db"),
		},
		{
			name:      "Dev Mode - Relative Name",
			userPath:  "notes.db",
			forceTemp: true,
			expected:  filepath.Join(devBase, "notes.db"),
		},
		{
			name:      "Dev Mode - Clean Name",
			userPath:  "../bad/path.db",
			forceTemp: true,
			expected:  filepath.Join(devBase, "path.db"),
		},
		{
			name:      "Dev Mode - Exception for Temp Dir",
			userPath:  filepath.Join(tempRoot, "my-test", "biji.db"),
			forceTemp: true,
			expected:  filepath.Join(tempRoot, "my-test", "biji.db"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDBPath(tt.userPath, tt.forceTemp)
			if got != tt.expected {
				t.Errorf("ResolveDBPath(%q, %v) = %q; want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	// This test runs inside "go test", so IsDevRun() MUST return true.
	if !IsDevRun() {
		t.Errorf("IsDevRun() = false; want true inside go test")
	}
}
