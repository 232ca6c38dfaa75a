package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/tratativa/internal/config"
	"github.com/hpungsan/tratativa/internal/errors"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want FileFormat
		ok   bool
	}{
		{"t.jsonl", FormatJSONL, true},
		{"t.JSONL", FormatJSONL, true},
		{"t.yaml", FormatYAML, true},
		{"t.yml", FormatYAML, true},
		{"t.json", "", false},
		{"t", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatForPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatForPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValidatePath_Rejections(t *testing.T) {
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed}

	sub := filepath.Join(allowed, "sub")
	if err := os.MkdirAll(sub, 0700); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"parent traversal", "../t.jsonl"},
		{"mid-path traversal", allowed + "/../t.jsonl"},
		{"forward slash traversal", "a/../../t.yaml"},
		{"no extension", filepath.Join(allowed, "t")},
		{"wrong extension", filepath.Join(allowed, "t.json")},
		{"outside allowed dirs", filepath.Join(t.TempDir(), "t.jsonl")},
		{"nested in allowed dir", filepath.Join(sub, "t.jsonl")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, PathCheckWrite, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestValidatePath_AllowedDir(t *testing.T) {
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	for _, name := range []string{"t.jsonl", "t.yaml", "t.yml"} {
		if err := ValidatePath(filepath.Join(allowed, name), PathCheckWrite, cfg); err != nil {
			t.Errorf("write %s: %v", name, err)
		}
	}

	err := ValidatePath(filepath.Join(allowed, "missing.jsonl"), PathCheckRead, cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("read missing: expected ErrFileNotFound, got %v", err)
	}
}

func TestValidatePath_DefaultExportsDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultExportsDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(home, ".tratativa", "exports") {
		t.Errorf("DefaultExportsDir() = %q", dir)
	}
	if err := ValidatePath(filepath.Join(dir, "t.jsonl"), PathCheckWrite, config.DefaultConfig()); err != nil {
		t.Errorf("default exports dir rejected: %v", err)
	}
}

func TestValidatePath_AllowUnsafePaths(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	dir := t.TempDir()

	if err := ValidatePath(filepath.Join(dir, "t.jsonl"), PathCheckWrite, cfg); err != nil {
		t.Errorf("unsafe mode should allow any directory: %v", err)
	}
	// The extension rule still applies.
	if err := ValidatePath(filepath.Join(dir, "t.txt"), PathCheckWrite, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestValidatePath_Symlinks(t *testing.T) {
	allowed := t.TempDir()
	target := filepath.Join(t.TempDir(), "secret.jsonl")
	if err := os.WriteFile(target, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(allowed, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	restricted := config.DefaultConfig()
	restricted.AllowedPaths = []string{allowed}
	unsafe := config.DefaultConfig()
	unsafe.AllowUnsafePaths = true

	for _, cfg := range []*config.Config{restricted, unsafe} {
		for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
			if err := ValidatePath(link, mode, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("unsafe=%v mode=%d: expected ErrInvalidRequest, got %v", cfg.AllowUnsafePaths, mode, err)
			}
		}
	}
}

func TestValidatePath_SymlinkedAllowedDir(t *testing.T) {
	realDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(t.TempDir(), "exports")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{link}

	// Entries resolve to their target, so the real directory is accepted.
	if err := ValidatePath(filepath.Join(realDir, "t.jsonl"), PathCheckWrite, cfg); err != nil {
		t.Errorf("resolved allowed dir rejected: %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/home/user/t.jsonl", false},
		{"../t.jsonl", true},
		{"/home/../etc/t.jsonl", true},
		{"./t.jsonl", false},
		{"file..name.jsonl", false},
		{`a\..\t.jsonl`, filepath.Separator == '\\'},
	}
	for _, tt := range tests {
		if got := containsTraversal(tt.path); got != tt.want {
			t.Errorf("containsTraversal(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
