package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestFS_ContainsGooseMigrations(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("want embedded migrations, got %v", files)
	}
	for _, f := range files {
		b, err := fs.ReadFile(FS, f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if !strings.Contains(string(b), "-- +goose Up") || !strings.Contains(string(b), "-- +goose Down") {
			t.Fatalf("%s: missing goose annotations", f)
		}
	}
}
