package migrate

import (
	"context"
	"testing"
)

func TestUp_BadDSN(t *testing.T) {
	if err := Up(context.Background(), "postgres://user@%zz/db", ""); err == nil {
		t.Fatalf("want error on malformed dsn")
	}
}
