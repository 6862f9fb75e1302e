package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"

	"github.com/goliatone/go-storefront-cms/pkg/storage"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := storage.Open(context.Background(), storage.Config{
		Driver: "sqlite3",
		DSN:    "file:storage_open?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(context.Background(), `CREATE TABLE things (id TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.ExecContext(context.Background(), `INSERT INTO things (id) VALUES ('a')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err = db.ExecContext(context.Background(), `INSERT INTO things (id) VALUES ('a')`)
	if !storage.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if !storage.IsUniqueViolation(fmt.Errorf("insert page: %w", err)) {
		t.Fatalf("expected wrapped unique violation to be detected")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Driver: "oracle"})
	if !errors.Is(err, storage.ErrUnknownDriver) {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
	if storage.IsUniqueViolation(errors.New("connection refused")) {
		t.Fatalf("plain errors are not unique violations")
	}
}

func TestRepositoryDuplicateIsUniqueViolation(t *testing.T) {
	err := goerrors.Wrap(errors.New("insert failed"), repository.CategoryDatabaseDuplicate, "Duplicate key value violates unique constraint")
	if !storage.IsUniqueViolation(err) {
		t.Fatalf("expected repository duplicate to count as unique violation")
	}
	if !storage.IsUniqueViolation(fmt.Errorf("page repository: %w", err)) {
		t.Fatalf("expected wrapped repository duplicate to be detected")
	}
}
