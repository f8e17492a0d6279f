package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/treadline/tiredex/internal/domain"
)

func TestSnapshot_ValidCatalog(t *testing.T) {
	repo := New(filepath.Join("testdata", "valid.json"))

	snap, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if snap.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", snap.Len())
	}

	items := snap.Items()
	if items[0].BrandCommon() != "Michelin" {
		t.Errorf("items[0].BrandCommon() = %q", items[0].BrandCommon())
	}
	if items[1].Size() != "225/45R17" {
		t.Errorf("items[1].Size() = %q", items[1].Size())
	}
	if price, ok := items[0].Extra("price"); !ok || string(price) != "3200" {
		t.Errorf("pass-through price = %s, ok=%v", price, ok)
	}

	tax := snap.Taxonomy()
	if len(tax.Brands()) != 4 {
		t.Errorf("Brands() = %v", tax.Brands())
	}
	if got := tax.Categories(); len(got) != 2 {
		t.Errorf("Categories() = %v", got)
	}
}

func TestSnapshot_MissingFile(t *testing.T) {
	repo := New(filepath.Join("testdata", "does_not_exist.json"))

	_, err := repo.Snapshot(context.Background())
	if !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
}

func TestSnapshot_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"missing tires collection", "missing_tires.json"},
		{"missing keyword mapping", "missing_mapping.json"},
		{"taxonomy without brand entry", "no_brand_entry.json"},
		{"malformed json", "malformed.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := New(filepath.Join("testdata", tt.file))
			_, err := repo.Snapshot(context.Background())
			if !errors.Is(err, domain.ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestSnapshot_ReloadsByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tires.json")
	writeCatalog(t, path, `{"tires":[],"keyword_mapping":{"brand":["A"],"suv":["suv"]}}`)

	repo := New(path)
	snap, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d", snap.Len())
	}

	writeCatalog(t, path,
		`{"tires":[{"brand_common_name":"A","size":"R16"}],"keyword_mapping":{"brand":["A"],"suv":["suv"]}}`)

	snap, err = repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot after rewrite: %v", err)
	}
	if snap.Len() != 1 {
		t.Errorf("expected reload to pick up new item, got %d", snap.Len())
	}
}

func TestSnapshot_CacheKeepsFirstLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tires.json")
	writeCatalog(t, path, `{"tires":[],"keyword_mapping":{"brand":["A"],"suv":["suv"]}}`)

	repo := New(path).WithCache()
	if _, err := repo.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// Removing the file must not matter once cached.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	snap, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("cached Snapshot: %v", err)
	}
	if snap.Len() != 0 {
		t.Errorf("unexpected snapshot content: %d items", snap.Len())
	}
}

func writeCatalog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}
