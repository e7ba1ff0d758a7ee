package cache

import (
	"os"
	"path/filepath"
	"testing"

	"terrain-desktop/internal/common"
)

func TestBoundsCacheMemory(t *testing.T) {
	c, err := NewBoundsCache("", &Config{MaxEntries: 2})
	if err != nil {
		t.Fatal(err)
	}

	c.Set("a.tif", common.Bounds{West: 1, South: 2, East: 3, North: 4})
	c.Set("b.tif", common.Bounds{West: 5, South: 6, East: 7, North: 8})
	c.Set("c.tif", common.Bounds{West: 9, South: 10, East: 11, North: 12})

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a.tif"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if b, ok := c.Get("c.tif"); !ok || b.North != 12 {
		t.Errorf("Get(c.tif) = %v, %v", b, ok)
	}
}

func TestBoundsCachePersists(t *testing.T) {
	dir := t.TempDir()
	want := common.Bounds{West: 7.5, South: 45.8, East: 7.9, North: 46.1}

	c, err := NewBoundsCache(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("https://example.com/dem.tif", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewBoundsCache(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := reopened.Get("https://example.com/dem.tif")
	if !ok || got != want {
		t.Errorf("reloaded = %v, %v; want %v", got, ok, want)
	}

	if err := reopened.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, indexFile)); !os.IsNotExist(err) {
		t.Errorf("index still present after Clear: %v", err)
	}
}

func TestBoundsCacheIgnoresCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, indexFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := NewBoundsCache(dir, nil)
	if err != nil {
		t.Fatalf("NewBoundsCache: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}
