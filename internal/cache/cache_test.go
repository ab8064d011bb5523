package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*Cache, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := NewCache(dir, ttl)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	return c, dir
}

func TestNewCache(t *testing.T) {
	t.Run("creates the directory", func(t *testing.T) {
		_, dir := setupTestCache(t, time.Hour)

		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("cache directory %s was not created", dir)
		}
	})

	t.Run("rejects a zero ttl", func(t *testing.T) {
		if _, err := NewCache(t.TempDir(), 0); err == nil {
			t.Error("NewCache() error = nil, want error for zero ttl")
		}
	})
}

func TestKey(t *testing.T) {
	// Act
	k1 := Key("WasmEdge/WasmEdge#42", "2024-03-15T12:00:00Z")
	k2 := Key("WasmEdge/WasmEdge#42", "2024-03-15T12:00:00Z")
	k3 := Key("WasmEdge/WasmEdge#42", "2024-03-16T12:00:00Z")
	k4 := Key("WasmEdge/WasmEdge#4", "22024-03-15T12:00:00Z")

	// Assert
	if k1 != k2 {
		t.Errorf("Key() returned different results for the same parts")
	}
	if k1 == k3 {
		t.Errorf("Key() returned the same result for different parts")
	}
	if k1 == k4 {
		t.Errorf("Key() must not collide when parts shift between positions")
	}
	if len(k1) != 64 {
		t.Errorf("Key() length = %d, want 64", len(k1))
	}
}

func TestCache_SetAndGet(t *testing.T) {
	// Arrange
	c, _ := setupTestCache(t, time.Hour)
	key := Key("issue", "1")

	// Act
	if err := c.Set(key, "Summary: fixed in main"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	var got string
	found, err := c.Get(key, &got)

	// Assert
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() returned found = false, want true")
	}
	if got != "Summary: fixed in main" {
		t.Errorf("Get() value = %q, want %q", got, "Summary: fixed in main")
	}
}

func TestCache_Set_Permissions(t *testing.T) {
	c, dir := setupTestCache(t, time.Hour)

	if err := c.Set("entry", "data"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "entry.json"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("entry mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestCache_Get_NotFound(t *testing.T) {
	c, _ := setupTestCache(t, time.Hour)

	var got string
	found, err := c.Get("non-existent", &got)

	if err != nil {
		t.Errorf("Get() error = %v, want nil", err)
	}
	if found {
		t.Errorf("Get() found = true, want false")
	}
}

func TestCache_Get_Expired(t *testing.T) {
	// Arrange
	c, dir := setupTestCache(t, time.Hour)
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	if err := c.Set("expired", "some data"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	c.now = func() time.Time { return base.Add(2 * time.Hour) }

	// Act
	var got string
	found, err := c.Get("expired", &got)

	// Assert
	if err != nil {
		t.Errorf("Get() error = %v, want nil", err)
	}
	if found {
		t.Errorf("Get() found = true, want false for expired entry")
	}
	if _, err := os.Stat(filepath.Join(dir, "expired.json")); !os.IsNotExist(err) {
		t.Errorf("expired entry was not deleted")
	}
}

func TestCache_CleanExpired(t *testing.T) {
	// Arrange
	c, dir := setupTestCache(t, time.Hour)
	_ = c.Set("fresh", "data")
	_ = c.Set("old", "data")
	oldPath := filepath.Join(dir, "old.json")
	oldTime := time.Now().Add(-2 * time.Hour)
	_ = os.Chtimes(oldPath, oldTime, oldTime)

	// Act
	err := c.CleanExpired()

	// Assert
	if err != nil {
		t.Errorf("CleanExpired() error = %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("old entry was not cleaned up")
	}
	if _, err := os.Stat(filepath.Join(dir, "fresh.json")); os.IsNotExist(err) {
		t.Errorf("fresh entry was incorrectly cleaned up")
	}
}

func TestCache_Clean(t *testing.T) {
	c, dir := setupTestCache(t, time.Hour)
	_ = c.Set("one", "data")
	_ = c.Set("two", "data")

	if err := c.Clean(); err != nil {
		t.Errorf("Clean() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cache directory was not removed by Clean()")
	}
}

func TestCache_Get_Corrupt(t *testing.T) {
	// Arrange
	c, dir := setupTestCache(t, time.Hour)
	path := filepath.Join(dir, "corrupt.json")
	_ = os.WriteFile(path, []byte("invalid json{"), 0o600)

	// Act
	var got string
	found, err := c.Get("corrupt", &got)

	// Assert
	if err == nil {
		t.Error("Get() error = nil, want error for invalid JSON")
	}
	if found {
		t.Error("Get() found = true, want false for invalid JSON")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("corrupt entry was not removed")
	}
}
