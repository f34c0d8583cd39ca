package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mloc-go/internal/config"
	"mloc-go/internal/mdb"
)

// buildImage constructs a minimal valid database image with root "/"
// containing a single file entry "a".
func buildImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("\x00mlocate")
	buf.WriteByte(1)          // version
	buf.WriteByte(1)          // visibility flag
	buf.Write([]byte{0, 0})   // padding
	buf.WriteString("/\x00")  // root path
	buf.WriteString("updatedb\x00")

	// Directory record for "/"
	buf.WriteString("/\x00")
	binary.Write(&buf, binary.BigEndian, int64(1700000000))
	binary.Write(&buf, binary.BigEndian, uint32(0))
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteByte(0x00) // file entry
	buf.WriteString("a\x00")
	buf.WriteByte(0x02) // end of entries
	return buf.Bytes()
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewConfig("testhost", dir)
	cfg.Catalog.Type = "memory"

	a, err := NewApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestOpenDatabase(t *testing.T) {
	image := buildImage(t)
	dbPath := filepath.Join(t.TempDir(), "mlocate.db")
	if err := os.WriteFile(dbPath, image, 0644); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t)

	t.Run("valid image", func(t *testing.T) {
		db, err := a.OpenDatabase(context.Background(), dbPath)
		if err != nil {
			t.Fatalf("OpenDatabase() error = %v", err)
		}
		if got := db.Index.Len(); got != 2 {
			t.Errorf("Index.Len() = %d, want 2", got)
		}
		if db.Header.Root != "/" {
			t.Errorf("Header.Root = %q, want %q", db.Header.Root, "/")
		}
	})

	t.Run("truncated image returns partial results", func(t *testing.T) {
		cutPath := filepath.Join(t.TempDir(), "cut.db")
		if err := os.WriteFile(cutPath, image[:len(image)-2], 0644); err != nil {
			t.Fatal(err)
		}

		db, err := a.OpenDatabase(context.Background(), cutPath)
		if !errors.Is(err, mdb.ErrTruncated) {
			t.Fatalf("OpenDatabase() error = %v, want ErrTruncated", err)
		}
		if db == nil {
			t.Fatal("OpenDatabase() returned nil database alongside truncation")
		}
		if db.Index.Len() == 0 {
			t.Error("expected partial records from truncated image")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		db, err := a.OpenDatabase(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
		if err == nil {
			t.Fatal("OpenDatabase() expected error for missing file")
		}
		if db != nil {
			t.Errorf("OpenDatabase() db = %v, want nil", db)
		}
	})
}

func TestCatalogLazyOpen(t *testing.T) {
	a := newTestApp(t)

	store, err := a.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	again, err := a.Catalog()
	if err != nil {
		t.Fatalf("Catalog() second call error = %v", err)
	}
	if store != again {
		t.Error("Catalog() opened a second store instead of reusing the first")
	}
}

func TestUpdateCatalog(t *testing.T) {
	a := newTestApp(t)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "f1.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "f2.txt"), []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}

	scan, err := a.UpdateCatalog(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("UpdateCatalog() error = %v", err)
	}
	if scan.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", scan.FileCount)
	}
	if scan.DirCount != 1 {
		t.Errorf("DirCount = %d, want 1", scan.DirCount)
	}

	store, err := a.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Stats().Total = %d, want 3", stats.Total)
	}
}
