package storefront

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestEmbeddedTemplates(t *testing.T) {
	// Verify that every page the site renders is embedded.
	for _, name := range []string{"layout.html", "home.html", "category.html", "product.html", "error.html"} {
		data, err := fs.ReadFile(Templates, name)
		if err != nil {
			t.Fatalf("reading embedded %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("embedded %s is empty", name)
		}
	}
}

func TestOverlayFS_EmbeddedOnly(t *testing.T) {
	// Given: an embedded FS with a file and a local dir without it
	embedded := fstest.MapFS{
		"home.html": &fstest.MapFile{Data: []byte("from embedded")},
	}
	localDir := t.TempDir() // empty

	// When: opening the file via overlay
	ofs := OverlayFS(localDir, embedded)
	data, err := fs.ReadFile(ofs, "home.html")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// Then: embedded content is returned
	if string(data) != "from embedded" {
		t.Errorf("got %q, want %q", string(data), "from embedded")
	}
}

func TestOverlayFS_LocalOverride(t *testing.T) {
	// Given: both local and embedded have the same template
	embedded := fstest.MapFS{
		"home.html": &fstest.MapFile{Data: []byte("from embedded")},
	}
	localDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(localDir, "home.html"), []byte("from local"), 0o644); err != nil {
		t.Fatal(err)
	}

	// When: opening the template via overlay
	ofs := OverlayFS(localDir, embedded)
	data, err := fs.ReadFile(ofs, "home.html")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// Then: local file takes precedence
	if string(data) != "from local" {
		t.Errorf("got %q, want %q", string(data), "from local")
	}
}

func TestOverlayFS_DirectoryListingComesFromEmbedded(t *testing.T) {
	// Given: local overrides one of two embedded templates
	embedded := fstest.MapFS{
		"a.html": &fstest.MapFile{Data: []byte("embedded-a")},
		"b.html": &fstest.MapFile{Data: []byte("embedded-b")},
	}
	localDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(localDir, "a.html"), []byte("local-a"), 0o644); err != nil {
		t.Fatal(err)
	}
	ofs := OverlayFS(localDir, embedded)

	// When: listing the root
	entries, err := fs.ReadDir(ofs, ".")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	// Then: both templates are listed, and a.html reads from local
	if len(entries) != 2 {
		t.Errorf("ReadDir() = %d entries, want 2", len(entries))
	}
	dataA, err := fs.ReadFile(ofs, "a.html")
	if err != nil {
		t.Fatalf("ReadFile(a.html) error = %v", err)
	}
	if string(dataA) != "local-a" {
		t.Errorf("a.html = %q, want %q", string(dataA), "local-a")
	}
	dataB, err := fs.ReadFile(ofs, "b.html")
	if err != nil {
		t.Fatalf("ReadFile(b.html) error = %v", err)
	}
	if string(dataB) != "embedded-b" {
		t.Errorf("b.html = %q, want %q", string(dataB), "embedded-b")
	}
}

func TestOverlayFS_EmptyDirIsEmbedded(t *testing.T) {
	embedded := fstest.MapFS{}
	if got := OverlayFS("", embedded); got == nil {
		t.Fatal("OverlayFS(\"\") = nil")
	}
}

func TestOverlayFS_NotFound(t *testing.T) {
	// Given: neither local nor embedded has the file
	ofs := OverlayFS(t.TempDir(), fstest.MapFS{})

	// When/Then: Open returns an error
	if _, err := fs.ReadFile(ofs, "missing.html"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOverlayFS_RejectsInvalidPath(t *testing.T) {
	// Given: an overlay FS
	ofs := OverlayFS(t.TempDir(), fstest.MapFS{})

	// When/Then: invalid paths are rejected per fs.ValidPath contract
	for _, name := range []string{"../escape", "/absolute", "bad/../slash"} {
		if _, err := ofs.Open(name); err == nil {
			t.Errorf("Open(%q) should return error", name)
		}
	}
}
