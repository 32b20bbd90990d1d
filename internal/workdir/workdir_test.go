package workdir

import (
	"os"
	"testing"
)

func TestNew_CreatesUniqueDirectories(t *testing.T) {
	root := t.TempDir()

	a, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.Path("x") == b.Path("x") {
		t.Error("expected distinct working directories per request")
	}
	if info, err := os.Stat(a.Path("")); err != nil || !info.IsDir() {
		t.Errorf("expected directory to exist: %v", err)
	}
}

func TestWriteArtifact(t *testing.T) {
	dir, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := dir.WriteArtifact("skeleton.md", "# content"); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(dir.Path("skeleton.md"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "# content" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWriteArtifact_PropagatesFailure(t *testing.T) {
	dir, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// Writing into a removed directory must fail loudly, not silently.
	if err := os.RemoveAll(dir.Path("")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := dir.WriteArtifact("a.md", "x"); err == nil {
		t.Error("expected write failure to propagate")
	}
}
