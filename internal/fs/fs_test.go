package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStatter_Space(t *testing.T) {
	space, err := Statter{}.Space(t.TempDir())
	if err != nil {
		t.Fatalf("Space() error = %v", err)
	}
	if space.Total == 0 {
		t.Error("Total = 0, want the volume size")
	}
	if space.Usable > space.Total {
		t.Errorf("Usable %d exceeds Total %d", space.Usable, space.Total)
	}
	if pct := space.UsedPercentage(); pct < 0 || pct > 100 {
		t.Errorf("UsedPercentage() = %v, want 0-100", pct)
	}
}

func TestStatter_SpaceMissingPath(t *testing.T) {
	if _, err := (Statter{}).Space(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Error("Space() succeeded for a missing path")
	}
}

func TestCheckReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := CheckReadable(path); err != nil {
		t.Errorf("CheckReadable() error = %v", err)
	}
	if err := CheckReadable(path + ".gone"); err == nil {
		t.Error("CheckReadable() succeeded for a missing file")
	}
}

func TestMkdirCreator(t *testing.T) {
	root := t.TempDir()
	create := MkdirCreator(0750)

	dir := filepath.Join(root, "a", "b")
	if err := create(dir); err != nil {
		t.Fatalf("create() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatal("created path is not a directory")
	}
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm != 0750 {
			t.Errorf("permissions = %o, want 0750", perm)
		}
	}

	// creating an existing directory is not an error
	if err := create(dir); err != nil {
		t.Errorf("create() on existing dir error = %v", err)
	}

	// a file in the way is an error
	file := filepath.Join(root, "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := create(file); err == nil {
		t.Error("create() succeeded over an existing file")
	}
}
