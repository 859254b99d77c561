package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/masmgr/git-bard/internal/gittest"
)

func TestRepository_Lock(t *testing.T) {
	fx := gittest.New(t)
	fx.Linear(1)
	repo := openFixture(t, fx)

	lock, err := repo.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if filepath.Dir(lock.Path()) != repo.GitDir() {
		t.Errorf("lock at %s, want inside %s", lock.Path(), repo.GitDir())
	}

	_, err = repo.Lock()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second Lock error = %v, want ErrLocked", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}

	again, err := repo.Lock()
	if err != nil {
		t.Fatalf("Lock after Release: %v", err)
	}
	_ = again.Release()
}

func TestRepository_LockIgnoresLeftoverFile(t *testing.T) {
	fx := gittest.New(t)
	fx.Linear(1)
	repo := openFixture(t, fx)

	// A run killed before releasing leaves the file with its pid.
	path := filepath.Join(repo.GitDir(), lockFileName)
	if err := os.WriteFile(path, []byte("999999\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lock, err := repo.Lock()
	if err != nil {
		t.Fatalf("Lock over leftover file: %v", err)
	}
	defer lock.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), fmt.Sprintf("%d\n", os.Getpid()); got != want {
		t.Errorf("lock file = %q, want %q", got, want)
	}

	_, err = repo.Lock()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("Lock while held = %v, want ErrLocked", err)
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("pid %d", os.Getpid())) {
		t.Errorf("error %q does not name the holder", err)
	}
}

func TestRepository_GitDirFromSubdirectory(t *testing.T) {
	fx := gittest.New(t)
	fx.Write("pkg/sub/file.txt", "x\n")
	fx.Commit("nested")

	repo, err := OpenRepository(filepath.Join(fx.Dir, "pkg", "sub"))
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	if repo.GitDir() != filepath.Join(fx.Dir, ".git") {
		t.Errorf("GitDir = %s, want %s", repo.GitDir(), filepath.Join(fx.Dir, ".git"))
	}
}
