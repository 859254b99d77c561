package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const lockFileName = "git-bard.lock"

// RepoLock is an exclusive advisory lock preventing overlapping runs against
// one repository. History rewriting is not safe under concurrent mutation.
// The operating system drops the lock when the holder exits, so a killed run
// leaves only an unlocked file behind.
type RepoLock struct {
	path string
	file *flock.Flock
}

// Lock takes the lock on a file inside the git directory. It fails with
// ErrLocked while another process holds it.
func (r *Repository) Lock() (*RepoLock, error) {
	path := filepath.Join(r.GitDir(), lockFileName)

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		holder, _ := os.ReadFile(path)
		if pid := strings.TrimSpace(string(holder)); pid != "" {
			return nil, fmt.Errorf("%w (pid %s)", ErrLocked, pid)
		}
		return nil, ErrLocked
	}

	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	return &RepoLock{path: path, file: fl}, nil
}

// Path returns the lock file location.
func (l *RepoLock) Path() string {
	return l.path
}

// Release unlocks. The file stays; removing it would let a waiting process
// lock an unlinked inode. Releasing twice is a no-op.
func (l *RepoLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Unlock()
	l.file = nil
	return err
}
