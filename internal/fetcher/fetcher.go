// Package fetcher acquires dependency working copies under the deps
// directory of a workspace and reports their working-tree state.
package fetcher

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/gofrs/flock"
	cp "github.com/otiai10/copy"

	errUtils "github.com/StinkyLord/stella/internal/errors"
	"github.com/StinkyLord/stella/internal/model"
)

const (
	lockRetryDelay = 50 * time.Millisecond
	fileScheme     = "file://"
)

// Fetcher places dependencies at <DepsDir>/<identity> inside Workspace.
type Fetcher struct {
	Workspace string
	Layout    model.Layout
}

// New returns a Fetcher for the workspace at dir.
func New(dir string, layout model.Layout) *Fetcher {
	return &Fetcher{Workspace: dir, Layout: layout}
}

// EnsurePresent makes sure a working copy of identity exists and returns its
// path relative to the workspace. An existing directory is reused as is.
// Local directories that are not git repositories are copied; anything else
// is cloned and, when revision is set, checked out at that revision.
func (f *Fetcher) EnsurePresent(ctx context.Context, identity, url, revision string) (string, error) {
	if err := validIdentity(identity); err != nil {
		return "", err
	}
	local := path.Join(f.Layout.DepsDir, identity)
	dst := f.abs(local)

	if err := os.MkdirAll(f.abs(f.Layout.DepsDir), 0o755); err != nil {
		return "", errors.Wrap(err, "creating deps directory")
	}

	lock := flock.New(filepath.Join(f.abs(f.Layout.DepsDir), "."+identity+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", errors.Wrapf(err, "locking %s", local)
	}
	if !locked {
		return "", errors.Newf("could not lock %s", local)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Debug("Failed to unlock dependency directory", "path", local, "error", err)
		}
	}()

	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		log.Info("Using existing working copy", "identity", identity, "path", local)
		return local, nil
	}

	if src, ok := f.localSource(url); ok && !isRepository(src) {
		log.Info("Copying dependency", "identity", identity, "from", src)
		if err := cp.Copy(src, dst); err != nil {
			_ = os.RemoveAll(dst)
			return "", errors.Wrapf(err, "copying %s", src)
		}
		return local, nil
	}

	log.Info("Cloning dependency", "identity", identity, "url", url, "revision", revision)
	if err := clone(ctx, dst, f.cloneURL(url), revision); err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			log.Warn("Failed to remove partial clone", "path", local, "error", rmErr)
		}
		return "", err
	}
	return local, nil
}

// IsDirty reports whether the working copy at localPath, relative to the
// workspace, has uncommitted changes.
func (f *Fetcher) IsDirty(ctx context.Context, localPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	repo, err := git.PlainOpen(f.abs(localPath))
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return false, errors.Wrapf(errUtils.ErrNotRepository, "%s", localPath)
		}
		return false, errors.Wrapf(err, "opening %s", localPath)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, errors.Wrapf(err, "worktree of %s", localPath)
	}
	st, err := wt.Status()
	if err != nil {
		return false, errors.Wrapf(err, "status of %s", localPath)
	}
	return !st.IsClean(), nil
}

func clone(ctx context.Context, dst, url, revision string) error {
	repo, err := git.PlainCloneContext(ctx, dst, false, &git.CloneOptions{URL: url})
	if err != nil {
		return errors.Wrapf(err, "cloning %s", url)
	}
	if revision == "" {
		return nil
	}

	hash, err := resolveRevision(repo, revision)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrap(err, "opening worktree")
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return errors.Wrapf(err, "checking out %s", revision)
	}
	log.Debug("Checked out revision", "revision", revision, "commit", hash.String())
	return nil
}

// resolveRevision accepts a commit hash, a tag, a local branch or a branch
// that only exists on origin.
func resolveRevision(repo *git.Repository, revision string) (plumbing.Hash, error) {
	candidates := []string{revision, "refs/remotes/origin/" + revision}
	var lastErr error
	for _, c := range candidates {
		h, err := repo.ResolveRevision(plumbing.Revision(c))
		if err == nil {
			return *h, nil
		}
		lastErr = err
	}
	return plumbing.ZeroHash, errors.Wrapf(lastErr, "unknown revision %q", revision)
}

// localSource returns the directory url points at when it names one on disk.
func (f *Fetcher) localSource(url string) (string, bool) {
	p := strings.TrimPrefix(url, fileScheme)
	if p != url || filepath.IsAbs(p) || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		if !filepath.IsAbs(p) {
			p = filepath.Join(f.Workspace, filepath.FromSlash(p))
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func (f *Fetcher) cloneURL(url string) string {
	if src, ok := f.localSource(url); ok {
		return src
	}
	return url
}

func (f *Fetcher) abs(p string) string {
	return filepath.Join(f.Workspace, filepath.FromSlash(p))
}

func isRepository(dir string) bool {
	_, err := git.PlainOpen(dir)
	return err == nil
}

func validIdentity(identity string) error {
	if identity == "" || identity == "." || identity == ".." || strings.ContainsAny(identity, `/\`) {
		return errUtils.InvalidPath(identity, "dependency name must be a single path element", nil)
	}
	return nil
}
