package template

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// defaultFilePerm is used for entries that report no permission bits,
// such as fstest.MapFile values with a zero Mode.
const defaultFilePerm fs.FileMode = 0o644

// Copier copies a template tree into a new directory.
type Copier interface {
	// Copy writes every file of fsys under dest and returns the slash
	// separated relative paths written. dest must not exist. On error the
	// files already written are left in place.
	Copy(ctx context.Context, fsys fs.FS, dest string) ([]string, error)
}

// copier is the concrete implementation of Copier.
type copier struct{}

// NewCopier creates a Copier.
func NewCopier() Copier {
	return &copier{}
}

// Copy walks fsys and mirrors it under dest, preserving structure and the
// permission bits of each file. Symbolic links are recreated as links; a
// link whose target leaves the template tree fails with ErrPathTraversal.
func (c *copier) Copy(ctx context.Context, fsys fs.FS, dest string) ([]string, error) {
	dest = filepath.Clean(dest)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("copy mkdir %q: %w", filepath.Dir(dest), err)
	}
	if err := os.Mkdir(dest, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrTargetExists, dest)
		}
		return nil, fmt.Errorf("copy mkdir %q: %w", dest, err)
	}

	var copied []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == "." {
			return nil
		}

		if err := validateDeployPath(dest, path); err != nil {
			return err
		}
		destPath := filepath.Join(dest, filepath.FromSlash(path))

		if entry.IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("copy mkdir %q: %w", destPath, err)
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			if err := copyLink(fsys, path, destPath); err != nil {
				return err
			}
			copied = append(copied, path)
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("copy stat %q: %w", path, err)
		}
		perm := info.Mode().Perm()
		if perm == 0 {
			perm = defaultFilePerm
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("copy read %q: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("copy mkdir %q: %w", filepath.Dir(destPath), err)
		}
		if err := os.WriteFile(destPath, data, perm); err != nil {
			return fmt.Errorf("copy write %q: %w", destPath, err)
		}
		// WriteFile honours the umask; restore the source bits exactly.
		if err := os.Chmod(destPath, perm); err != nil {
			return fmt.Errorf("copy chmod %q: %w", destPath, err)
		}

		copied = append(copied, path)
		return nil
	})
	if err != nil {
		return copied, err
	}
	return copied, nil
}

// copyLink recreates the symbolic link at name under destPath. The link
// target must resolve inside the template tree.
func copyLink(fsys fs.FS, name, destPath string) error {
	target, err := fs.ReadLink(fsys, name)
	if err != nil {
		return fmt.Errorf("copy readlink %q: %w", name, err)
	}

	if filepath.IsAbs(target) || path.IsAbs(target) {
		return fmt.Errorf("%w: link %q points to absolute path %q", ErrPathTraversal, name, target)
	}
	resolved := path.Join(path.Dir(name), filepath.ToSlash(target))
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return fmt.Errorf("%w: link %q points outside the template to %q", ErrPathTraversal, name, target)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("copy mkdir %q: %w", filepath.Dir(destPath), err)
	}
	if err := os.Symlink(target, destPath); err != nil {
		return fmt.Errorf("copy symlink %q: %w", destPath, err)
	}
	return nil
}

// validateDeployPath ensures a template path does not escape root.
func validateDeployPath(root, relPath string) error {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))

	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("%w: absolute path %q", ErrPathTraversal, relPath)
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: parent reference in %q", ErrPathTraversal, relPath)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	absPath := filepath.Join(absRoot, cleaned)
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) && absPath != absRoot {
		return fmt.Errorf("%w: %q escapes %s", ErrPathTraversal, relPath, root)
	}

	return nil
}
