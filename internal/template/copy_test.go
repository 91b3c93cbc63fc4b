package template

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
)

func cdkTemplateFS() fstest.MapFS {
	return fstest.MapFS{
		"package.json": &fstest.MapFile{
			Data: []byte(`{"name":"{{SERVICE_NAME}}"}`),
			Mode: 0o644,
		},
		"bin/app.ts": &fstest.MapFile{
			Data: []byte("#!/usr/bin/env node\n"),
			Mode: 0o644,
		},
		"scripts/deploy.sh": &fstest.MapFile{
			Data: []byte("#!/bin/sh\ncdk deploy\n"),
			Mode: 0o755,
		},
		"infra/config/index.ts": &fstest.MapFile{
			Data: []byte("export const region = '{{AWS_DEV_REGION}}';\n"),
		},
		".gitignore": &fstest.MapFile{
			Data: []byte("node_modules/\ncdk.out/\n"),
			Mode: 0o600,
		},
	}
}

func TestCopierCopy(t *testing.T) {
	t.Run("copies_nested_structure", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "orders-service")

		copied, err := NewCopier().Copy(context.Background(), cdkTemplateFS(), dest)
		if err != nil {
			t.Fatalf("Copy error: %v", err)
		}

		want := []string{".gitignore", "bin/app.ts", "infra/config/index.ts", "package.json", "scripts/deploy.sh"}
		slices.Sort(copied)
		if !slices.Equal(copied, want) {
			t.Errorf("copied = %v, want %v", copied, want)
		}

		data, err := os.ReadFile(filepath.Join(dest, "infra", "config", "index.ts"))
		if err != nil {
			t.Fatalf("ReadFile error: %v", err)
		}
		if string(data) != "export const region = '{{AWS_DEV_REGION}}';\n" {
			t.Errorf("content = %q, want template content unchanged", data)
		}
	})

	t.Run("preserves_file_modes", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "svc")

		if _, err := NewCopier().Copy(context.Background(), cdkTemplateFS(), dest); err != nil {
			t.Fatalf("Copy error: %v", err)
		}

		modes := map[string]os.FileMode{
			"scripts/deploy.sh":     0o755,
			".gitignore":            0o600,
			"package.json":          0o644,
			"infra/config/index.ts": defaultFilePerm,
		}
		for rel, want := range modes {
			info, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel)))
			if err != nil {
				t.Fatalf("Stat %s: %v", rel, err)
			}
			if got := info.Mode().Perm(); got != want {
				t.Errorf("%s mode = %o, want %o", rel, got, want)
			}
		}
	})

	t.Run("copies_from_disk", func(t *testing.T) {
		src := t.TempDir()
		if err := os.MkdirAll(filepath.Join(src, "lib", "stacks"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(src, "lib", "stacks", "api.ts"), []byte("stack"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Join(src, "empty"), 0o755); err != nil {
			t.Fatal(err)
		}

		dest := filepath.Join(t.TempDir(), "svc")
		copied, err := NewCopier().Copy(context.Background(), os.DirFS(src), dest)
		if err != nil {
			t.Fatalf("Copy error: %v", err)
		}
		if len(copied) != 1 || copied[0] != "lib/stacks/api.ts" {
			t.Errorf("copied = %v, want [lib/stacks/api.ts]", copied)
		}
		if info, err := os.Stat(filepath.Join(dest, "empty")); err != nil || !info.IsDir() {
			t.Errorf("empty directory not mirrored: %v", err)
		}
	})

	t.Run("existing_destination_untouched", func(t *testing.T) {
		dest := t.TempDir()
		marker := filepath.Join(dest, "keep.txt")
		if err := os.WriteFile(marker, []byte("mine"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := NewCopier().Copy(context.Background(), cdkTemplateFS(), dest)
		if !errors.Is(err, ErrTargetExists) {
			t.Fatalf("Copy error = %v, want ErrTargetExists", err)
		}
		if !strings.Contains(err.Error(), "directory already exists") {
			t.Errorf("Copy error = %q, want directory already exists", err)
		}

		entries, err := os.ReadDir(dest)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("destination entries = %d, want 1", len(entries))
		}
	})

	t.Run("symlinks_recreated", func(t *testing.T) {
		src := t.TempDir()
		mustWrite(t, filepath.Join(src, "README.md"), "# {{SERVICE_NAME}}\n")
		mustWrite(t, filepath.Join(src, "lib", "util.ts"), "export {};\n")
		mustSymlink(t, "README.md", filepath.Join(src, "LINK.md"))
		mustSymlink(t, "lib", filepath.Join(src, "shared"))

		dest := filepath.Join(t.TempDir(), "svc")
		copied, err := NewCopier().Copy(context.Background(), os.DirFS(src), dest)
		if err != nil {
			t.Fatalf("Copy error: %v", err)
		}
		for _, name := range []string{"LINK.md", "shared"} {
			if !slices.Contains(copied, name) {
				t.Errorf("copied = %v, missing %s", copied, name)
			}
		}

		tests := map[string]string{"LINK.md": "README.md", "shared": "lib"}
		for name, want := range tests {
			info, err := os.Lstat(filepath.Join(dest, name))
			if err != nil {
				t.Fatalf("Lstat %s: %v", name, err)
			}
			if info.Mode()&os.ModeSymlink == 0 {
				t.Errorf("%s mode = %v, want symlink", name, info.Mode())
			}
			got, err := os.Readlink(filepath.Join(dest, name))
			if err != nil || got != want {
				t.Errorf("Readlink(%s) = %q, %v; want %q", name, got, err, want)
			}
		}

		data, err := os.ReadFile(filepath.Join(dest, "shared", "util.ts"))
		if err != nil || string(data) != "export {};\n" {
			t.Errorf("read through directory link = %q, %v", data, err)
		}
	})

	t.Run("symlink_outside_template_rejected", func(t *testing.T) {
		src := t.TempDir()
		mustWrite(t, filepath.Join(src, "package.json"), "{}")
		mustSymlink(t, "../../etc/passwd", filepath.Join(src, "passwd"))

		dest := filepath.Join(t.TempDir(), "svc")
		_, err := NewCopier().Copy(context.Background(), os.DirFS(src), dest)
		if !errors.Is(err, ErrPathTraversal) {
			t.Errorf("Copy error = %v, want ErrPathTraversal", err)
		}
		if _, err := os.Lstat(filepath.Join(dest, "passwd")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("escaping link was created: %v", err)
		}
	})

	t.Run("cancelled_context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dest := filepath.Join(t.TempDir(), "svc")
		_, err := NewCopier().Copy(ctx, cdkTemplateFS(), dest)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Copy error = %v, want context.Canceled", err)
		}
	})
}

func TestValidateDeployPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain_file", "package.json", false},
		{"nested_file", "infra/config/index.ts", false},
		{"dotfile", ".gitignore", false},
		{"double_dot_prefix_name", "..hidden", false},
		{"parent_reference", "../escape.txt", true},
		{"nested_parent_reference", "lib/../../escape.txt", true},
		{"absolute", "/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateDeployPath(root, tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrPathTraversal) {
					t.Errorf("validateDeployPath(%q) = %v, want ErrPathTraversal", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Errorf("validateDeployPath(%q) unexpected error: %v", tt.path, err)
			}
		})
	}
}

func mustWrite(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustSymlink(t *testing.T, target, name string) {
	t.Helper()
	if err := os.Symlink(target, name); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}
