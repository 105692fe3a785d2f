// Package builtin provides ready-made filesystem tools for agents that work
// with local files. All paths are resolved inside a configured root
// directory, and glob-based deny lists keep sensitive files off limits.
package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lunarhue/agentic/tool"
)

// Access restricts what the filesystem tools may touch.
type Access struct {
	// Root is the directory all tool paths resolve under. Empty means the
	// current working directory.
	Root string

	// Hidden lists doublestar patterns that are denied for every
	// operation, e.g. "**/.env" or "secrets/**".
	Hidden []string

	// ReadOnly lists doublestar patterns that are denied for writes.
	ReadOnly []string
}

func (a Access) root() string {
	if a.Root == "" {
		return "."
	}
	return a.Root
}

// resolve maps a tool-supplied relative path into the access root,
// rejecting absolute paths and escapes.
func (a Access) resolve(path string) (rel string, full string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("path must not be empty")
	}
	if filepath.IsAbs(path) {
		return "", "", fmt.Errorf("absolute paths are not allowed: %s", path)
	}
	rel = filepath.Clean(path)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("path escapes the root directory: %s", path)
	}
	return rel, filepath.Join(a.root(), rel), nil
}

// restricted reports whether rel matches any of the given deny patterns.
func restricted(rel string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		match, err := doublestar.PathMatch(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

type readFileArgs struct {
	Path string `json:"path" jsonschema:"description=File path relative to the tool root"`
}

// ReadFile builds a tool that returns the full content of one file.
func ReadFile(access Access) (*tool.Tool, error) {
	return tool.Define("read_file", "Reads the entire content of a file.",
		func(_ context.Context, _ tool.Runtime, args readFileArgs) (any, error) {
			rel, full, err := access.resolve(args.Path)
			if err != nil {
				return nil, err
			}
			hidden, err := restricted(rel, access.Hidden)
			if err != nil {
				return nil, err
			}
			if hidden {
				return nil, fmt.Errorf("access denied: path %q is hidden", args.Path)
			}
			content, err := os.ReadFile(full)
			if err != nil {
				return nil, fmt.Errorf("failed to read file %q: %w", args.Path, err)
			}
			return string(content), nil
		})
}

type writeFileArgs struct {
	Path    string `json:"path" jsonschema:"description=File path relative to the tool root"`
	Content string `json:"content" jsonschema:"description=Content that replaces the file"`
}

// WriteFile builds a tool that replaces one file's content.
func WriteFile(access Access) (*tool.Tool, error) {
	return tool.Define("write_file", "Writes content to a file, replacing it entirely.",
		func(_ context.Context, _ tool.Runtime, args writeFileArgs) (any, error) {
			rel, full, err := access.resolve(args.Path)
			if err != nil {
				return nil, err
			}
			for _, deny := range []struct {
				patterns []string
				reason   string
			}{
				{access.Hidden, "hidden"},
				{access.ReadOnly, "read-only"},
			} {
				hit, err := restricted(rel, deny.patterns)
				if err != nil {
					return nil, err
				}
				if hit {
					return nil, fmt.Errorf("access denied: path %q is %s", args.Path, deny.reason)
				}
			}
			if err := os.WriteFile(full, []byte(args.Content), 0o644); err != nil {
				return nil, fmt.Errorf("failed to write file %q: %w", args.Path, err)
			}
			return fmt.Sprintf("wrote %d bytes to %s", len(args.Content), args.Path), nil
		})
}

type listFilesArgs struct {
	Pattern string `json:"pattern" jsonschema:"description=Doublestar glob such as **/*.go"`
}

// ListFiles builds a tool that matches files under the root with a
// doublestar glob pattern.
func ListFiles(access Access) (*tool.Tool, error) {
	return tool.Define("list_files", "Lists files matching a glob pattern.",
		func(_ context.Context, _ tool.Runtime, args listFilesArgs) (any, error) {
			if !doublestar.ValidatePattern(args.Pattern) {
				return nil, fmt.Errorf("invalid glob pattern %q", args.Pattern)
			}
			matches, err := doublestar.Glob(os.DirFS(access.root()), args.Pattern)
			if err != nil {
				return nil, fmt.Errorf("glob %q failed: %w", args.Pattern, err)
			}
			visible := make([]string, 0, len(matches))
			for _, m := range matches {
				hidden, err := restricted(filepath.FromSlash(m), access.Hidden)
				if err != nil {
					return nil, err
				}
				if !hidden {
					visible = append(visible, m)
				}
			}
			if len(visible) == 0 {
				return "no files match the pattern", nil
			}
			return strings.Join(visible, "\n"), nil
		})
}

// Tools builds the full filesystem toolset for one access policy.
func Tools(access Access) ([]*tool.Tool, error) {
	read, err := ReadFile(access)
	if err != nil {
		return nil, err
	}
	write, err := WriteFile(access)
	if err != nil {
		return nil, err
	}
	list, err := ListFiles(access)
	if err != nil {
		return nil, err
	}
	return []*tool.Tool{read, write, list}, nil
}
