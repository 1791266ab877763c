package intents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDir is the directory, relative to the project root, where
	// local intent files live.
	DefaultDir = ".intents"
	// DefaultWorkspace is the workspace formed by files directly in the root.
	DefaultWorkspace = "default"
	// IntentExt is the extension of intent files.
	IntentExt = ".md"
)

// Source supplies intents to the rest of the system. Implementations
// return the full, validated set; any storage or transport failure is
// returned as an error and never as a partial result.
type Source interface {
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	ListIntents(ctx context.Context, workspaceID string) ([]Intent, error)
	GetIntent(ctx context.Context, workspaceID, intentID string) (*Intent, error)
}

// FileStore implements Source over a directory of markdown intent files.
type FileStore struct {
	root string
}

// NewFileStore creates a filesystem-backed intent source rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// WorkspacePath returns the directory holding a workspace's intent files.
// The default workspace is the root itself.
func WorkspacePath(root, workspaceID string) string {
	if workspaceID == "" || workspaceID == DefaultWorkspace {
		return root
	}
	return filepath.Join(root, workspaceID)
}

// ListWorkspaces returns the default workspace (when the root exists) and
// one workspace per non-hidden subdirectory. A subdirectory named after the
// default workspace is skipped since its id resolves to the root.
func (fs *FileStore) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []Workspace{}, nil
		}
		return nil, fmt.Errorf("reading intents directory: %w", err)
	}

	result := []Workspace{{
		ID:          DefaultWorkspace,
		Name:        filepath.Base(fs.root),
		Description: "Intent files in " + fs.root,
		IntentCount: countIntentFiles(entries),
	}}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || entry.Name() == DefaultWorkspace {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(fs.root, entry.Name()))
		if err != nil {
			continue // skip unreadable workspaces
		}
		result = append(result, Workspace{
			ID:          entry.Name(),
			Name:        entry.Name(),
			Description: "Intent files in " + filepath.Join(fs.root, entry.Name()),
			IntentCount: countIntentFiles(sub),
		})
	}

	return result, nil
}

// ListIntents parses every intent file of a workspace in file name order.
// A single unreadable or invalid file fails the whole call.
func (fs *FileStore) ListIntents(ctx context.Context, workspaceID string) ([]Intent, error) {
	if err := checkWorkspaceID(workspaceID); err != nil {
		return nil, err
	}
	if workspaceID == "" {
		workspaceID = DefaultWorkspace
	}

	dir := WorkspacePath(fs.root, workspaceID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("workspace %q: %w", workspaceID, ErrNotFound)
		}
		return nil, fmt.Errorf("reading workspace %q: %w", workspaceID, err)
	}

	result := []Intent{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isIntentFile(entry) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		in, err := readIntentFile(path)
		if err != nil {
			return nil, err
		}
		in.WorkspaceID = workspaceID
		result = append(result, *in)
	}

	return result, nil
}

// GetIntent returns the intent with the given id. Ids come from the
// frontmatter, so the whole workspace is scanned.
func (fs *FileStore) GetIntent(ctx context.Context, workspaceID, intentID string) (*Intent, error) {
	list, err := fs.ListIntents(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == intentID {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("intent %q: %w", intentID, ErrNotFound)
}

// readIntentFile reads, parses and validates one intent file.
func readIntentFile(path string) (*Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), IntentExt)
	in, err := ParseIntent(name, data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	in.Source = path

	if err := Validate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// checkWorkspaceID rejects ids that would escape the intents root.
func checkWorkspaceID(id string) error {
	if id == "" || id == DefaultWorkspace {
		return nil
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("invalid workspace id %q", id)
	}
	return nil
}

func isIntentFile(entry os.DirEntry) bool {
	return !entry.IsDir() &&
		strings.HasSuffix(entry.Name(), IntentExt) &&
		!strings.HasPrefix(entry.Name(), ".")
}

func countIntentFiles(entries []os.DirEntry) int {
	n := 0
	for _, e := range entries {
		if isIntentFile(e) {
			n++
		}
	}
	return n
}
