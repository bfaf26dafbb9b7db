package sync

import (
	"context"
	"strconv"

	"github.com/fjsync/fjsync/internal/fjump"
)

// Context holds the remote tree state for one sync operation: the flat
// entry and folder lists from the last tree read plus the folder name→id
// index used for provisioning and path translation. It is owned by the
// orchestrator for the lifetime of one call and rebuilt fresh by Refresh;
// it deliberately has no internal synchronization (see package doc).
type Context struct {
	Entries []fjump.Entry
	Folders []fjump.Entry

	folderIDs   map[string]int64  // folder name (as stored remotely) → id
	folderNames map[int64]string  // id → folder name
}

// NewContext builds a Context from a tree read.
func NewContext(entries, folders []fjump.Entry) *Context {
	c := &Context{}
	c.reset(entries, folders)

	return c
}

// Refresh re-reads the whole remote tree and rebuilds the index. Read
// failures propagate unmodified: no partial tree is ever installed, so a
// truncated read cannot masquerade as an authoritative one.
func (c *Context) Refresh(ctx context.Context, api API, cancel *fjump.CancelFlag) error {
	entries, folders, err := ReadTree(ctx, api, 0, cancel)
	if err != nil {
		return err
	}

	c.reset(entries, folders)

	return nil
}

func (c *Context) reset(entries, folders []fjump.Entry) {
	c.Entries = entries
	c.Folders = folders
	c.folderIDs = make(map[string]int64, len(folders))
	c.folderNames = make(map[int64]string, len(folders))

	for i := range folders {
		c.folderIDs[folders[i].Name] = folders[i].ID
		c.folderNames[folders[i].ID] = folders[i].Name
	}
}

// FolderID resolves a (mangled) folder name to its remote id.
func (c *Context) FolderID(name string) (int64, bool) {
	id, ok := c.folderIDs[name]

	return id, ok
}

// FolderName resolves a remote folder id to its name.
func (c *Context) FolderName(id int64) (string, bool) {
	name, ok := c.folderNames[id]

	return name, ok
}

// ResolveSegment maps one ancestor id path segment to a folder name,
// degrading to the raw id string when the folder has not been observed.
func (c *Context) ResolveSegment(segment string) string {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil {
		return segment
	}

	if name, ok := c.folderNames[id]; ok {
		return name
	}

	return segment
}

// AddFolder records a newly created folder in both the folder list and the
// index, keeping the invariant that every provisioned segment resolves.
func (c *Context) AddFolder(folder fjump.Entry) {
	c.Folders = append(c.Folders, folder)
	c.folderIDs[folder.Name] = folder.ID
	c.folderNames[folder.ID] = folder.Name
}
