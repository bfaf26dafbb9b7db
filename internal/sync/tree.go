package sync

import (
	"context"
	"fmt"

	"github.com/fjsync/fjsync/internal/fjump"
)

// Lister is the single API capability the tree reader needs.
type Lister interface {
	ListEntries(ctx context.Context, parentID int64) ([]fjump.Entry, error)
}

// ReadTree recursively enumerates the remote tree below rootID (0 for the
// drive root) into a flat entry list and a flat folder list. Each folder's
// Empty flag is true iff its subtree contained zero entries at read time.
//
// Listing failures propagate unmodified — no partial tree is returned on
// error. If the cancellation flag is set, ReadTree returns empty lists and
// no error. The service is trusted not to report cyclic parent chains, but
// not blindly: a revisited folder id fails fast instead of recursing
// forever.
func ReadTree(ctx context.Context, api Lister, rootID int64, cancel *fjump.CancelFlag) ([]fjump.Entry, []fjump.Entry, error) {
	acc := &treeAccum{visited: map[int64]bool{rootID: true}}

	if _, err := acc.descend(ctx, api, rootID, cancel); err != nil {
		return nil, nil, err
	}

	return acc.entries, acc.folders, nil
}

// treeAccum accumulates the traversal results; passing it explicitly keeps
// the recursion free of captured outer-scope containers.
type treeAccum struct {
	entries []fjump.Entry
	folders []fjump.Entry
	visited map[int64]bool
}

// descend lists one folder and recurses into its subfolders. It reports
// whether anything at all was found below parentID.
func (a *treeAccum) descend(ctx context.Context, api Lister, parentID int64, cancel *fjump.CancelFlag) (bool, error) {
	if cancel.Cancelled() {
		return false, nil
	}

	children, err := api.ListEntries(ctx, parentID)
	if err != nil {
		return false, err
	}

	found := len(children) > 0

	for i := range children {
		child := children[i]
		child.Empty = true

		if child.IsFolder() {
			if a.visited[child.ID] {
				return false, fmt.Errorf("sync: folder %d revisited below %d: remote tree reports a cycle", child.ID, parentID)
			}

			a.visited[child.ID] = true

			nonEmpty, descErr := a.descend(ctx, api, child.ID, cancel)
			if descErr != nil {
				return false, descErr
			}

			if nonEmpty {
				child.Empty = false
			}

			a.folders = append(a.folders, child)
		}

		a.entries = append(a.entries, child)
	}

	return found, nil
}
