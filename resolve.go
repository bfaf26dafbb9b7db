package main

import (
	"strings"

	"github.com/fjsync/fjsync/internal/localfs"
	"github.com/fjsync/fjsync/internal/sync"
)

// normalizeRemoteArg converts a user-supplied remote path into the
// separator style used by human-readable paths.
func normalizeRemoteArg(arg string) string {
	arg = strings.ReplaceAll(arg, "/", localfs.Separator)

	return strings.Trim(arg, localfs.Separator)
}

// matchSubtree selects the entries whose human-readable path equals arg or
// lies below it.
func matchSubtree(entries []sync.TreeEntry, arg string) []sync.TreeEntry {
	var matched []sync.TreeEntry

	for _, e := range entries {
		if e.PPath == arg || strings.HasPrefix(e.PPath, arg+localfs.Separator) {
			matched = append(matched, e)
		}
	}

	return matched
}
