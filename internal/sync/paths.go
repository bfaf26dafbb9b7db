package sync

import (
	"strings"

	"github.com/fjsync/fjsync/internal/fjump"
	"github.com/fjsync/fjsync/internal/localfs"
)

// The service rejects folder names shorter than three characters, so short
// path segments are right-padded with a filler before they become remote
// folder names or lookup keys. File names are never mangled.
const (
	minSegmentLen = 3
	segmentFiller = "_"
)

// MangleSegment pads a path segment shorter than three characters to
// exactly three. Longer segments pass through unchanged.
func MangleSegment(segment string) string {
	runes := []rune(segment)
	if len(runes) >= minSegmentLen {
		return segment
	}

	return segment + strings.Repeat(segmentFiller, minSegmentLen-len(runes))
}

// FolderChain splits a local relative directory path into its ordered,
// mangled segments — the folder chain to provision for a file at that
// path. An empty path yields a nil chain (file at the root).
func FolderChain(relDir string) []string {
	if relDir == "" {
		return nil
	}

	// Accept both the record separator and forward slashes.
	relDir = strings.ReplaceAll(relDir, "/", localfs.Separator)

	segments := strings.Split(relDir, localfs.Separator)
	chain := make([]string, 0, len(segments))

	for _, seg := range segments {
		if seg == "" {
			continue
		}

		chain = append(chain, MangleSegment(seg))
	}

	return chain
}

// HumanPath renders an entry's ancestor id chain as a human-readable path.
// Each ancestor id resolves to its folder name through the context when
// known; ids of folders not yet observed degrade to their raw id string
// rather than failing. The entry's own name terminates the path.
func HumanPath(entry *fjump.Entry, sctx *Context) string {
	own := entry.IDString()

	var parts []string

	for _, segment := range strings.Split(entry.ParentPath, "/") {
		if segment == "" || segment == own {
			continue
		}

		parts = append(parts, sctx.ResolveSegment(segment))
	}

	parts = append(parts, entry.Name)

	return strings.Join(parts, localfs.Separator)
}
