package fjump

import "strconv"

// Entry represents one FileJump file entry (file or folder).
// Fields are normalized from the API response — callers never see raw JSON.
type Entry struct {
	ID   int64
	Name string
	Type string // "folder" for folders, a mime class otherwise

	// ParentPath is the slash-delimited chain of ancestor ids as reported
	// by the service, terminating in the entry's own id.
	ParentPath string

	Size        int64
	CreatedAt   string // service-assigned, as reported
	ModifiedAt  string
	Description string

	// Empty is maintained by the tree reader: true iff the subtree rooted
	// at this folder contained zero entries when the tree was read.
	// Meaningless for files.
	Empty bool
}

// IsFolder reports whether the entry is a folder.
func (e *Entry) IsFolder() bool {
	return e.Type == "folder"
}

// IDString returns the entry id in the decimal form used by ancestor-path
// chains.
func (e *Entry) IDString() string {
	return strconv.FormatInt(e.ID, 10)
}

// FileHandle identifies a file entry created by an upload.
type FileHandle struct {
	ID   int64
	Name string
	Path string // slash-delimited ancestor id chain
}

// ProgressFunc receives upload progress. sent and total count the bytes of
// the whole request body; it is invoked on every observed change in the
// sent-byte count.
type ProgressFunc func(name string, sent, total int64)

// PercentFunc receives download progress as a whole percentage. It is only
// invoked when the response declares a usable content length.
type PercentFunc func(percent int)
