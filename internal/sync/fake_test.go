package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/fjsync/fjsync/internal/fjump"
	"github.com/fjsync/fjsync/internal/localfs"
)

// Fixed service-side timestamps the fake stamps on every entry, so tests
// can tell fingerprint-recovered times from service metadata.
const (
	fakeCreatedAt  = "2026-01-01 00:00:00"
	fakeModifiedAt = "2026-01-02 00:00:00"
)

type fakeNode struct {
	id       int64
	name     string
	typ      string
	parentID int64
	desc     string
	content  []byte
}

// fakeAPI is an in-memory stand-in for the FileJump service. It resolves
// upload paths against provisioned folders the same way the service does,
// padding short segments like the provisioner.
type fakeAPI struct {
	nodes  map[int64]*fakeNode
	nextID int64

	createCalls int
	failCreates int // CreateFolder calls to fail before succeeding

	uploadErrs map[string]error // file base name, forced Upload error
	descErr    error            // forced SetDescription error
	listErr    error            // forced ListEntries error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nodes:      map[int64]*fakeNode{},
		nextID:     1,
		uploadErrs: map[string]error{},
	}
}

func (f *fakeAPI) add(name, typ string, parentID int64, content []byte) int64 {
	id := f.nextID
	f.nextID++

	f.nodes[id] = &fakeNode{id: id, name: name, typ: typ, parentID: parentID, content: content}

	return id
}

func (f *fakeAPI) addFolder(name string, parentID int64) int64 {
	return f.add(name, "folder", parentID, nil)
}

func (f *fakeAPI) addFile(name string, parentID int64, content []byte) int64 {
	return f.add(name, "text", parentID, content)
}

// pathOf renders the ancestor id chain, own id last, the way the service
// reports entry paths.
func (f *fakeAPI) pathOf(id int64) string {
	var ids []string

	for cur := id; cur != 0; cur = f.nodes[cur].parentID {
		ids = append([]string{strconv.FormatInt(cur, 10)}, ids...)
	}

	return strings.Join(ids, "/")
}

func (f *fakeAPI) toEntry(n *fakeNode) fjump.Entry {
	return fjump.Entry{
		ID:          n.id,
		Name:        n.name,
		Type:        n.typ,
		ParentPath:  f.pathOf(n.id),
		Size:        int64(len(n.content)),
		CreatedAt:   fakeCreatedAt,
		ModifiedAt:  fakeModifiedAt,
		Description: n.desc,
	}
}

func (f *fakeAPI) ListEntries(_ context.Context, parentID int64) ([]fjump.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	var ids []int64

	for id, n := range f.nodes {
		if n.parentID == parentID {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]fjump.Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, f.toEntry(f.nodes[id]))
	}

	return entries, nil
}

func (f *fakeAPI) CreateFolder(_ context.Context, name string, parentID int64) (*fjump.Entry, error) {
	f.createCalls++

	if f.failCreates > 0 {
		f.failCreates--

		return nil, errors.New("service unavailable")
	}

	id := f.addFolder(name, parentID)
	entry := f.toEntry(f.nodes[id])

	return &entry, nil
}

func (f *fakeAPI) findChildFolder(parentID int64, name string) (int64, bool) {
	for id, n := range f.nodes {
		if n.parentID == parentID && n.typ == "folder" && n.name == name {
			return id, true
		}
	}

	return 0, false
}

func (f *fakeAPI) Upload(
	_ context.Context, localPath, relativePath string,
	content io.ReadSeeker, _ int64,
	progress fjump.ProgressFunc, cancel *fjump.CancelFlag,
) (*fjump.FileHandle, error) {
	if err := f.uploadErrs[filepath.Base(localPath)]; err != nil {
		return nil, err
	}

	if cancel.Cancelled() {
		return nil, fjump.ErrCancelled
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	segments := strings.Split(strings.ReplaceAll(relativePath, `\`, "/"), "/")
	name := segments[len(segments)-1]

	parentID := int64(0)

	for _, dir := range segments[:len(segments)-1] {
		mangled := MangleSegment(dir)

		id, ok := f.findChildFolder(parentID, mangled)
		if !ok {
			id = f.addFolder(mangled, parentID)
		}

		parentID = id
	}

	id := f.addFile(name, parentID, data)

	if progress != nil {
		progress(localPath, int64(len(data)), int64(len(data)))
	}

	return &fjump.FileHandle{ID: id, Name: name, Path: f.pathOf(id)}, nil
}

func (f *fakeAPI) SetDescription(_ context.Context, entryID int64, description string) error {
	if f.descErr != nil {
		return f.descErr
	}

	n, ok := f.nodes[entryID]
	if !ok {
		return fjump.ErrNotFound
	}

	n.desc = description

	return nil
}

func (f *fakeAPI) Delete(_ context.Context, entryIDs []int64, _ bool) error {
	for _, id := range entryIDs {
		f.removeSubtree(id)
	}

	return nil
}

func (f *fakeAPI) removeSubtree(id int64) {
	for childID, n := range f.nodes {
		if n.parentID == id {
			f.removeSubtree(childID)
		}
	}

	delete(f.nodes, id)
}

func (f *fakeAPI) DownloadTo(
	_ context.Context, entryID int64, targetDir, name string,
	percent fjump.PercentFunc, _ *fjump.CancelFlag,
) error {
	n, ok := f.nodes[entryID]
	if !ok {
		return fjump.ErrNotFound
	}

	if percent != nil {
		percent(100)
	}

	return os.WriteFile(filepath.Join(targetDir, name), n.content, 0o600)
}

// osSource reads upload content from the real filesystem.
type osSource struct{}

func (osSource) Open(path string) (io.ReadSeekCloser, error) {
	return localfs.Open(path)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastBackoff() retry.Backoff {
	return retry.WithMaxRetries(provisionAttempts-1, retry.NewConstant(time.Millisecond))
}

// newTestOrchestrator wires an orchestrator against the fake with fresh
// flags and millisecond provisioning retries.
func newTestOrchestrator(api API) (*Orchestrator, *fjump.CancelFlag) {
	stop := &fjump.CancelFlag{}

	o := NewOrchestrator(Options{
		API:            api,
		Source:         osSource{},
		Logger:         discardLogger(),
		Stop:           stop,
		TransferCancel: &fjump.CancelFlag{},
	})
	o.prov.backoff = fastBackoff

	return o, stop
}
