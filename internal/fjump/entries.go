package fjump

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// listPageSize is the perPage value for entry listings — the maximum the
// FileJump API accepts.
const listPageSize = 1000

// entryResponse mirrors the FileJump file-entry JSON exactly.
// Unexported — callers use Entry via toEntry() normalization.
type entryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	FileSize    int64  `json:"file_size"`   //nolint:tagliatelle // FileJump API key
	CreatedAt   string `json:"created_at"`  //nolint:tagliatelle // FileJump API key
	UpdatedAt   string `json:"updated_at"`  //nolint:tagliatelle // FileJump API key
	Description string `json:"description"`
}

type listEntriesResponse struct {
	Data     []entryResponse `json:"data"`
	NextPage *int            `json:"next_page"` //nolint:tagliatelle // FileJump API key
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID int64  `json:"parentId"` //nolint:tagliatelle // FileJump API key
}

type createFolderResponse struct {
	Folder entryResponse `json:"folder"`
}

type setDescriptionRequest struct {
	Description string `json:"description"`
}

type deleteEntriesRequest struct {
	EntryIDs      []int64 `json:"entryIds"`      //nolint:tagliatelle // FileJump API key
	DeleteForever bool    `json:"deleteForever"` //nolint:tagliatelle // FileJump API key
}

// toEntry normalizes an API file-entry into our Entry type.
func (r *entryResponse) toEntry() Entry {
	return Entry{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		ParentPath:  r.Path,
		Size:        r.FileSize,
		CreatedAt:   r.CreatedAt,
		ModifiedAt:  r.UpdatedAt,
		Description: r.Description,
	}
}

// ListEntries returns every entry whose parent is parentID, paging through
// the listing until the API reports no further page. parentID 0 lists the
// drive root.
func (c *Client) ListEntries(ctx context.Context, parentID int64) ([]Entry, error) {
	var entries []Entry

	page := 0
	for {
		path := fmt.Sprintf("drive/file-entries?perPage=%d&workspaceId=0&page=%d", listPageSize, page)
		if parentID != 0 {
			path = fmt.Sprintf("drive/file-entries?perPage=%d&parentIds=%d&workspaceId=0&page=%d",
				listPageSize, parentID, page)
		}

		resp, err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK)
		if err != nil {
			return nil, err
		}

		var lr listEntriesResponse
		decErr := json.NewDecoder(resp.Body).Decode(&lr)
		resp.Body.Close()

		if decErr != nil {
			return nil, fmt.Errorf("fjump: decoding entry listing: %w", decErr)
		}

		for i := range lr.Data {
			entries = append(entries, lr.Data[i].toEntry())
		}

		c.logger.Debug("fetched entry page",
			slog.Int64("parent_id", parentID),
			slog.Int("page", page),
			slog.Int("count", len(lr.Data)),
		)

		if lr.NextPage == nil {
			break
		}

		page = *lr.NextPage
	}

	return entries, nil
}

// GetFileInfo lists the parent folder and returns the entry with the given
// id, or nil if the parent holds no such entry.
func (c *Client) GetFileInfo(ctx context.Context, parentID, entryID int64) (*Entry, error) {
	entries, err := c.ListEntries(ctx, parentID)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].ID == entryID {
			return &entries[i], nil
		}
	}

	return nil, nil
}

// CreateFolder creates a folder under the given parent. parentID 0 creates
// it at the drive root.
func (c *Client) CreateFolder(ctx context.Context, name string, parentID int64) (*Entry, error) {
	c.logger.Info("creating folder",
		slog.String("name", name),
		slog.Int64("parent_id", parentID),
	)

	bodyBytes, err := json.Marshal(createFolderRequest{Name: name, ParentID: parentID})
	if err != nil {
		return nil, fmt.Errorf("fjump: marshaling create folder request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "folders", bytes.NewReader(bodyBytes), http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var cfr createFolderResponse
	if err := json.NewDecoder(resp.Body).Decode(&cfr); err != nil {
		return nil, fmt.Errorf("fjump: decoding create folder response: %w", err)
	}

	if cfr.Folder.ID == 0 {
		return nil, fmt.Errorf("fjump: create folder response carried no folder data for %q", name)
	}

	entry := cfr.Folder.toEntry()

	return &entry, nil
}

// SetDescription replaces the free-text description of a file entry.
func (c *Client) SetDescription(ctx context.Context, entryID int64, description string) error {
	bodyBytes, err := json.Marshal(setDescriptionRequest{Description: description})
	if err != nil {
		return fmt.Errorf("fjump: marshaling description request: %w", err)
	}

	path := fmt.Sprintf("file-entries/%d", entryID)

	resp, err := c.do(ctx, http.MethodPut, path, bytes.NewReader(bodyBytes), http.StatusOK)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Response body is the updated entry; nothing in it is needed.
	return drainBody(resp)
}

// Delete removes the given entries in one batch call. With forever set the
// entries are destroyed rather than moved to the service trash.
func (c *Client) Delete(ctx context.Context, entryIDs []int64, forever bool) error {
	if len(entryIDs) == 0 {
		return nil
	}

	c.logger.Info("deleting entries",
		slog.Int("count", len(entryIDs)),
		slog.Bool("forever", forever),
	)

	bodyBytes, err := json.Marshal(deleteEntriesRequest{EntryIDs: entryIDs, DeleteForever: forever})
	if err != nil {
		return fmt.Errorf("fjump: marshaling delete request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "file-entries/delete", bytes.NewReader(bodyBytes), http.StatusOK)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return drainBody(resp)
}
