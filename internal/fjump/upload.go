package fjump

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"
)

type uploadResponse struct {
	FileEntry struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"fileEntry"` //nolint:tagliatelle // FileJump API key
}

// multipartBody holds the precomputed framing around the streamed file part.
// Declaring the exact content length up front lets the request stream the
// file without buffering it in memory.
type multipartBody struct {
	prefix      []byte
	suffix      []byte
	contentType string
	size        int64 // full body length including framing
}

// buildMultipartBody lays out the upload form: parentId and relativePath
// fields, then the file part whose content is streamed by the caller.
func buildMultipartBody(localPath, relativePath string, fileSize int64) (*multipartBody, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	if err := w.WriteField("parentId", "null"); err != nil {
		return nil, fmt.Errorf("fjump: writing parentId field: %w", err)
	}

	if err := w.WriteField("relativePath", relativePath); err != nil {
		return nil, fmt.Errorf("fjump: writing relativePath field: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(localPath))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(localPath)))
	header.Set("Content-Type", mimeType)

	if _, err := w.CreatePart(header); err != nil {
		return nil, fmt.Errorf("fjump: creating file part: %w", err)
	}

	prefix := make([]byte, buf.Len())
	copy(prefix, buf.Bytes())

	suffix := []byte("\r\n--" + w.Boundary() + "--\r\n")

	return &multipartBody{
		prefix:      prefix,
		suffix:      suffix,
		contentType: w.FormDataContentType(),
		size:        int64(len(prefix)) + fileSize + int64(len(suffix)),
	}, nil
}

// progressReader wraps the request body, reporting every change in the
// sent-byte count and checking the cancellation flag before each chunk.
type progressReader struct {
	r        io.Reader
	name     string
	total    int64
	sent     int64
	progress ProgressFunc
	cancel   *CancelFlag
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if p.cancel.Cancelled() {
		return 0, ErrCancelled
	}

	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)

		if p.progress != nil {
			p.progress(p.name, p.sent, p.total)
		}
	}

	return n, err
}

// Upload streams a local file's bytes to the service as a single multipart
// request. relativePath places the file within the remote tree (forward
// slashes). progress and cancel may be nil.
//
// A timed-out attempt is retried with the request timeout escalated ×10;
// once the timeout exceeds its cap the upload fails permanently with
// ErrTimeout. Any non-201 status is a permanent *APIError. Cancellation
// through the flag returns ErrCancelled, which callers should treat as a
// normal early exit rather than a failure.
func (c *Client) Upload(
	ctx context.Context, localPath, relativePath string,
	content io.ReadSeeker, size int64,
	progress ProgressFunc, cancel *CancelFlag,
) (*FileHandle, error) {
	relativePath = strings.ReplaceAll(filepath.ToSlash(relativePath), "\\", "/")

	body, err := buildMultipartBody(localPath, relativePath, size)
	if err != nil {
		return nil, err
	}

	c.logger.Info("uploading file",
		slog.String("path", localPath),
		slog.String("relative_path", relativePath),
		slog.Int64("size", size),
	)

	started := time.Now()
	timeout := c.baseTimeout

	for {
		handle, upErr := c.uploadOnce(ctx, localPath, body, content, progress, cancel, timeout)
		if upErr == nil {
			c.logger.Info("file uploaded",
				slog.String("path", localPath),
				slog.Int64("size", size),
				slog.Duration("elapsed", time.Since(started)),
			)

			return handle, nil
		}

		if errors.Is(upErr, ErrCancelled) {
			c.logger.Info("file upload stopped by user",
				slog.String("path", localPath),
			)

			return nil, ErrCancelled
		}

		if !isTimeoutErr(upErr) || ctx.Err() != nil {
			return nil, upErr
		}

		if timeout > c.maxTimeout {
			c.logger.Error("upload timed out; giving up",
				slog.String("path", localPath),
				slog.Duration("timeout", timeout),
			)

			return nil, fmt.Errorf("fjump: upload of %s timed out after %s: %w", localPath, timeout, ErrTimeout)
		}

		timeout *= uploadTimeoutFactor

		c.logger.Info("upload timed out; retrying with escalated timeout",
			slog.String("path", localPath),
			slog.Duration("next_timeout", timeout),
		)

		if _, seekErr := content.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("fjump: rewinding upload content for retry: %w", seekErr)
		}
	}
}

// uploadOnce performs a single upload attempt under the given request timeout.
func (c *Client) uploadOnce(
	ctx context.Context, localPath string, body *multipartBody,
	content io.Reader, progress ProgressFunc, cancel *CancelFlag,
	timeout time.Duration,
) (*FileHandle, error) {
	reqCtx, cancelReq := context.WithTimeout(ctx, timeout)
	defer cancelReq()

	reader := &progressReader{
		r: io.MultiReader(
			bytes.NewReader(body.prefix),
			io.LimitReader(content, body.size-int64(len(body.prefix))-int64(len(body.suffix))),
			bytes.NewReader(body.suffix),
		),
		name:     localPath,
		total:    body.size,
		progress: progress,
		cancel:   cancel,
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"uploads", reader)
	if err != nil {
		return nil, fmt.Errorf("fjump: creating upload request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", body.contentType)
	req.ContentLength = body.size

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fjump: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		errBody, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort read for error message

		c.logger.Info("bad response on file upload",
			slog.String("path", localPath),
			slog.Int("status", resp.StatusCode),
		)

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(errBody),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	var ur uploadResponse
	if decErr := json.NewDecoder(resp.Body).Decode(&ur); decErr != nil {
		return nil, fmt.Errorf("fjump: decoding upload response: %w", decErr)
	}

	if ur.FileEntry.ID == 0 {
		return nil, fmt.Errorf("fjump: upload response carried no file entry for %s", localPath)
	}

	// A renamed upload is still a successful upload; the service may adjust
	// names it considers invalid.
	if want := filepath.Base(localPath); ur.FileEntry.Name != want {
		c.logger.Warn("uploaded file name mismatch",
			slog.String("requested", want),
			slog.String("assigned", ur.FileEntry.Name),
		)
	}

	return &FileHandle{
		ID:   ur.FileEntry.ID,
		Name: ur.FileEntry.Name,
		Path: ur.FileEntry.Path,
	}, nil
}

// isTimeoutErr reports whether err is a request timeout, which is the only
// retryable upload failure.
func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error

	return errors.As(err, &ne) && ne.Timeout()
}
