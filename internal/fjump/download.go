package fjump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// downloadBlockSize is the read granularity for downloads. Progress and
// cancellation are both evaluated once per block.
const downloadBlockSize = 16384

// DownloadTo streams a remote file entry's content to targetDir/name.
// percent is invoked on every change in the computed whole percentage; it is
// skipped entirely when the response declares no usable content length.
// The cancellation flag is checked before each block is written; once
// observed, the method returns without error, keeping the blocks already
// streamed. percent and cancel may be nil.
func (c *Client) DownloadTo(
	ctx context.Context, entryID int64, targetDir, name string,
	percent PercentFunc, cancel *CancelFlag,
) error {
	c.logger.Info("downloading entry",
		slog.Int64("entry_id", entryID),
		slog.String("name", name),
	)

	path := fmt.Sprintf("file-entries/%d", entryID)

	resp, err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	total := resp.ContentLength

	target := filepath.Join(targetDir, name)

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("fjump: creating %s: %w", target, err)
	}
	defer out.Close()

	written, err := copyBlocks(resp.Body, out, total, percent, cancel)
	if errors.Is(err, ErrCancelled) {
		// Cancellation is a normal early exit: keep what was streamed.
		c.logger.Info("download stopped by user",
			slog.Int64("entry_id", entryID),
			slog.Int64("bytes_written", written),
		)

		return nil
	}

	if err != nil {
		return fmt.Errorf("fjump: downloading entry %d to %s: %w", entryID, target, err)
	}

	c.logger.Debug("download complete",
		slog.Int64("entry_id", entryID),
		slog.String("target", target),
		slog.Int64("bytes_written", written),
	)

	return nil
}

// copyBlocks streams src to dst in fixed-size blocks, reporting percentage
// progress when total is known. Returns ErrCancelled when the flag is
// observed between blocks.
func copyBlocks(src io.Reader, dst io.Writer, total int64, percent PercentFunc, cancel *CancelFlag) (int64, error) {
	buf := make([]byte, downloadBlockSize)

	var written int64

	lastPercent := -1

	for {
		if cancel.Cancelled() {
			return written, ErrCancelled
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return written, writeErr
			}

			written += int64(n)

			if percent != nil && total > 0 {
				p := int(written * 100 / total)
				if p != lastPercent {
					lastPercent = p
					percent(p)
				}
			}
		}

		if readErr == io.EOF {
			return written, nil
		}

		if readErr != nil {
			return written, readErr
		}
	}
}
