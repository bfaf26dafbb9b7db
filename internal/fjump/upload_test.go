package fjump

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_Success(t *testing.T) {
	fileContent := []byte("hello upload")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/uploads", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Positive(t, r.ContentLength, "content length must be declared up front")

		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "null", r.FormValue("parentId"))
		assert.Equal(t, "x__/y__/a.txt", r.FormValue("relativePath"),
			"backslash separators must be converted to forward slashes")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "a.txt", header.Filename)

		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, got)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"fileEntry": {"id": 321, "name": "a.txt", "path": "5/6/321"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	handle, err := client.Upload(context.Background(),
		"/local/a.txt", `x__\y__\a.txt`,
		bytes.NewReader(fileContent), int64(len(fileContent)), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(321), handle.ID)
	assert.Equal(t, "a.txt", handle.Name)
	assert.Equal(t, "5/6/321", handle.Path)
}

func TestUpload_ReportsProgress(t *testing.T) {
	fileContent := bytes.Repeat([]byte("x"), 4096)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body) //nolint:errcheck // sink

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"fileEntry": {"id": 1, "name": "big.bin"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var (
		lastSent  int64
		lastTotal int64
		calls     int
	)

	progress := func(name string, sent, total int64) {
		assert.Equal(t, "/local/big.bin", name)
		assert.GreaterOrEqual(t, sent, lastSent, "sent bytes must be monotonic")

		lastSent = sent
		lastTotal = total
		calls++
	}

	_, err := client.Upload(context.Background(),
		"/local/big.bin", "big.bin",
		bytes.NewReader(fileContent), int64(len(fileContent)), progress, nil)
	require.NoError(t, err)

	assert.Positive(t, calls)
	assert.Equal(t, lastTotal, lastSent, "final report must cover the whole body")
	assert.Greater(t, lastTotal, int64(len(fileContent)), "total includes multipart framing")
}

func TestUpload_CancelledBeforeSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body) //nolint:errcheck // sink

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"fileEntry": {"id": 1, "name": "a.txt"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var flag CancelFlag

	flag.Cancel()

	_, err := client.Upload(context.Background(),
		"/local/a.txt", "a.txt",
		strings.NewReader("data"), 4, nil, &flag)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestUpload_TimeoutEscalation(t *testing.T) {
	var attempts int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++

		// Outlast every escalated client timeout.
		time.Sleep(300 * time.Millisecond)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"fileEntry": {"id": 1, "name": "slow.bin"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	client.baseTimeout = time.Millisecond
	client.maxTimeout = 10 * time.Millisecond

	_, err := client.Upload(context.Background(),
		"/local/slow.bin", "slow.bin",
		strings.NewReader("data"), 4, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	// Attempts run at 1x, 10x, and 100x the base timeout; the next
	// escalation would pass the cap, so the upload fails after three.
	assert.Equal(t, 3, attempts)
}

func TestUpload_RewindsBetweenAttempts(t *testing.T) {
	var attempts int

	fileContent := []byte("retry payload")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++

		if attempts == 1 {
			// Outlast the first attempt's timeout; the client aborts
			// this request mid-body.
			time.Sleep(200 * time.Millisecond)

			return
		}

		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, got, "retried attempt must resend the full content")

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"fileEntry": {"id": 9, "name": "retry.bin"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	client.baseTimeout = 20 * time.Millisecond
	client.maxTimeout = 10 * time.Second

	handle, err := client.Upload(context.Background(),
		"/local/retry.bin", "retry.bin",
		bytes.NewReader(fileContent), int64(len(fileContent)), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), handle.ID)
	assert.Equal(t, 2, attempts)
}

func TestUpload_BadStatusIsPermanent(t *testing.T) {
	var attempts int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++

		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Upload(context.Background(),
		"/local/a.txt", "a.txt",
		strings.NewReader("data"), 4, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, 1, attempts, "status errors must not be retried")
}

func TestBuildMultipartBody_ExactSize(t *testing.T) {
	body, err := buildMultipartBody("/local/a.txt", "dir/a.txt", 100)
	require.NoError(t, err)

	assert.Equal(t, int64(len(body.prefix))+100+int64(len(body.suffix)), body.size)
	assert.Contains(t, body.contentType, "multipart/form-data; boundary=")
	assert.True(t, bytes.HasSuffix(body.suffix, []byte("--\r\n")))
}
