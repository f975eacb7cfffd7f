package wheelhouse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ProgressCallback is called during long-running operations to report progress.
// The message describes the current operation, current is the progress value,
// and total is the expected total (-1 if unknown).
type ProgressCallback func(message string, current, total int64)

// defaultDownloadTimeout bounds one artifact fetch end-to-end.
const defaultDownloadTimeout = 10 * time.Minute

// metaSuffix names the metadata sidecar written next to each cached wheel.
const metaSuffix = ".meta"

// Downloader fetches a resolved wheel into the local cache. Ensure is a no-op
// when a usable cached copy already exists at the target's LocalPath.
type Downloader interface {
	Ensure(ctx context.Context, target *ResolvedTarget) error
}

// downloadMeta records what was fetched. It is serialized with msgpack into
// the sidecar file and used to detect a truncated cache entry on later runs.
type downloadMeta struct {
	URL       string    `msgpack:"url"`
	Size      int64     `msgpack:"size"`
	SHA256    string    `msgpack:"sha256"`
	FetchedAt time.Time `msgpack:"fetched_at"`
}

// HTTPDownloader is the production Downloader fetching wheels over HTTPS.
type HTTPDownloader struct {
	// Client is the HTTP client used for fetches. NewHTTPDownloader installs
	// one with a fixed timeout ceiling.
	Client *http.Client

	// OnProgress is an optional progress callback; may be nil.
	OnProgress ProgressCallback
}

// NewHTTPDownloader creates a downloader with the default timeout.
func NewHTTPDownloader(progressCallback ProgressCallback) *HTTPDownloader {
	return &HTTPDownloader{
		Client:     &http.Client{Timeout: defaultDownloadTimeout},
		OnProgress: progressCallback,
	}
}

// Ensure makes the wheel available at target.LocalPath.
//
// If a non-empty file already exists there (and its size matches the sidecar,
// when present), no network request is made; deleting the cached file is the
// only way to force a refetch. Otherwise the wheel is streamed to a temporary
// file in the cache directory and atomically renamed into place, so a crashed
// or failed download never leaves a partial file at the canonical path.
func (d *HTTPDownloader) Ensure(ctx context.Context, target *ResolvedTarget) error {
	if cachedWheelUsable(target.LocalPath) {
		if d.OnProgress != nil {
			d.OnProgress("Using cached "+target.Artifact.FileName, 100, 100)
		}
		return nil
	}

	cacheDir := filepath.Dir(target.LocalPath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return &DownloadError{URL: target.Artifact.URL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.Artifact.URL, nil)
	if err != nil {
		return &DownloadError{URL: target.Artifact.URL, Err: err}
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return &DownloadError{URL: target.Artifact.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DownloadError{URL: target.Artifact.URL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if resp.ContentLength > 0 {
		if free, ferr := freeDiskSpace(cacheDir); ferr == nil && free < uint64(resp.ContentLength) {
			return &DownloadError{
				URL: target.Artifact.URL,
				Err: fmt.Errorf("insufficient disk space: need %d bytes, have %d", resp.ContentLength, free),
			}
		}
	}

	tmp, err := os.CreateTemp(cacheDir, target.Artifact.FileName+".tmp-*")
	if err != nil {
		return &DownloadError{URL: target.Artifact.URL, Err: err}
	}

	written, checksum, err := d.copyAndHash(tmp, resp.Body, resp.ContentLength, target.Artifact.FileName)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return &DownloadError{URL: target.Artifact.URL, Err: err}
	}
	if written == 0 {
		os.Remove(tmp.Name())
		return &DownloadError{URL: target.Artifact.URL, Err: fmt.Errorf("zero-byte payload")}
	}

	if err := os.Rename(tmp.Name(), target.LocalPath); err != nil {
		os.Remove(tmp.Name())
		return &DownloadError{URL: target.Artifact.URL, Err: err}
	}

	// The sidecar is advisory; a failure to write it does not undo a
	// successful download.
	writeDownloadMeta(target.LocalPath+metaSuffix, downloadMeta{
		URL:       target.Artifact.URL,
		Size:      written,
		SHA256:    checksum,
		FetchedAt: time.Now().UTC(),
	})

	if d.OnProgress != nil {
		d.OnProgress("Downloaded "+target.Artifact.FileName, 100, 100)
	}
	return nil
}

// copyAndHash streams body to w, hashing as it goes and reporting progress.
func (d *HTTPDownloader) copyAndHash(w io.Writer, body io.Reader, total int64, fileName string) (int64, string, error) {
	if total <= 0 {
		total = -1
	}
	hasher := sha256.New()
	buf := make([]byte, 256*1024)
	var written int64
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, "", werr
			}
			hasher.Write(buf[:n])
			written += int64(n)
			if d.OnProgress != nil {
				d.OnProgress("Downloading "+fileName+"...", written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, "", rerr
		}
	}
	return written, hex.EncodeToString(hasher.Sum(nil)), nil
}

// cachedWheelUsable reports whether an existing file at path can stand in for
// a fresh download: it must be non-empty, and when a metadata sidecar exists,
// its recorded size must match (a mismatch means a truncated copy).
func cachedWheelUsable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	meta, err := readDownloadMeta(path + metaSuffix)
	if err != nil {
		// No (or unreadable) sidecar: a non-empty file is trusted, matching
		// the original cache policy.
		return true
	}
	return meta.Size == info.Size()
}

func readDownloadMeta(path string) (downloadMeta, error) {
	var meta downloadMeta
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := msgpack.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

func writeDownloadMeta(path string, meta downloadMeta) error {
	data, err := msgpack.Marshal(&meta)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
