// Package storage persists uploaded audio files. Every stored file is named
// {ownerID}-{originalFilename} so that all files of one track or stem can be
// found and removed by prefix.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/zeebo/errs"
)

// DefaultMaxUploadSize is the largest accepted audio payload (50 MiB).
const DefaultMaxUploadSize int64 = 50 << 20

// Kinds of owners; each gets its own directory or object prefix.
const (
	KindTrack = "track"
	KindStem  = "stem"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads/"

var (
	// Error is the class of infrastructure failures in this package.
	Error = errs.Class("storage")
	// ErrInvalidFileType rejects anything other than audio/mpeg or audio/wav.
	ErrInvalidFileType = errs.Class("invalid file type")
	// ErrFileTooLarge rejects payloads above the configured limit.
	ErrFileTooLarge = errs.Class("file too large")
	// ErrNotFound is returned by Open for unknown files.
	ErrNotFound = errs.Class("file not found")
)

var allowedTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/wav":  true,
}

// Upload is one incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.Reader
}

// FileStore stores and removes uploaded files.
type FileStore interface {
	// Save writes the upload as {ownerID}-{filename} and returns its public
	// audio path: /uploads/{kind}/{ownerID}-{filename}.
	Save(ctx context.Context, kind, ownerID string, file Upload) (string, error)

	// DeleteByPrefix removes every stored file of kind whose name starts with
	// "{ownerID}-". Removal is best effort: it keeps going after a failure
	// and returns the combined error with the number of files removed.
	DeleteByPrefix(ctx context.Context, kind, ownerID string) (int, error)

	// Open returns the content of a stored file.
	Open(ctx context.Context, kind, name string) (io.ReadCloser, error)
}

// CheckUpload validates content type and size before anything is written.
func CheckUpload(contentType string, size, maxSize int64) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !allowedTypes[strings.ToLower(mediaType)] {
		return ErrInvalidFileType.New("%q is not an accepted audio type (audio/mpeg, audio/wav)", contentType)
	}
	if maxSize > 0 && size > maxSize {
		return TooLarge(maxSize)
	}
	return nil
}

// TooLarge reports an upload above maxSize. The message is shown to clients.
func TooLarge(maxSize int64) error {
	return ErrFileTooLarge.New("File too large. The limit is %s.", FormatSize(maxSize))
}

// FormatSize renders a byte count as whole MiB when it divides evenly.
func FormatSize(n int64) string {
	if n > 0 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MiB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

// StoredName returns {ownerID}-{base(filename)}.
func StoredName(ownerID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "audio"
	}
	return ownerID + "-" + name
}

// AudioPath returns the public path of a stored file. The name is escaped so
// that characters like '#', '?' and '%' survive a round trip through a URL.
func AudioPath(kind, storedName string) string {
	return URLPrefix + kind + "/" + url.PathEscape(storedName)
}

// OwnerPrefix is the file name prefix shared by all files of one owner.
func OwnerPrefix(ownerID string) string {
	return ownerID + "-"
}

// ValidKind reports whether kind is a known owner kind.
func ValidKind(kind string) bool {
	return kind == KindTrack || kind == KindStem
}

// limitBody caps r at maxSize+1 bytes so an oversize body can be detected
// even when the declared size was wrong.
func limitBody(r io.Reader, maxSize int64) io.Reader {
	if maxSize <= 0 {
		return r
	}
	return io.LimitReader(r, maxSize+1)
}
