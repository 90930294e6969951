package board

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hylla/taskcollab/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ErrAttachmentTooLarge reports a file above the configured size limit.
var ErrAttachmentTooLarge = errors.New("attachment too large")

const (
	defaultEncodeConcurrency = 4
	defaultMaxAttachmentSize = 10 << 20
)

// FileSource is a file picked for attachment.
type FileSource interface {
	Name() string
	Type() string
	Open() (io.ReadCloser, error)
}

// MemoryFile is an in-memory FileSource.
type MemoryFile struct {
	FileName string
	MIMEType string
	Content  []byte
}

func (f MemoryFile) Name() string { return f.FileName }
func (f MemoryFile) Type() string { return f.MIMEType }

// Open implements FileSource.
func (f MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.Content)), nil
}

// PathFile is a FileSource on the local filesystem.
type PathFile string

func (p PathFile) Name() string { return filepath.Base(string(p)) }

// Type guesses the MIME type from the extension.
func (p PathFile) Type() string {
	return mime.TypeByExtension(filepath.Ext(string(p)))
}

// Open implements FileSource.
func (p PathFile) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// Encoder converts files to data-URI attachments.
type Encoder struct {
	MaxBytes    int64
	Concurrency int
	NewID       func(prefix string) string
}

// Encode converts files concurrently. Successful attachments are returned in input
// order; failures are joined into the returned error and never discard successes.
func (e Encoder) Encode(ctx context.Context, files []FileSource) ([]domain.Attachment, error) {
	maxBytes := e.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxAttachmentSize
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = defaultEncodeConcurrency
	}
	newID := e.NewID
	if newID == nil {
		newID = domain.NewID
	}

	results := make([]*domain.Attachment, len(files))
	failures := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failures[i] = fmt.Errorf("encode %q: %w", file.Name(), err)
				return nil
			}
			att, err := encodeFile(file, maxBytes)
			if err != nil {
				failures[i] = fmt.Errorf("encode %q: %w", file.Name(), err)
				return nil
			}
			att.ID = newID(domain.AttachmentIDPrefix)
			results[i] = &att
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Attachment, 0, len(files))
	for _, att := range results {
		if att != nil {
			out = append(out, *att)
		}
	}
	return out, errors.Join(failures...)
}

func encodeFile(file FileSource, maxBytes int64) (domain.Attachment, error) {
	rc, err := file.Open()
	if err != nil {
		return domain.Attachment{}, err
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return domain.Attachment{}, err
	}
	if int64(len(content)) > maxBytes {
		return domain.Attachment{}, ErrAttachmentTooLarge
	}
	mimeType := file.Type()
	if mimeType == "" {
		mimeType = http.DetectContentType(content)
	}
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return domain.Attachment{
		Name: file.Name(),
		Type: mimeType,
		Size: int64(len(content)),
		Data: DataURI(mimeType, content),
	}, nil
}

// DataURI renders content as a base64 data URI.
func DataURI(mimeType string, content []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}
