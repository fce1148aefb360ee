package viewer

import (
	"bytes"
	"io"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"glbview/internal/common/fsutil"
	"glbview/internal/registry"
	"glbview/pkg/types"
)

// GLBContentType is served for uploaded model bytes.
const GLBContentType = "model/gltf-binary"

// Upload runs the upload protocol: validates the extension, stores the bytes
// as a session-local blob, appends a descriptor and selects it. A rejected
// name sets the validation message and leaves catalog and selection alone.
func (c *Controller) Upload(filename string, r io.Reader) (types.ModelDescriptor, error) {
	if !fsutil.HasExt(filename, registry.ModelExt) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return types.ModelDescriptor{}, ErrClosed
		}
		c.errMsg = MsgUnsupportedFile
		c.lastActive = time.Now()
		c.publishLocked(EventUploadRejected, map[string]any{"file": filename})
		c.publishStateLocked()
		return types.ModelDescriptor{}, unsupportedFileError{name: filename}
	}

	blob, err := c.blobs.Put(filename, r)
	if err != nil {
		return types.ModelDescriptor{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.blobs.Release(blob.ID)
		return types.ModelDescriptor{}, ErrClosed
	}
	d := types.ModelDescriptor{
		Name:        fsutil.TrimExt(path.Base(filename), registry.ModelExt),
		URL:         c.blobs.URL(blob.ID),
		Description: registry.LocalDescription,
		IsLocal:     true,
		Source:      types.SourceUploaded,
	}
	c.catalog.AddUploaded(d)
	c.blobIDs = append(c.blobIDs, blob.ID)
	c.autoSelected = true
	c.publishLocked(EventUploaded, map[string]any{"file": filename, "bytes": len(blob.Data)})
	c.selectLocked(d)
	c.publishStateLocked()
	return d, nil
}

// Blob is an uploaded file held in memory for the lifetime of its session.
type Blob struct {
	ID          string
	Name        string
	ContentType string
	Data        []byte
	Created     time.Time
}

// BlobStore keeps uploaded model bytes addressable by URL until released.
type BlobStore struct {
	mu       sync.RWMutex
	prefix   string
	maxBytes int64
	blobs    map[string]*Blob
}

// NewBlobStore serves blobs under prefix (e.g. "/blobs"). maxBytes <= 0 means
// no size limit.
func NewBlobStore(prefix string, maxBytes int64) *BlobStore {
	return &BlobStore{prefix: prefix, maxBytes: maxBytes, blobs: make(map[string]*Blob)}
}

// Put reads r fully and stores it under a fresh id.
func (s *BlobStore) Put(name string, r io.Reader) (*Blob, error) {
	var buf bytes.Buffer
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}
	if s.maxBytes > 0 && int64(buf.Len()) > s.maxBytes {
		return nil, tooLargeError{limit: s.maxBytes}
	}
	b := &Blob{
		ID:          uuid.NewString(),
		Name:        path.Base(name),
		ContentType: GLBContentType,
		Data:        buf.Bytes(),
		Created:     time.Now(),
	}
	s.mu.Lock()
	s.blobs[b.ID] = b
	s.mu.Unlock()
	return b, nil
}

// Get returns the blob with the given id.
func (s *BlobStore) Get(id string) (*Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	return b, ok
}

// URL returns the address a page uses to fetch blob id.
func (s *BlobStore) URL(id string) string { return path.Join(s.prefix, id) }

// Release drops the given blobs. Unknown ids are ignored.
func (s *BlobStore) Release(ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range ids {
		delete(s.blobs, id)
	}
	s.mu.Unlock()
}

// Len returns the number of live blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
