package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"glbview/internal/common/fsutil"
	"glbview/pkg/types"
)

// ModelExt is the only recognized model file extension.
const ModelExt = ".glb"

// LocalDescription tags every model served from this host.
const LocalDescription = "local"

// GLBScanner turns a directory listing into model descriptors.
type GLBScanner struct {
	// URLPrefix is prepended to each filename to build the descriptor URL.
	URLPrefix string
}

// NewGLBScanner returns a scanner publishing files under prefix (e.g. "/models").
func NewGLBScanner(prefix string) *GLBScanner {
	if prefix == "" {
		prefix = "/models"
	}
	return &GLBScanner{URLPrefix: prefix}
}

// Scan reads dir and returns one descriptor per *.glb file (case-insensitive).
// Subdirectories are ignored. Order follows the directory enumeration.
func (s *GLBScanner) Scan(dir string) ([]types.ModelDescriptor, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	models := make([]types.ModelDescriptor, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !fsutil.HasExt(name, ModelExt) {
			continue
		}
		models = append(models, types.ModelDescriptor{
			Name:        fsutil.TrimExt(name, ModelExt),
			URL:         path.Join(s.URLPrefix, url.PathEscape(name)),
			Description: LocalDescription,
			IsLocal:     true,
			Source:      types.SourceDiscovered,
		})
	}
	return models, nil
}

// LoadDir scans dir with the given URL prefix and reports any access error.
func LoadDir(dir, prefix string) ([]types.ModelDescriptor, error) {
	return NewGLBScanner(prefix).Scan(dir)
}

// DirState classifies the models directory for diagnostics.
type DirState string

const (
	DirOK         DirState = "ok"
	DirEmpty      DirState = "empty"
	DirAbsent     DirState = "absent"
	DirUnreadable DirState = "unreadable"
)

// Service is the model directory query. ListModels never fails: any access
// error yields an empty list.
type Service struct {
	dir     string
	scanner *GLBScanner
	log     zerolog.Logger
}

// NewService builds a directory service over dir.
func NewService(dir, prefix string, log zerolog.Logger) *Service {
	return &Service{dir: dir, scanner: NewGLBScanner(prefix), log: log}
}

// Dir returns the configured directory (unexpanded).
func (s *Service) Dir() string { return s.dir }

// ListModels returns the locally available models, or an empty list when
// the directory cannot be read.
func (s *Service) ListModels() []types.ModelDescriptor {
	models, err := s.scanner.Scan(s.dir)
	if err != nil {
		s.log.Debug().Err(err).Str("dir", s.dir).Msg("models dir unavailable")
		return []types.ModelDescriptor{}
	}
	return models
}

// Probe reports whether the directory is present, readable and holds models.
// It does not change what ListModels returns.
func (s *Service) Probe() DirState {
	models, err := s.scanner.Scan(s.dir)
	switch {
	case err == nil && len(models) == 0:
		return DirEmpty
	case err == nil:
		return DirOK
	case errors.Is(err, fs.ErrNotExist):
		return DirAbsent
	default:
		return DirUnreadable
	}
}
