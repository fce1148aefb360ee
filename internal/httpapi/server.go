package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"glbview/internal/common/fsutil"
	"glbview/internal/manager"
	"glbview/internal/registry"
	"glbview/internal/viewer"
	"glbview/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.ModelDescriptor
	Status() types.StatusResponse
	Ready() bool
	Create() (*manager.Session, error)
	Get(id string) (*manager.Session, error)
	Close(id string) error
	Blob(id string) (*viewer.Blob, bool)
}

// uploadField is the multipart field carrying the model file.
const uploadField = "file"

// NewMux builds the router. hub may be nil, in which case state pushes over
// websockets are not offered and pages poll instead.
func NewMux(svc Service, hub *Hub) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)
	// Compression for JSON endpoints and the page
	r.Use(middleware.Compress(5, "application/json", "text/html", "text/javascript"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shutting down"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	r.Group(func(r chi.Router) {
		r.Use(InflightMiddleware)

		r.Get("/", servePage)
		r.Get(modelsPath+"/*", serveModelFile)
		r.Get("/blobs/{id}", func(w http.ResponseWriter, r *http.Request) {
			b, ok := svc.Blob(chi.URLParam(r, "id"))
			if !ok {
				writeJSONError(w, http.StatusNotFound, "blob not found")
				return
			}
			w.Header().Set("Content-Type", b.ContentType)
			w.Header().Set("Cache-Control", "private, no-store")
			http.ServeContent(w, r, b.Name, b.Created, bytes.NewReader(b.Data))
		})

		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Status())
		})

		r.Get("/api/models", func(w http.ResponseWriter, r *http.Request) {
			models := svc.ListModels()
			if models == nil {
				models = []types.ModelDescriptor{}
			}
			writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
		})

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				s, err := svc.Create()
				if err != nil {
					if errors.Is(err, manager.ErrShuttingDown) {
						writeJSONError(w, http.StatusServiceUnavailable, err.Error())
						return
					}
					writeServiceError(w, err)
					return
				}
				w.Header().Set("Location", "/api/sessions/"+s.ID)
				writeJSON(w, http.StatusCreated, s.Controller.State())
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", withSession(svc, func(w http.ResponseWriter, r *http.Request, s *manager.Session) {
					writeJSON(w, http.StatusOK, s.Controller.State())
				}))

				r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
					if err := svc.Close(chi.URLParam(r, "id")); err != nil {
						writeServiceError(w, err)
						return
					}
					w.WriteHeader(http.StatusNoContent)
				})

				r.Post("/select", withSession(svc, func(w http.ResponseWriter, r *http.Request, s *manager.Session) {
					var req types.SelectRequest
					if !decodeJSON(w, r, &req) {
						return
					}
					if strings.TrimSpace(req.Key) == "" {
						writeJSONError(w, http.StatusBadRequest, "key is required")
						return
					}
					if err := s.Controller.Select(req.Key); err != nil {
						writeServiceError(w, err)
						return
					}
					writeJSON(w, http.StatusOK, s.Controller.State())
				}))

				r.Post("/upload", withSession(svc, handleUpload))

				r.Post("/widget", withSession(svc, func(w http.ResponseWriter, r *http.Request, s *manager.Session) {
					var req types.WidgetEventRequest
					if !decodeJSON(w, r, &req) {
						return
					}
					kind, err := viewer.ParseEventKind(req.Event)
					if err != nil {
						writeJSONError(w, http.StatusBadRequest, err.Error())
						return
					}
					delivered := s.Widget.Fire(kind, req.Src)
					s.Controller.Touch()
					writeJSON(w, http.StatusOK, types.WidgetEventResponse{Delivered: delivered, State: s.Controller.State()})
				}))

				r.Post("/refresh", withSession(svc, func(w http.ResponseWriter, r *http.Request, s *manager.Session) {
					ctx, cancel := sessionContext(r)
					defer cancel()
					if err := s.Controller.Refresh(ctx); err != nil {
						switch {
						case shuttingDown(ctx):
							writeServiceError(w, manager.ErrShuttingDown)
						case r.Context().Err() == nil:
							writeServiceError(w, err)
						}
						return
					}
					writeJSON(w, http.StatusOK, s.Controller.State())
				}))

				if hub != nil {
					r.Get("/ws", withSession(svc, func(w http.ResponseWriter, r *http.Request, s *manager.Session) {
						ctx, cancel := sessionContext(r)
						defer cancel()
						hub.Serve(ctx, w, r, s.ID, s.Controller)
					}))
				}
			})
		})
	})

	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Accept", "Content-Type", "X-Log-Level", "X-Request-Id"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *manager.Session)

func withSession(svc Service, h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		h(w, r, s)
	}
}

// decodeJSON enforces the content type and body limit for JSON endpoints.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies also land here; report them as bad input.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// handleUpload streams the first "file" part of a multipart form into the
// session. The extension check happens before any bytes are stored.
func handleUpload(w http.ResponseWriter, r *http.Request, s *manager.Session) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "multipart/form-data" {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be multipart/form-data")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	mr, err := r.MultipartReader()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeJSONError(w, http.StatusBadRequest, "file is required")
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		d, err := s.Controller.Upload(part.FileName(), part)
		_ = part.Close()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		logDebug("upload accepted", "session", s.ID, "name", d.Name, "url", d.URL)
		writeJSON(w, http.StatusCreated, s.Controller.State())
		return
	}
}

// serveModelFile serves a .glb from the models directory. The request path
// is already unescaped; names with separators or that are not local to the
// directory are refused. Dots inside a name ("v1..2.glb") are fine.
func serveModelFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, modelsPath+"/")
	if name == "" || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) ||
		!fsutil.HasExt(name, registry.ModelExt) {
		writeJSONError(w, http.StatusNotFound, "model not found")
		return
	}
	dir, err := fsutil.ExpandHome(modelsDir)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "model not found")
		return
	}
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "model not found")
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		writeJSONError(w, http.StatusNotFound, "model not found")
		return
	}
	w.Header().Set("Content-Type", viewer.GLBContentType)
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
