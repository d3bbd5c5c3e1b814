// Package httpapi serves the blob host API: Blossom uploads (PUT /upload),
// NIP-96 uploads (POST multipart) and content retrieval by digest.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/VectorPrivacy/vector-sdk-go/internal/destination"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/blobs"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/limiter"
)

const defaultMaxUpload = 100 << 20

type Options struct {
	Blobs   *blobs.Service
	Limiter limiter.Limiter
	// Secret enables upload grant verification when set.
	Secret []byte
	// MaxUploadBytes bounds request bodies.
	MaxUploadBytes int64
	// PublicURL is the base of returned blob URLs. When empty it is taken
	// from the request.
	PublicURL string
	Logger    *zap.Logger
}

type Server struct {
	blobs     *blobs.Service
	limiter   limiter.Limiter
	secret    []byte
	maxUpload int64
	publicURL string
	log       *zap.Logger
}

func New(o Options) *Server {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Limiter == nil {
		o.Limiter = limiter.NewMemory(0, 0)
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = defaultMaxUpload
	}
	return &Server{
		blobs:     o.Blobs,
		limiter:   o.Limiter,
		secret:    o.Secret,
		maxUpload: o.MaxUploadBytes,
		publicURL: strings.TrimSuffix(o.PublicURL, "/"),
		log:       o.Logger.With(zap.String("module", "httpapi")),
	}
}

// Handler returns the routed API wrapped in logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /upload", s.handleBlossomUpload)
	mux.HandleFunc("POST /upload", s.handleNIP96Upload)
	mux.HandleFunc("POST /{$}", s.handleNIP96Upload)
	mux.HandleFunc("GET "+destination.WellKnownNIP96, s.handleNIP96Config)
	mux.HandleFunc("GET /{blob}", s.handleGet)
	return recoverer(s.log, logRequests(s.log, mux))
}

func (s *Server) baseURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
