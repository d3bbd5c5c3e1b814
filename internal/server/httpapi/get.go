package httpapi

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/VectorPrivacy/vector-sdk-go/internal/server/blobs"
)

// handleGet serves /<sha256> and /<sha256>.<ext>. The GET pattern also
// matches HEAD.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("blob")
	digest := strings.TrimSuffix(name, path.Ext(name))

	b, data, err := s.blobs.Get(r.Context(), digest)
	switch {
	case errors.Is(err, blobs.ErrInvalidDigest), errors.Is(err, blobs.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		s.log.Error("read blob", zap.String("sha256", digest), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", b.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(int64(len(data)), 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}
