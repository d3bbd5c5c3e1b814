package httpapi

import (
	"net/http"

	"github.com/VectorPrivacy/vector-sdk-go/internal/destination"
)

// handleNIP96Config publishes the server configuration NIP-96 clients use to
// find the upload endpoint.
func (s *Server) handleNIP96Config(w http.ResponseWriter, r *http.Request) {
	base := s.baseURL(r)
	writeJSON(w, http.StatusOK, destination.ServerConfig{
		APIURL:        base + "/upload",
		DownloadURL:   base,
		SupportedNIPs: []int{96, 98},
	})
}
