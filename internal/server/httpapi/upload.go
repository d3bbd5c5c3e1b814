package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/limiter"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/models"
)

// httpError carries the status an upload failure maps to.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func fail(status int, format string, args ...any) *httpError {
	return &httpError{status: status, msg: fmt.Sprintf(format, args...)}
}

type blobDescriptor struct {
	URL      string `json:"url"`
	SHA256   string `json:"sha256"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	Uploaded int64  `json:"uploaded"`
}

func (s *Server) handleBlossomUpload(w http.ResponseWriter, r *http.Request) {
	b, err := s.accept(r, func() ([]byte, string, error) {
		data, err := s.readBody(w, r.Body)
		return data, r.Header.Get("Content-Type"), err
	})
	if err != nil {
		s.writeError(w, r, err, func(status int, msg string) {
			w.Header().Set("X-Reason", msg)
			http.Error(w, msg, status)
		})
		return
	}

	writeJSON(w, http.StatusOK, blobDescriptor{
		URL:      s.baseURL(r) + "/" + b.SHA256,
		SHA256:   b.SHA256,
		Size:     b.Size,
		Type:     b.MimeType,
		Uploaded: b.CreatedAt.Unix(),
	})
}

type nip96Response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	NIP94Event *nip94Event `json:"nip94_event,omitempty"`
}

type nip94Event struct {
	Tags    [][]string `json:"tags"`
	Content string     `json:"content"`
}

func (s *Server) handleNIP96Upload(w http.ResponseWriter, r *http.Request) {
	b, err := s.accept(r, func() ([]byte, string, error) {
		return s.readFilePart(w, r)
	})
	if err != nil {
		s.writeError(w, r, err, func(status int, msg string) {
			writeJSON(w, status, nip96Response{Status: "error", Message: msg})
		})
		return
	}

	url := s.baseURL(r) + "/" + b.SHA256
	writeJSON(w, http.StatusCreated, nip96Response{
		Status:  "success",
		Message: "Upload successful.",
		NIP94Event: &nip94Event{Tags: [][]string{
			{"url", url},
			{"ox", b.SHA256},
			{"x", b.SHA256},
			{"m", b.MimeType},
			{"size", strconv.FormatInt(b.Size, 10)},
		}},
	})
}

// accept runs the steps shared by both upload protocols: rate limiting,
// reading the body, grant verification and storage.
func (s *Server) accept(r *http.Request, read func() ([]byte, string, error)) (*models.Blob, error) {
	ctx := r.Context()

	ok, retryAfter, err := s.limiter.Allow(ctx, limiter.HashKey(clientIP(r)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &rateLimited{retryAfter: retryAfter}
	}

	data, mimeType, err := read()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fail(http.StatusBadRequest, "empty upload")
	}
	digest := cryptox.CalculateDigest(data)

	if want := r.Header.Get("X-SHA-256"); want != "" && !strings.EqualFold(want, digest) {
		return nil, fail(http.StatusBadRequest, "X-SHA-256 does not match the body")
	}

	uploader := ""
	if len(s.secret) > 0 {
		claims, err := auth.VerifyUpload(r.Header.Get("Authorization"), s.secret, digest)
		if err != nil {
			return nil, authError(err)
		}
		uploader = claims.Subject
	}

	b, err := s.blobs.Put(ctx, data, mediaType(mimeType), uploader)
	if err != nil {
		return nil, err
	}
	return b, nil
}

type rateLimited struct {
	retryAfter time.Duration
}

func (e *rateLimited) Error() string { return "too many uploads" }

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, write func(status int, msg string)) {
	var he *httpError
	var rl *rateLimited
	switch {
	case errors.As(err, &rl):
		secs := int(rl.retryAfter.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		write(http.StatusTooManyRequests, err.Error())
	case errors.As(err, &he):
		write(he.status, he.msg)
	default:
		s.log.Error("upload failed", zap.String("path", r.URL.Path), zap.Error(err))
		write(http.StatusInternalServerError, "internal error")
	}
}

func authError(err error) *httpError {
	switch {
	case errors.Is(err, auth.ErrWrongVerb), errors.Is(err, auth.ErrBlobDigestMismatch):
		return fail(http.StatusForbidden, "%v", err)
	default:
		return fail(http.StatusUnauthorized, "%v", err)
	}
}

func (s *Server) readBody(w http.ResponseWriter, body io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, body, s.maxUpload))
	if err != nil {
		return nil, bodyError(err)
	}
	return data, nil
}

func (s *Server) readFilePart(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", fail(http.StatusBadRequest, "expected multipart/form-data: %v", err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", fail(http.StatusBadRequest, "missing file part")
		}
		if err != nil {
			return nil, "", bodyError(err)
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, "", bodyError(err)
		}
		return data, part.Header.Get("Content-Type"), nil
	}
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fail(http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", tooLarge.Limit)
	}
	return fail(http.StatusBadRequest, "read body: %v", err)
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
