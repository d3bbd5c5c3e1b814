package netx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const maxResponseBytes = 1 << 20

// ErrUnsupportedProtocol is returned for a Target with an unknown Protocol.
var ErrUnsupportedProtocol = errors.New("netx: unsupported protocol")

// Protocol selects how a body is framed for a host.
type Protocol int

const (
	// ProtocolBlossom sends the raw body with PUT and expects a blob
	// descriptor ({"url": ...}) back.
	ProtocolBlossom Protocol = iota + 1
	// ProtocolNIP96 sends a multipart form with a single "file" field and
	// expects a NIP-94 event whose tags carry the url.
	ProtocolNIP96
	// ProtocolPresigned sends the raw body with PUT to a presigned object
	// store URL. The location is known before the upload starts.
	ProtocolPresigned
)

func (p Protocol) String() string {
	switch p {
	case ProtocolBlossom:
		return "blossom"
	case ProtocolNIP96:
		return "nip96"
	case ProtocolPresigned:
		return "presigned"
	default:
		return "unknown"
	}
}

// Target is a fully resolved upload endpoint.
type Target struct {
	Protocol Protocol
	URL      string
	Header   http.Header
	// Location is returned on success for ProtocolPresigned.
	Location string
	// FileName is the multipart file name for ProtocolNIP96.
	FileName string
}

// Upload describes the body to send.
type Upload struct {
	Body      []byte
	MimeType  string
	ChunkSize int
	// OnBytesSent receives the cumulative byte count after each chunk has
	// been handed to the transport.
	OnBytesSent func(cumulative int64)
}

// StreamUpload sends u.Body to t in chunks and returns the location the host
// assigned to it. All failures are *TransportError except request
// construction errors caused by a malformed target URL.
func (c *Client) StreamUpload(ctx context.Context, t Target, u Upload) (string, error) {
	pr, pw := io.Pipe()

	method := http.MethodPut
	contentType := u.MimeType
	contentLength := int64(len(u.Body))
	var produce func() error

	switch t.Protocol {
	case ProtocolNIP96:
		method = http.MethodPost
		mw := multipart.NewWriter(pw)
		contentType = mw.FormDataContentType()
		contentLength = -1
		produce = func() error {
			part, err := mw.CreatePart(filePartHeader(t.FileName, u.MimeType))
			if err != nil {
				return err
			}
			if err := writeChunks(part, u.Body, u.ChunkSize, u.OnBytesSent); err != nil {
				return err
			}
			return mw.Close()
		}
	case ProtocolBlossom, ProtocolPresigned:
		if t.Protocol == ProtocolPresigned || contentType == "" {
			contentType = "application/octet-stream"
		}
		produce = func() error {
			return writeChunks(pw, u.Body, u.ChunkSize, u.OnBytesSent)
		}
	default:
		return "", fmt.Errorf("%w: %d", ErrUnsupportedProtocol, t.Protocol)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.URL, pr)
	if err != nil {
		return "", fmt.Errorf("netx: build request: %w", err)
	}
	if contentLength >= 0 {
		req.ContentLength = contentLength
	}
	for k, vs := range t.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)

	produced := make(chan struct{})
	go func() {
		defer close(produced)
		pw.CloseWithError(produce())
	}()
	defer func() {
		// unblocks the producer if the transport gave up mid-body
		_ = pr.Close()
		<-produced
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", rejected(resp)
	}

	switch t.Protocol {
	case ProtocolBlossom:
		return readBlossomDescriptor(ctx, resp)
	case ProtocolNIP96:
		return readNIP96Response(ctx, resp)
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		if t.Location != "" {
			return t.Location, nil
		}
		return stripQuery(t.URL), nil
	}
}

func filePartHeader(name, mimeType string) textproto.MIMEHeader {
	if name == "" {
		name = "file"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": name,
	}))
	h.Set("Content-Type", mimeType)
	return h
}

func rejected(resp *http.Response) *TransportError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &TransportError{
		Kind:   KindRemoteRejected,
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(b)),
	}
}

func readBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	return b, nil
}

func invalidResponse(format string, args ...any) *TransportError {
	return &TransportError{Kind: KindInvalidResponse, Err: fmt.Errorf(format, args...)}
}

type blobDescriptor struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256,omitempty"`
	Size   int64  `json:"size,omitempty"`
	Type   string `json:"type,omitempty"`
}

func readBlossomDescriptor(ctx context.Context, resp *http.Response) (string, error) {
	b, err := readBody(ctx, resp)
	if err != nil {
		return "", err
	}
	var d blobDescriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return "", invalidResponse("decode blob descriptor: %w", err)
	}
	if d.URL == "" {
		return "", invalidResponse("blob descriptor has no url")
	}
	return d.URL, nil
}

type nip96Response struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	NIP94Event struct {
		Tags [][]string `json:"tags"`
	} `json:"nip94_event"`
}

func readNIP96Response(ctx context.Context, resp *http.Response) (string, error) {
	b, err := readBody(ctx, resp)
	if err != nil {
		return "", err
	}
	var r nip96Response
	if err := json.Unmarshal(b, &r); err != nil {
		return "", invalidResponse("decode nip96 response: %w", err)
	}
	if r.Status == "error" {
		return "", &TransportError{Kind: KindRemoteRejected, Status: resp.StatusCode, Body: r.Message}
	}
	for _, tag := range r.NIP94Event.Tags {
		if len(tag) >= 2 && tag[0] == "url" && tag[1] != "" {
			return tag[1], nil
		}
	}
	return "", invalidResponse("nip96 response has no url tag")
}

func stripQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
