package decart

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/decartgilad/decart-video-processor/internal/domain"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{APIKey: "  "}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestTransformSendsMultipartPayload(t *testing.T) {
	transport := &captureTransport{status: http.StatusOK, body: []byte("transformed-video")}
	client, err := NewClient(Options{
		APIKey:     "secret",
		Endpoint:   "https://remote.example/v1/generate/lucy-pro-v2v",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	payload := domain.NewVideoPayload([]byte{0x00, 0x01, 0x02, 0xff}, "video/quicktime", "clip.mov")
	out, err := client.Transform(context.Background(), payload, "  make it snow  ")
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if string(out) != "transformed-video" {
		t.Fatalf("body = %q, want %q", out, "transformed-video")
	}

	req := transport.lastRequest
	if req == nil {
		t.Fatalf("expected request to be captured")
	}
	if req.Method != http.MethodPost {
		t.Fatalf("method = %s, want POST", req.Method)
	}
	if req.URL.String() != "https://remote.example/v1/generate/lucy-pro-v2v" {
		t.Fatalf("url = %s", req.URL)
	}
	if got := req.Header.Get("X-API-KEY"); got != "secret" {
		t.Fatalf("api key header = %q, want secret", got)
	}

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type = %q (%v)", req.Header.Get("Content-Type"), err)
	}
	reader := multipart.NewReader(bytes.NewReader(transport.lastBody), params["boundary"])
	fields := map[string]*capturedPart{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		data, _ := io.ReadAll(part)
		fields[part.FormName()] = &capturedPart{
			filename:    part.FileName(),
			contentType: part.Header.Get("Content-Type"),
			data:        data,
		}
	}

	video, ok := fields["data"]
	if !ok {
		t.Fatalf("data field missing")
	}
	if video.filename != "input.mp4" {
		t.Fatalf("filename = %q, want input.mp4", video.filename)
	}
	if video.contentType != "video/mp4" {
		t.Fatalf("content type = %q, want video/mp4", video.contentType)
	}
	if !bytes.Equal(video.data, []byte{0x00, 0x01, 0x02, 0xff}) {
		t.Fatalf("video bytes mismatch: %v", video.data)
	}
	prompt, ok := fields["prompt"]
	if !ok {
		t.Fatalf("prompt field missing")
	}
	if string(prompt.data) != "make it snow" {
		t.Fatalf("prompt = %q, want %q", prompt.data, "make it snow")
	}
}

func TestTransformRejectsNonOKStatus(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusServiceUnavailable} {
		transport := &captureTransport{status: status, body: []byte(`{"error":"nope"}`)}
		client, err := NewClient(Options{APIKey: "secret", HTTPClient: &http.Client{Transport: transport}})
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		_, err = client.Transform(context.Background(), domain.NewVideoPayload([]byte("v"), "", ""), "prompt")
		var serr *SubmitError
		if !errors.As(err, &serr) {
			t.Fatalf("status %d: expected SubmitError, got %v", status, err)
		}
		if serr.Kind != KindRejected || serr.StatusCode != status {
			t.Fatalf("status %d: got kind=%s status=%d", status, serr.Kind, serr.StatusCode)
		}
		if !strings.Contains(serr.Error(), "api request failed") {
			t.Fatalf("unexpected message %q", serr.Error())
		}
	}
}

func TestTransformClassifiesNetworkFailure(t *testing.T) {
	transport := &captureTransport{err: errors.New("connection refused")}
	client, err := NewClient(Options{APIKey: "secret", HTTPClient: &http.Client{Transport: transport}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Transform(context.Background(), domain.NewVideoPayload([]byte("v"), "", ""), "prompt")
	if kind := KindOf(err); kind != KindNetwork {
		t.Fatalf("kind = %s, want network_failure (err=%v)", kind, err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("error should carry transport detail: %q", err.Error())
	}
}

func TestTransformClassifiesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewClient(Options{
		APIKey:         "secret",
		Endpoint:       srv.URL,
		RequestTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Transform(context.Background(), domain.NewVideoPayload([]byte("v"), "", ""), "prompt")
	var serr *SubmitError
	if !errors.As(err, &serr) || !serr.Timeout() {
		t.Fatalf("expected timeout SubmitError, got %v", err)
	}
}

func TestTransformRejectsBlankPromptWithoutCalling(t *testing.T) {
	transport := &captureTransport{status: http.StatusOK}
	client, err := NewClient(Options{APIKey: "secret", HTTPClient: &http.Client{Transport: transport}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Transform(context.Background(), domain.NewVideoPayload([]byte("v"), "", ""), "   "); err == nil {
		t.Fatalf("expected error for blank prompt")
	}
	if transport.calls != 0 {
		t.Fatalf("expected no remote call, got %d", transport.calls)
	}
}

type capturedPart struct {
	filename    string
	contentType string
	data        []byte
}

type captureTransport struct {
	status      int
	body        []byte
	err         error
	calls       int
	lastRequest *http.Request
	lastBody    []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	c.lastRequest = req
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
	}
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{
		StatusCode: c.status,
		Header:     http.Header{"Content-Type": []string{"video/mp4"}},
		Body:       io.NopCloser(bytes.NewReader(c.body)),
		Request:    req,
	}, nil
}
