package decart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/decartgilad/decart-video-processor/internal/domain"
	"github.com/decartgilad/decart-video-processor/internal/infra"
)

const (
	defaultEndpoint = "https://api.decart.ai/v1/generate/lucy-pro-v2v"
	defaultTimeout  = 5 * time.Minute

	videoField    = "data"
	videoFilename = "input.mp4"
	videoMIME     = "video/mp4"
	promptField   = "prompt"
	apiKeyHeader  = "X-API-KEY"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("decart: api key is required")

// Options configures the video-to-video client.
type Options struct {
	APIKey         string
	Endpoint       string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client submits one (video, prompt) pair per call to the remote
// transformation endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a client. The API key is mandatory.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Endpoint returns the configured remote URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Transform performs one synchronous remote call and returns the response body
// verbatim. Every failure is a *SubmitError.
func (c *Client) Transform(ctx context.Context, payload domain.VideoPayload, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &SubmitError{Kind: KindUnexpected, Err: errors.New("prompt is required")}
	}
	body, contentType, err := encodeForm(payload, prompt)
	if err != nil {
		return nil, &SubmitError{Kind: KindUnexpected, Err: fmt.Errorf("encode request: %w", err)}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &SubmitError{Kind: KindUnexpected, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", strings.TrimSpace(string(snippet))).
			Msg("decart: remote rejected job")
		return nil, &SubmitError{Kind: KindRejected, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		serr := classify(fmt.Errorf("read response: %w", err))
		if serr.Kind == KindUnexpected {
			serr.Kind = KindNetwork
		}
		return nil, serr
	}
	c.logger.Debug().
		Int("bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("decart: transformed video")
	return raw, nil
}

func encodeForm(payload domain.VideoPayload, prompt string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, videoField, videoFilename))
	header.Set("Content-Type", videoMIME)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, payload.Reader()); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField(promptField, prompt); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}
