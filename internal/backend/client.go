package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manish3-4/speech-to-text-frontend/internal/audio"
	"github.com/manish3-4/speech-to-text-frontend/internal/domain/transcript"
	"github.com/manish3-4/speech-to-text-frontend/internal/version"
)

// AudioField is the multipart field the backend reads the clip from.
const AudioField = "audio"

var (
	ErrNoBaseURL    = errors.New("backend URL not set: set STT_BACKEND_URL or add backend_url to config")
	ErrUnauthorized = errors.New("unauthorized")

	ErrNoRegisterPath = errors.New("register path not set: set STT_REGISTER_PATH or add register_path to config")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// UserMessage extracts the "message" or "error" field of a JSON error body.
func (e *APIError) UserMessage() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	AuthPath     string
	RegisterPath string
	Timeout      time.Duration // zero means no timeout
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client talks to the transcription backend.
type Client struct {
	baseURL      string
	authPath     string
	registerPath string
	httpClient   *http.Client
	log          *zap.Logger
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		authPath:     rooted(opts.AuthPath),
		registerPath: rooted(opts.RegisterPath),
		httpClient:   httpClient,
		log:          log,
	}
}

func rooted(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.postCredentials(ctx, c.authPath, email, password)
}

// Register creates an account. Backends that sign the new user in right away
// return a token; others return an empty one.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	if c.registerPath == "" {
		return "", ErrNoRegisterPath
	}
	return c.postCredentials(ctx, c.registerPath, email, password)
}

func (c *Client) postCredentials(ctx context.Context, path, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, "", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListTranscriptions returns the user's transcriptions in backend order.
func (c *Client) ListTranscriptions(ctx context.Context, token string) ([]transcript.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/transcriptions", token, nil)
	if err != nil {
		return nil, err
	}

	var records []transcript.Record
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Upload sends payload as the multipart field "audio" and returns the
// transcription the backend produced for it.
func (c *Client) Upload(ctx context.Context, token string, payload *audio.Payload) (*transcript.Record, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, AudioField, quoteEscaper.Replace(payload.Name)))
	header.Set("Content-Type", payload.MediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(payload.Data); err != nil {
		return nil, fmt.Errorf("writing audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", token, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var record transcript.Record
	if err := c.do(req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ClearTranscriptions deletes all of the user's transcriptions.
func (c *Client) ClearTranscriptions(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/transcriptions", token, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Ping checks that the backend answers at all. Any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/", "", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.baseURL, err)
	}
	resp.Body.Close()
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	requestID := req.Header.Get("X-Request-ID")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request completed",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
