// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeBadRequest
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "backend service is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound    = &ClientError{Type: ErrTypeNotFound, Message: "resource not found"}
)

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsUnreachable checks if an error indicates the backend is down.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend API base URL (default: http://127.0.0.1:8088)
	// Uses explicit IPv4 to avoid IPv6 resolution issues on Windows.
	BaseURL string

	// Timeout for regular requests (default: 30s)
	Timeout time.Duration

	// UploadTimeout for multipart PDF uploads, which include server-side
	// indexing time (default: 10m)
	UploadTimeout time.Duration

	// RequestsPerSecond throttles outgoing calls so dropdown-driven bursts
	// do not hammer the service (default: 10)
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8088",
		Timeout:           30 * time.Second,
		UploadTimeout:     10 * time.Minute,
		RequestsPerSecond: 10,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the docent backend API.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8088"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = 10 * time.Minute
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 10
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), int(config.RequestsPerSecond)),
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Ping checks whether the backend is reachable. Any HTTP response counts
// as reachable; only transport failures and timeouts report an error.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeUnreachable, Message: "backend service is not reachable", Cause: err}
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// doJSON performs a request with an optional JSON body and decodes a JSON
// response into out (when out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "rate limit wait canceled", Cause: err}
	}

	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeUnreachable, Message: "backend service is not reachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &ClientError{Type: ErrTypeNotFound, Message: statusMessage(resp, "resource not found")}
	}
	if resp.StatusCode == http.StatusBadRequest {
		return &ClientError{Type: ErrTypeBadRequest, Message: statusMessage(resp, "request rejected")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: statusMessage(resp, fmt.Sprintf("unexpected status %s from %s %s", resp.Status, method, path)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// statusMessage extracts the backend's {"detail": ...} error body when
// present, falling back to the given message.
func statusMessage(resp *http.Response, fallback string) string {
	var ae apiError
	if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil && ae.Detail != "" {
		return ae.Detail
	}
	return fallback
}

// =============================================================================
// DIRECTORY OPERATIONS
// =============================================================================

// SearchLogin queries the directory for login contexts matching the given
// (possibly partial) selection.
func (c *Client) SearchLogin(ctx context.Context, company, team, part, employeeID string) ([]LoginContext, error) {
	q := url.Values{}
	q.Set("company", company)
	q.Set("team", team)
	q.Set("part", part)
	q.Set("employeeID", employeeID)

	var out []LoginContext
	if err := c.doJSON(ctx, http.MethodGet, "/login", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCompany appends a new company node to the directory.
func (c *Client) AddCompany(ctx context.Context, company string) error {
	return c.doJSON(ctx, http.MethodPost, "/company", nil, map[string]string{"company": company}, nil)
}

// AddTeam appends a new team node under a company.
func (c *Client) AddTeam(ctx context.Context, company, team string) error {
	return c.doJSON(ctx, http.MethodPost, "/team", nil, map[string]string{
		"company": company, "team": team,
	}, nil)
}

// AddPart appends a new part node under a company/team.
func (c *Client) AddPart(ctx context.Context, company, team, part string) error {
	return c.doJSON(ctx, http.MethodPost, "/part", nil, map[string]string{
		"company": company, "team": team, "part": part,
	}, nil)
}

// AddEmployee registers an employee ID in a part. The directory models
// employee registration as a login submission.
func (c *Client) AddEmployee(ctx context.Context, company, team, part, employeeID string) error {
	return c.doJSON(ctx, http.MethodPost, "/login", nil, map[string]string{
		"company": company, "team": team, "part": part, "employeeID": employeeID,
	}, nil)
}

// =============================================================================
// CHATBOT REGISTRY OPERATIONS
// =============================================================================

// ListChatbots returns the chatbot records for exactly the given scope.
func (c *Client) ListChatbots(ctx context.Context, scope Scope) ([]ChatbotInfo, error) {
	q := url.Values{}
	q.Set("company", scope.Company)
	q.Set("team", scope.Team)
	q.Set("part", scope.Part)

	var out []ChatbotInfo
	if err := c.doJSON(ctx, http.MethodGet, "/chatbots", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteChatbot removes a chatbot and its trained data from the backend.
func (c *Client) DeleteChatbot(ctx context.Context, scope Scope, name string) error {
	q := url.Values{}
	q.Set("company", scope.Company)
	q.Set("team", scope.Team)
	q.Set("part", scope.Part)
	q.Set("chatbot_name", name)

	return c.doJSON(ctx, http.MethodDelete, "/chatbots", q, nil, nil)
}

// UploadPDF posts one PDF as multipart form data and triggers server-side
// indexing. The call returns once indexing has finished; the long
// UploadTimeout covers that synchronous window.
func (c *Client) UploadPDF(ctx context.Context, scope Scope, name, pdfPath string) (*UploadResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeTimeout, Message: "rate limit wait canceled", Cause: err}
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeBadRequest, Message: fmt.Sprintf("cannot open %s", pdfPath), Cause: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build multipart body", Cause: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read PDF", Cause: err}
	}
	for k, v := range map[string]string{
		"company":      scope.Company,
		"team":         scope.Team,
		"part":         scope.Part,
		"chatbot_name": name,
	} {
		if err := mw.WriteField(k, v); err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build multipart body", Cause: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to finish multipart body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/upload_pdf", &buf)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// Uploads use a dedicated client: indexing can far outlive the regular
	// request timeout.
	uploadClient := &http.Client{Timeout: c.config.UploadTimeout}
	resp, err := uploadClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "backend service is not reachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: statusMessage(resp, "upload failed: "+resp.Status),
		}
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat asks the trained chatbot a question with prior history and returns
// the grounded answer plus its retrieved source pages.
func (c *Client) Chat(ctx context.Context, scope Scope, name, question string, history []ChatTurn) (*ChatAnswer, error) {
	if history == nil {
		history = []ChatTurn{}
	}
	req := ChatRequest{
		Company:     scope.Company,
		Team:        scope.Team,
		Part:        scope.Part,
		ChatbotName: name,
		Question:    question,
		ChatHistory: history,
	}

	var out ChatAnswer
	if err := c.doJSON(ctx, http.MethodPost, "/chat", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// QUIZ OPERATIONS
// =============================================================================

// quizQuery builds the shared query params for the qna endpoints.
func quizQuery(scope Scope, name string) url.Values {
	q := url.Values{}
	q.Set("company", scope.Company)
	q.Set("team", scope.Team)
	q.Set("part", scope.Part)
	q.Set("chatbot_name", name)
	return q
}

// GenerateQuiz requests a fresh question set for a chatbot. When force is
// true the backend regenerates instead of returning a cached set.
func (c *Client) GenerateQuiz(ctx context.Context, scope Scope, name string, force bool) (*QuizResponse, error) {
	q := quizQuery(scope, name)
	if force {
		q.Set("force", "true")
	}

	var out QuizResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/qna", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AppendQuiz requests additional questions appended to the existing set.
func (c *Client) AppendQuiz(ctx context.Context, scope Scope, name string) (*QuizResponse, error) {
	var out QuizResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/qna/append", quizQuery(scope, name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteQuizQuestion removes one question and returns the updated set.
func (c *Client) DeleteQuizQuestion(ctx context.Context, scope Scope, name, questionID string) (*QuizResponse, error) {
	q := quizQuery(scope, name)
	q.Set("question_id", questionID)

	var out QuizResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/qna/question", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
