// Package client is the HTTP client of the tool server, used by the console
// chatbot. One typed method per tool endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
}

// New builds a client for the tool server at baseURL. apiKey is optional and
// only needed when the server runs with an API key configured.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type initSessionRequest struct {
	Document  string `json:"document"`
	SessionID string `json:"session_id"`
}

type initSessionResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type qaRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// Clause mirrors one search result of the tool server.
type Clause struct {
	Ordinal int     `json:"ordinal"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Health reports whether the tool server answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("tool server unhealthy: status %d", response.StatusCode)
	}
	return nil
}

// InitSession registers the document under the session ID. The session token
// returned by the server, if any, is kept for the following calls.
func (c *Client) InitSession(ctx context.Context, sessionID, document string) (string, error) {
	var response initSessionResponse
	err := c.post(ctx, "/init_session", initSessionRequest{Document: document, SessionID: sessionID}, &response)
	if err != nil {
		return "", err
	}
	c.token = response.Token
	return response.Message, nil
}

func (c *Client) Ask(ctx context.Context, sessionID, question string) (string, error) {
	var response struct {
		Answer string `json:"answer"`
	}
	err := c.post(ctx, "/qa", qaRequest{Question: question, SessionID: sessionID}, &response)
	return response.Answer, err
}

func (c *Client) Simplify(ctx context.Context, sessionID string) (string, error) {
	var response struct {
		SimplifiedDocument string `json:"simplified_document"`
	}
	err := c.post(ctx, "/simplify", sessionRequest{SessionID: sessionID}, &response)
	return response.SimplifiedDocument, err
}

func (c *Client) AnalyzeComplications(ctx context.Context, sessionID string) (string, error) {
	var response struct {
		Analysis string `json:"analysis"`
	}
	err := c.post(ctx, "/analyze_complications", sessionRequest{SessionID: sessionID}, &response)
	return response.Analysis, err
}

func (c *Client) ValidateDocument(ctx context.Context, sessionID string) (string, error) {
	var response struct {
		Validation string `json:"validation"`
	}
	err := c.post(ctx, "/validate_document", sessionRequest{SessionID: sessionID}, &response)
	return response.Validation, err
}

func (c *Client) ExtractKeyDates(ctx context.Context, sessionID string) (string, error) {
	var response struct {
		KeyDates string `json:"key_dates"`
	}
	err := c.post(ctx, "/extract_key_dates", sessionRequest{SessionID: sessionID}, &response)
	return response.KeyDates, err
}

func (c *Client) ResetSession(ctx context.Context, sessionID string) (string, error) {
	var response struct {
		Message string `json:"message"`
	}
	err := c.post(ctx, "/reset_session/"+url.PathEscape(sessionID), struct{}{}, &response)
	return response.Message, err
}

func (c *Client) SearchClauses(ctx context.Context, sessionID, query string) ([]Clause, error) {
	values := url.Values{}
	values.Set("session_id", sessionID)
	values.Set("q", query)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(request)

	httpResponse, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer httpResponse.Body.Close()
	if err := checkStatus(httpResponse); err != nil {
		return nil, err
	}

	var response struct {
		Clauses []Clause `json:"clauses"`
	}
	if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
		return nil, err
	}
	return response.Clauses, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	c.setHeaders(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("tool server unreachable: %w", err)
	}
	defer response.Body.Close()

	if err := checkStatus(response); err != nil {
		return err
	}
	return json.NewDecoder(response.Body).Decode(out)
}

func (c *Client) setHeaders(request *http.Request) {
	if c.apiKey != "" {
		request.Header.Set("X-API-Key", c.apiKey)
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func checkStatus(response *http.Response) error {
	if response.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
	return fmt.Errorf("tool server returned status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
}
