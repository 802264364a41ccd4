package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"legal-lab/auth"
)

func setupHTTP(t *testing.T, config Config) (*httptest.Server, *serviceFixture) {
	t.Helper()
	fixture := setupService(t)
	server := NewServer(slog.Default(), fixture.service, config)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, fixture
}

func postJSON(t *testing.T, url, body string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	request, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&decoded))
	return response, decoded
}

func TestServer_Health(t *testing.T) {
	req := require.New(t)
	ts, _ := setupHTTP(t, Config{})

	response, err := http.Get(ts.URL + "/health")
	req.NoError(err)
	defer response.Body.Close()
	req.Equal(http.StatusOK, response.StatusCode)
}

func TestServer_Init_Then_QA(t *testing.T) {
	req := require.New(t)
	ts, fixture := setupHTTP(t, Config{})
	fixture.llm.replies = []string{"Rent is 950 euros."}

	sessionID := uuid.NewString()
	response, body := postJSON(t, ts.URL+"/init_session",
		fmt.Sprintf(`{"document": %q, "session_id": %q}`, leaseDocument, sessionID), nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal(fmt.Sprintf("Session %s initialized with document.", sessionID), body["message"])

	response, body = postJSON(t, ts.URL+"/qa",
		fmt.Sprintf(`{"question": "How much is the rent?", "session_id": %q}`, sessionID), nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal("Rent is 950 euros.", body["answer"])
}

func TestServer_QA_Unknown_Session_Is_404(t *testing.T) {
	req := require.New(t)
	ts, _ := setupHTTP(t, Config{})

	response, _ := postJSON(t, ts.URL+"/qa",
		fmt.Sprintf(`{"question": "anything", "session_id": %q}`, uuid.NewString()), nil)
	req.Equal(http.StatusNotFound, response.StatusCode)
}

func TestServer_Rejects_Incomplete_Request(t *testing.T) {
	req := require.New(t)
	ts, _ := setupHTTP(t, Config{})

	response, _ := postJSON(t, ts.URL+"/qa",
		fmt.Sprintf(`{"session_id": %q}`, uuid.NewString()), nil)
	req.Equal(http.StatusBadRequest, response.StatusCode)
}

func TestServer_Reset_Session_Messages(t *testing.T) {
	req := require.New(t)
	ts, _ := setupHTTP(t, Config{})

	sessionID := uuid.NewString()
	response, body := postJSON(t, ts.URL+"/init_session",
		fmt.Sprintf(`{"document": "Some contract.", "session_id": %q}`, sessionID), nil)
	req.Equal(http.StatusOK, response.StatusCode)

	response, body = postJSON(t, ts.URL+"/reset_session/"+sessionID, `{}`, nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal(fmt.Sprintf("Session %s cleared.", sessionID), body["message"])

	// Resetting a missing session is not an error
	response, body = postJSON(t, ts.URL+"/reset_session/"+sessionID, `{}`, nil)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal(fmt.Sprintf("Session %s not found.", sessionID), body["message"])
}

func TestServer_Search_Returns_Clauses(t *testing.T) {
	req := require.New(t)
	ts, _ := setupHTTP(t, Config{})

	sessionID := uuid.NewString()
	response, _ := postJSON(t, ts.URL+"/init_session",
		fmt.Sprintf(`{"document": %q, "session_id": %q}`, leaseDocument, sessionID), nil)
	req.Equal(http.StatusOK, response.StatusCode)

	getResponse, err := http.Get(fmt.Sprintf("%s/search?session_id=%s&q=notice", ts.URL, sessionID))
	req.NoError(err)
	defer getResponse.Body.Close()
	req.Equal(http.StatusOK, getResponse.StatusCode)

	var decoded SearchResponse
	req.NoError(json.NewDecoder(getResponse.Body).Decode(&decoded))
	req.NotEmpty(decoded.Clauses)
	req.Contains(decoded.Clauses[0].Text, "notice")
}

func TestServer_Token_Mode(t *testing.T) {
	req := require.New(t)
	tokens := auth.NewTokenService("a_long_enough_testing_secret", time.Hour)
	ts, fixture := setupHTTP(t, Config{Tokens: tokens})
	fixture.llm.replies = []string{"answer"}

	sessionID := uuid.NewString()
	response, body := postJSON(t, ts.URL+"/init_session",
		fmt.Sprintf(`{"document": "Some contract.", "session_id": %q}`, sessionID), nil)
	req.Equal(http.StatusOK, response.StatusCode)

	token, ok := body["token"].(string)
	req.True(ok)
	req.NotEmpty(token)

	qaBody := fmt.Sprintf(`{"question": "anything", "session_id": %q}`, sessionID)

	// Without a token the session endpoints refuse
	response, _ = postJSON(t, ts.URL+"/qa", qaBody, nil)
	req.Equal(http.StatusUnauthorized, response.StatusCode)

	// A token for another session is rejected
	foreign, err := tokens.Issue(uuid.NewString())
	req.NoError(err)
	response, _ = postJSON(t, ts.URL+"/qa", qaBody,
		map[string]string{"Authorization": "Bearer " + foreign})
	req.Equal(http.StatusForbidden, response.StatusCode)

	// The issued token goes through
	response, body = postJSON(t, ts.URL+"/qa", qaBody,
		map[string]string{"Authorization": "Bearer " + token})
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal("answer", body["answer"])
}

func TestServer_APIKey_Mode(t *testing.T) {
	req := require.New(t)
	hash, err := auth.HashAPIKey("sk-test-key")
	req.NoError(err)
	ts, _ := setupHTTP(t, Config{APIKeyHash: hash})

	sessionID := uuid.NewString()
	body := fmt.Sprintf(`{"document": "Some contract.", "session_id": %q}`, sessionID)

	response, _ := postJSON(t, ts.URL+"/init_session", body, nil)
	req.Equal(http.StatusUnauthorized, response.StatusCode)

	response, _ = postJSON(t, ts.URL+"/init_session", body,
		map[string]string{"X-API-Key": "sk-test-key"})
	req.Equal(http.StatusOK, response.StatusCode)
}
