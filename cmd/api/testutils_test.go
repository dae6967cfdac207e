package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/ids"
	"CricketScoreApi/internal/jsonlog"
	"CricketScoreApi/internal/matchhub"
	"CricketScoreApi/internal/rosters"
	"CricketScoreApi/internal/store"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	referenceData, err := rosters.Load()
	if err != nil {
		t.Fatal(err)
	}

	var cfg config
	cfg.env = "testing"
	cfg.version = "testing"
	cfg.limiter.enabled = false

	app := &application{
		logger:  jsonlog.New(io.Discard, jsonlog.LevelError),
		config:  cfg,
		models:  data.NewModels(store.NewMemoryStore()),
		rosters: referenceData,
	}
	app.hubs = matchhub.NewHubModel(app.models, app.logger, nil)
	t.Cleanup(app.hubs.Shutdown)

	return app
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &testServer{ts}
}

func (ts *testServer) request(t *testing.T, method, urlPath, token string,
	body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.URL+urlPath, reader)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, &decoded); err != nil {
			t.Fatalf("invalid JSON response: %s", responseBody)
		}
	}

	return res.StatusCode, decoded
}

func adminToken(username string) string {
	return ids.EncodeAdminID(username)
}

func matchBody() map[string]any {
	return map[string]any{
		"teamA":           "India",
		"teamB":           "Australia",
		"oversPerInnings": 20,
		"squads": map[string]any{
			"teamA": []string{"Asha", "Binod", "Deepa"},
			"teamB": []string{"Chetan", "Dinesh", "Esha"},
		},
	}
}
