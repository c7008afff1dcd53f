package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"kvk-ranker/internal/api"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/database"
	"kvk-ranker/internal/report"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/service"
	"kvk-ranker/internal/session"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	content string
}

func (s *stubExtractor) Provider() string { return config.ProviderOpenAI }

func (s *stubExtractor) Extract(context.Context, string, api.Image) ([]byte, error) {
	return []byte(s.content), nil
}

type stubExporter struct{}

func (stubExporter) Export(context.Context, []byte, report.Preset) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

type testEnv struct {
	srv       *httptest.Server
	extractor *stubExtractor
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "kvk.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{OpenAIAPIKey: apiKey, DefaultLang: "en-US"}
	logger := zerolog.Nop()
	sessions := session.NewManager(time.Hour, logger)
	prefs := repository.NewPreferenceRepository(db, logger)
	handoffs := repository.NewHandoffRepository(db, logger)
	ext := &stubExtractor{content: `{"values":[100,0,0,0,0,0,0,0]}`}

	s := NewKVKServer(
		sessions,
		service.NewKingdomService(sessions, ext, prefs, cfg, logger),
		service.NewRankingService(sessions, handoffs, logger),
		service.NewReportService(handoffs, stubExporter{}, logger),
		prefs,
		cfg,
		logger,
	)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, extractor: ext}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) doJSON(t *testing.T, method, path string, in any) *http.Response {
	t.Helper()
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, body, "application/json")
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) createSession(t *testing.T) sessionView {
	t.Helper()
	resp := e.doJSON(t, http.MethodPost, "/api/sessions", map[string]string{"lang": "en-US"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[sessionView](t, resp)
}

func (e *testEnv) upload(t *testing.T, sid, kid string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "shot.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, mw.Close())
	return e.do(t, http.MethodPost, "/api/sessions/"+sid+"/kingdoms/"+kid+"/screenshot", &buf, mw.FormDataContentType())
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, "sk-test")

	sess := env.createSession(t)
	assert.Equal(t, "en-US", sess.Lang)
	assert.Equal(t, 20.0, sess.Weights.T5)
	require.Len(t, sess.Kingdoms, 1)

	resp := env.doJSON(t, http.MethodGet, "/api/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = env.doJSON(t, http.MethodDelete, "/api/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.doJSON(t, http.MethodGet, "/api/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestKingdomEditing(t *testing.T) {
	env := newTestEnv(t, "sk-test")
	sess := env.createSession(t)
	first := sess.Kingdoms[0].ID

	resp := env.doJSON(t, http.MethodDelete, "/api/sessions/"+sess.ID+"/kingdoms/"+first, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.doJSON(t, http.MethodPost, "/api/sessions/"+sess.ID+"/kingdoms", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[kingdomView](t, resp)

	resp = env.doJSON(t, http.MethodPatch, "/api/sessions/"+sess.ID+"/kingdoms/"+second.ID, map[string]string{"name": "K32"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "K32", decode[kingdomView](t, resp).Name)

	resp = env.doJSON(t, http.MethodDelete, "/api/sessions/"+sess.ID+"/kingdoms/"+first, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.doJSON(t, http.MethodPatch, "/api/sessions/"+sess.ID+"/kingdoms/missing", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWeightsAreClamped(t *testing.T) {
	env := newTestEnv(t, "sk-test")
	sess := env.createSession(t)

	resp := env.doJSON(t, http.MethodPut, "/api/sessions/"+sess.ID+"/weights", map[string]float64{"t5": 250, "t4": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decode[sessionView](t, resp)
	assert.Equal(t, 100.0, v.Weights.T5)
	assert.Equal(t, 1.0, v.Weights.T4)

	resp = env.do(t, http.MethodPut, "/api/sessions/"+sess.ID+"/weights", bytes.NewBufferString("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRankAndReport(t *testing.T) {
	env := newTestEnv(t, "sk-test")
	sess := env.createSession(t)
	kid := sess.Kingdoms[0].ID

	resp := env.doJSON(t, http.MethodGet, "/api/sessions/"+sess.ID+"/report", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "/", decode[errorBody](t, resp).Redirect)

	resp = env.doJSON(t, http.MethodPost, "/api/sessions/"+sess.ID+"/ranking", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "precondition", decode[errorBody](t, resp).Kind)

	resp = env.upload(t, sess.ID, kid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	kv := decode[kingdomView](t, resp)
	require.NotNil(t, kv.Totals)
	assert.Equal(t, int64(100), kv.Totals.Tier5Total)
	assert.Equal(t, 2000.0, kv.Totals.Score)
	assert.Equal(t, "100", kv.Totals.Fields["infantry_t5"])

	resp = env.doJSON(t, http.MethodPost, "/api/sessions/"+sess.ID+"/ranking", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ranking := decode[rankingResponse](t, resp)
	assert.Equal(t, "Kingdom 1", ranking.Champion.Name)
	assert.Equal(t, 2000.0, ranking.Summary.TotalScore)
	assert.Equal(t, "2 K (2,000)", ranking.Display["championScore"])

	resp = env.doJSON(t, http.MethodGet, "/api/sessions/"+sess.ID+"/report?preset=desktop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), "Kingdom 1")

	resp = env.doJSON(t, http.MethodGet, "/api/sessions/"+sess.ID+"/report.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "KVK_REPORT_MOBILE.png")

	resp = env.doJSON(t, http.MethodGet, "/api/sessions/"+sess.ID+"/report.png?preset=tablet", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadFailures(t *testing.T) {
	env := newTestEnv(t, "sk-test")
	sess := env.createSession(t)
	kid := sess.Kingdoms[0].ID

	env.extractor.content = `{"values":[1,2,3]}`
	resp := env.upload(t, sess.ID, kid)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "wrong element count: expected 8, received 3", decode[errorBody](t, resp).Error)

	resp = env.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/kingdoms/"+kid+"/screenshot", http.NoBody, "image/png")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadWithoutAPIKey(t *testing.T) {
	env := newTestEnv(t, "")
	sess := env.createSession(t)

	resp := env.upload(t, sess.ID, sess.Kingdoms[0].ID)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, "configuration", decode[errorBody](t, resp).Kind)

	resp = env.doJSON(t, http.MethodPut, "/api/preferences/api-key", map[string]string{"key": "sk-saved"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.upload(t, sess.ID, sess.Kingdoms[0].ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetLocale(t *testing.T) {
	env := newTestEnv(t, "sk-test")
	sess := env.createSession(t)

	resp := env.doJSON(t, http.MethodPut, "/api/sessions/"+sess.ID+"/locale", map[string]string{"lang": "pt-BR"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pt-BR", decode[sessionView](t, resp).Lang)

	// New sessions pick up the saved preference.
	resp = env.doJSON(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pt-BR", decode[sessionView](t, resp).Lang)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, "")
	resp := env.doJSON(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
