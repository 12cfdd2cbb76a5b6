package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// httptest servers leave keep-alive conns in the pool briefly.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		// opencensus (transitive dep of genai) starts a worker at package init.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

func newTestServer(opts Options) *Server {
	return New(zap.NewNop(), opts)
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatus_Unconfigured(t *testing.T) {
	s := newTestServer(Options{})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, false, status["configured"])
	assert.Equal(t, "", status["maskedKey"])
}

func TestConfig_RoundTrip(t *testing.T) {
	s := newTestServer(Options{})
	router := s.Router()

	rec := postJSON(t, router, "/config", `{"apiUrl":"http://upstream.local/v1","apiKey":"sk-test-1234","model":"m1","maxTokens":512}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, true, status["configured"])
	assert.Equal(t, "http://upstream.local/v1", status["apiUrl"])
	assert.Equal(t, "m1", status["model"])
	assert.Equal(t, "****1234", status["maskedKey"])
}

func TestConfig_Validation(t *testing.T) {
	s := newTestServer(Options{})
	router := s.Router()

	cases := []struct {
		name string
		body string
	}{
		{"missing apiUrl", `{"apiKey":"k"}`},
		{"missing apiKey", `{"apiUrl":"http://x"}`},
		{"negative maxTokens", `{"apiUrl":"http://x","apiKey":"k","maxTokens":-1}`},
		{"malformed json", `{"apiUrl":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, router, "/config", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestRefine_NotConfigured(t *testing.T) {
	s := newTestServer(Options{})
	rec := postJSON(t, s.Router(), "/refine", `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRefine_Validation(t *testing.T) {
	s := newTestServer(Options{})
	s.SetConfig(RuntimeConfig{APIURL: "http://upstream.local", APIKey: "k"})
	router := s.Router()

	cases := []struct {
		name string
		body string
	}{
		{"no messages", `{"messages":[]}`},
		{"bad role", `{"messages":[{"role":"wizard","content":"hi"}]}`},
		{"empty content", `{"messages":[{"role":"user","content":""}]}`},
		{"malformed json", `{"messages":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, router, "/refine", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRefine_BodyTooLarge(t *testing.T) {
	s := newTestServer(Options{MaxBodyBytes: 128})
	s.SetConfig(RuntimeConfig{APIURL: "http://upstream.local", APIKey: "k"})

	big := `{"messages":[{"role":"user","content":"` + strings.Repeat("x", 4096) + `"}]}`
	rec := postJSON(t, s.Router(), "/refine", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRefine_ForwardsToUpstream(t *testing.T) {
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"proxied reply"}}]}`))
	}))
	defer upstream.Close()

	s := newTestServer(Options{})
	s.SetConfig(RuntimeConfig{APIURL: upstream.URL, APIKey: "sk-x", Model: "m1"})

	rec := postJSON(t, s.Router(), "/refine", `{"messages":[{"role":"system","content":"s"},{"role":"user","content":"u"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"proxied reply"}`, rec.Body.String())
	assert.Contains(t, string(gotBody), `"model":"m1"`)
	assert.Contains(t, string(gotBody), `"role":"system"`)
}

func TestRefine_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`upstream exploded with key sk-leaky`))
	}))
	defer upstream.Close()

	s := newTestServer(Options{})
	s.SetConfig(RuntimeConfig{APIURL: upstream.URL, APIKey: "sk-leaky"})

	rec := postJSON(t, s.Router(), "/refine", `{"messages":[{"role":"user","content":"u"}]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-leaky")
}

func TestRefine_UpstreamTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer upstream.Close()

	s := newTestServer(Options{UpstreamTimeout: 30 * time.Millisecond})
	s.SetConfig(RuntimeConfig{APIURL: upstream.URL, APIKey: "k"})

	rec := postJSON(t, s.Router(), "/refine", `{"messages":[{"role":"user","content":"u"}]}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", maskKey(""))
	assert.Equal(t, "****", maskKey("abcd"))
	assert.Equal(t, "****6789", maskKey("sk-123456789"))
}
