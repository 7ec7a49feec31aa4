package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/api/router"
	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/metrics"
	"github/smartkit/relay/internal/relay"
)

// APIKey is the raw project key the test store resolves.
const APIKey = "test-api-key"

// ProjectID is the project the test store resolves APIKey to.
const ProjectID = "b9f39945-4e9f-4f38-9a79-d726bdd173d1"

// WithTestServer runs fn against a server wired with the given store and
// relay service. The database and chain backends stay down; handlers only see
// the interfaces.
func WithTestServer(t *testing.T, store relay.Store, svc relay.Service, fn func(s *api.Server)) {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()

	s := api.NewServer(cfg)
	s.Store = store
	s.Relay = svc
	s.Metrics = metrics.New()

	router.Init(s)

	fn(s)
}

// PerformRequest issues a request against the server's echo instance without
// a network listener. A non-nil body is sent as JSON.
func PerformRequest(t *testing.T, s *api.Server, method, path string, body interface{}, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if headers != nil {
		req.Header = headers
	}
	if body != nil {
		req.Header.Set(echoHeaderContentType, "application/json")
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// AuthenticatedHeaders returns headers carrying the test API key.
func AuthenticatedHeaders() http.Header {
	headers := http.Header{}
	headers.Set("X-API-Key", APIKey)
	return headers
}

const echoHeaderContentType = "Content-Type"
