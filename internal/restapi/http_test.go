package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"timberprices.msstate.edu/internal/app"
	"timberprices.msstate.edu/internal/appconf"
	"timberprices.msstate.edu/internal/logging"
	"timberprices.msstate.edu/internal/models"
	"timberprices.msstate.edu/internal/store"
	"timberprices.msstate.edu/internal/stumpage"
)

const testAdminKey = "TEST"

func fixturePath(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", "ms_stumpage.csv"))
	require.NoError(t, err)
	return path
}

// createTestApi creates a RestAPI serving the fixture dataset, backed by an
// in-memory store.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	source := fixturePath(t)
	dataset, err := stumpage.Load(context.Background(), nil, source)
	require.NoError(t, err)

	return createTestApiWithManager(t, stumpage.NewStaticManager(source, dataset))
}

func createTestApiWithManager(t *testing.T, manager *stumpage.Manager) *RestAPI {
	t.Helper()
	client, err := store.NewClient(store.NewConfig(":memory:", appconf.Test, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	application := &app.Application{
		Config: appconf.Config{
			Server: appconf.ServerConfig{Env: "test"},
			HTTP: appconf.HTTPConfig{
				RateLimit:   1000,
				CORSOrigins: []string{"*"},
				AdminKeys:   []string{testAdminKey},
			},
		},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Manager:  manager,
		Visits:   client,
		Debugger: client,
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

func serveApi(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	router := httprouter.New()
	api.SetRoutes(router)
	server := httptest.NewServer(api.WithMiddleware(router))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, server *httptest.Server, endpoint string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint, and returns the response
// and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	resp, body := get(t, serveApi(t, api), endpoint)

	var response models.ResponseModel
	require.NoError(t, json.Unmarshal(body, &response), string(body))
	return resp, response
}

func retrieveFieldErrors(t *testing.T, endpoint string) (*http.Response, map[string][]string) {
	t.Helper()
	resp, body := get(t, serveApi(t, createTestApi(t)), endpoint)

	var response struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}
	require.NoError(t, json.Unmarshal(body, &response), string(body))
	return resp, response.FieldErrors
}

func dataMap(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	return data
}
