package http_test

import (
	"encoding/json"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	httpapi "github.com/crewdesk/crewdesk/internal/collab/http"
	"github.com/crewdesk/crewdesk/internal/collab/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *httpapi.Router {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	r := httpapi.NewRouter("test", st, slog.New(slog.DiscardHandler))
	r.ApplyRoutes()
	return r
}

func TestLivez(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/livez", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var body httpapi.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, "test", body.Version)
	require.Nil(t, body.Checks)
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/readyz", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var body httpapi.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
	require.NotNil(t, body.Checks)
	require.Equal(t, "ok", body.Checks.Database)
}
