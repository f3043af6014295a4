package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func serve(t *testing.T, h http.Handler, method string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, "/day", nil))
	return rr
}

func TestRouterProvider_RoutesKeepRegistrationOrder(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/history", replyHandler("ok"))
	rp.Post("/migrate", replyHandler("ok"))
	rp.Get("/health", replyHandler("ok"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 3)
	assert.Equal(t, "/history", routes[0].Url)
	assert.Equal(t, "/migrate", routes[1].Url)
	assert.Equal(t, "/health", routes[2].Url)
}

func TestRouterProvider_MethodsShareUrl(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/day", replyHandler("added"))
	rp.Put("/day", replyHandler("updated"))
	rp.Delete("/day", replyHandler("removed"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	h := routes[0].Handler

	assert.Equal(t, "added", serve(t, h, http.MethodPost).Body.String())
	assert.Equal(t, "updated", serve(t, h, http.MethodPut).Body.String())
	assert.Equal(t, "removed", serve(t, h, http.MethodDelete).Body.String())
}

func TestRouterProvider_RejectsUnregisteredMethod(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/day", replyHandler("added"))
	rp.Delete("/day", replyHandler("removed"))

	rr := serve(t, rp.GetRoutes()[0].Handler, http.MethodGet)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "DELETE, POST", rr.Header().Get("Allow"))
}

func TestRouterProvider_ReRegisterReplacesHandler(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/day", replyHandler("first"))
	rp.Get("/day", replyHandler("second"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "second", serve(t, routes[0].Handler, http.MethodGet).Body.String())
}
