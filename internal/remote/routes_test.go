package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu        sync.Mutex
	snapshots []Status
}

func (c *capturePublisher) Publish(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, status)
}

func (c *capturePublisher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshots)
}

func newTestRouter(t *testing.T, speaker *fakeSpeaker) (http.Handler, *capturePublisher) {
	t.Helper()
	publisher := &capturePublisher{}
	router := chi.NewRouter()
	RegisterRoutes(router, newTestRemote(t, speaker, Options{}), publisher)
	return router, publisher
}

func serve(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStatusRoute(t *testing.T) {
	router, _ := newTestRouter(t, newFakeSpeaker())

	rec := serve(router, http.MethodGet, "/v1/remote/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "remote_status", body["object"])
	require.Equal(t, false, body["connected"])
	require.Equal(t, float64(UnknownVolume), body["volume"])
}

func TestGetVolumeRoute(t *testing.T) {
	speaker := newFakeSpeaker().on("GetVolume", http.StatusOK, "<CurrentVolume>31</CurrentVolume>")
	router, publisher := newTestRouter(t, speaker)

	rec := serve(router, http.MethodGet, "/v1/remote/volume", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(31), decodeBody(t, rec)["volume"])
	require.Equal(t, 1, publisher.count())
}

func TestGetVolumeRouteFailure(t *testing.T) {
	speaker := newFakeSpeaker().on("GetVolume", http.StatusInternalServerError, "")
	router, publisher := newTestRouter(t, speaker)

	rec := serve(router, http.MethodGet, "/v1/remote/volume", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "SONOS_UNREACHABLE")
	require.Equal(t, 1, publisher.count())
}

func TestSetVolumeRouteClamps(t *testing.T) {
	speaker := newFakeSpeaker()
	router, _ := newTestRouter(t, speaker)

	rec := serve(router, http.MethodPut, "/v1/remote/volume", `{"volume": 140}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, float64(100), body["volume"])
	require.Equal(t, float64(140), body["requested"])
	require.Contains(t, speaker.lastBody(), "<DesiredVolume>100</DesiredVolume>")
}

func TestSetVolumeRouteValidation(t *testing.T) {
	speaker := newFakeSpeaker()
	router, _ := newTestRouter(t, speaker)

	for _, payload := range []string{`{}`, `not json`, `{"volume": "loud"}`, `{"level": 3}`} {
		rec := serve(router, http.MethodPut, "/v1/remote/volume", payload)
		require.Equal(t, http.StatusBadRequest, rec.Code, payload)
		require.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	}
	require.Empty(t, speaker.seenActions())
}

func TestSetVolumeRouteFailure(t *testing.T) {
	speaker := newFakeSpeaker().on("SetVolume", http.StatusInternalServerError, "")
	router, _ := newTestRouter(t, speaker)

	rec := serve(router, http.MethodPut, "/v1/remote/volume", `{"volume": 20}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestToggleRoute(t *testing.T) {
	speaker := newFakeSpeaker().on("GetTransportInfo", http.StatusOK, transportInfo("PLAYING"))
	router, publisher := newTestRouter(t, speaker)

	rec := serve(router, http.MethodPost, "/v1/remote/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["playing"])
	require.Equal(t, []string{"GetTransportInfo", "Pause"}, speaker.seenActions())
	require.Equal(t, 1, publisher.count())
}

func TestToggleRouteFailure(t *testing.T) {
	speaker := newFakeSpeaker().on("Play", http.StatusInternalServerError, "")
	router, _ := newTestRouter(t, speaker)

	rec := serve(router, http.MethodPost, "/v1/remote/toggle", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRegisterRoutesNilPublisher(t *testing.T) {
	router := chi.NewRouter()
	RegisterRoutes(router, newTestRemote(t, newFakeSpeaker(), Options{}), nil)

	rec := serve(router, http.MethodPost, "/v1/remote/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
