package remote

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/sonos-remote-go/internal/api"
	"github.com/strefethen/sonos-remote-go/internal/apperrors"
)

// Publisher receives a snapshot after every operation served over HTTP.
type Publisher interface {
	Publish(Status)
}

// RegisterRoutes wires remote control routes to the router. publisher may be nil.
func RegisterRoutes(router chi.Router, remote *Remote, publisher Publisher) {
	publish := func() {
		if publisher != nil {
			publisher.Publish(remote.Status())
		}
	}

	router.Route("/v1/remote", func(rc chi.Router) {
		rc.Method(http.MethodGet, "/status", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			return api.WriteResource(w, http.StatusOK, remote.Status())
		}))

		rc.Method(http.MethodGet, "/volume", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			volume := remote.GetVolume(r.Context())
			publish()
			if volume == UnknownVolume {
				return apperrors.NewSonosUnreachableError("Failed to read volume from speaker")
			}
			return api.WriteResource(w, http.StatusOK, map[string]any{
				"object": "volume",
				"volume": volume,
			})
		}))

		rc.Method(http.MethodPut, "/volume", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			var body struct {
				Volume *int `json:"volume"`
			}
			if err := api.DecodeJSON(r, &body); err != nil {
				return err
			}
			if body.Volume == nil {
				return apperrors.NewValidationError("volume is required")
			}

			target := ClampVolume(*body.Volume)
			ok := remote.SetVolume(r.Context(), target)
			publish()
			if !ok {
				return apperrors.NewSonosUnreachableError("Failed to set volume on speaker")
			}
			return api.WriteAction(w, http.StatusOK, map[string]any{
				"object":    "volume_action",
				"volume":    target,
				"requested": *body.Volume,
			})
		}))

		rc.Method(http.MethodPost, "/toggle", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
			ok := remote.TogglePlayPause(r.Context())
			publish()
			if !ok {
				return apperrors.NewSonosUnreachableError("Failed to toggle playback")
			}
			return api.WriteAction(w, http.StatusOK, map[string]any{
				"object":  "playback_action",
				"action":  "toggle",
				"playing": remote.IsPlaying(),
			})
		}))
	})
}
