package remote

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/strefethen/sonos-remote-go/internal/sonos/soap"
)

const (
	// MinVolume and MaxVolume bound every SetVolume request.
	MinVolume = 0
	MaxVolume = 100

	// UnknownVolume is returned by GetVolume when no value could be read.
	UnknownVolume = -1
)

// Options tunes a Remote.
type Options struct {
	// ConfirmToggle re-reads the transport state after a successful toggle
	// instead of trusting the inferred state.
	ConfirmToggle bool
	Logger        *log.Logger
}

// Status is a point-in-time view of what the remote last observed.
type Status struct {
	Object    string    `json:"object"`
	Connected bool      `json:"connected"`
	Playing   bool      `json:"playing"`
	Volume    int       `json:"volume"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remote controls a single speaker and remembers whether the last request
// reached it and whether it was last seen playing.
type Remote struct {
	client        *soap.Client
	logger        *log.Logger
	confirmToggle bool

	mu        sync.RWMutex
	connected bool
	playing   bool
	volume    int
	updatedAt time.Time
}

// New creates a Remote. Both flags start false.
func New(client *soap.Client, options Options) *Remote {
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Remote{
		client:        client,
		logger:        logger,
		confirmToggle: options.ConfirmToggle,
		volume:        UnknownVolume,
	}
}

// GetVolume returns the current master volume, or UnknownVolume on any failure.
func (r *Remote) GetVolume(ctx context.Context) int {
	info, _, err := r.client.GetVolume(ctx)
	r.recordConnected(err == nil)
	if err != nil {
		r.logger.Printf("sonos: get volume failed: %v", err)
		return UnknownVolume
	}

	r.mu.Lock()
	r.volume = info.CurrentVolume
	r.mu.Unlock()
	return info.CurrentVolume
}

// SetVolume clamps level to [MinVolume, MaxVolume] and sends it to the speaker.
func (r *Remote) SetVolume(ctx context.Context, level int) bool {
	level = ClampVolume(level)

	_, err := r.client.SetVolume(ctx, level)
	r.recordConnected(err == nil)
	if err != nil {
		r.logger.Printf("sonos: set volume %d failed: %v", level, err)
		return false
	}

	r.mu.Lock()
	r.volume = level
	r.mu.Unlock()
	return true
}

// TogglePlayPause pauses the speaker if it reports PLAYING and plays it otherwise.
// A failed state read counts as not playing and leaves the connection flag to
// the Play/Pause request that follows.
func (r *Remote) TogglePlayPause(ctx context.Context) bool {
	wasPlaying := false
	info, _, err := r.client.GetTransportInfo(ctx)
	if err != nil {
		r.logger.Printf("sonos: transport state unavailable, assuming stopped: %v", err)
	} else {
		wasPlaying = info.Playing()
	}

	action := "play"
	if wasPlaying {
		action = "pause"
		_, err = r.client.Pause(ctx)
	} else {
		_, err = r.client.Play(ctx)
	}
	r.recordConnected(err == nil)
	if err != nil {
		r.logger.Printf("sonos: %s failed: %v", action, err)
		return false
	}

	playing := !wasPlaying
	if r.confirmToggle {
		confirmed, _, err := r.client.GetTransportInfo(ctx)
		r.recordConnected(err == nil)
		if err == nil {
			playing = confirmed.Playing()
		} else {
			r.logger.Printf("sonos: confirm %s failed, keeping inferred state: %v", action, err)
		}
	}

	r.mu.Lock()
	r.playing = playing
	r.mu.Unlock()
	return true
}

// IsConnected reports whether the most recent request got a usable 200 response.
func (r *Remote) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// IsPlaying reports the playback state recorded by the last successful toggle.
func (r *Remote) IsPlaying() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playing
}

// Status returns a snapshot of the recorded state.
func (r *Remote) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Status{
		Object:    "remote_status",
		Connected: r.connected,
		Playing:   r.playing,
		Volume:    r.volume,
		UpdatedAt: r.updatedAt,
	}
}

// Endpoint returns the speaker this remote controls.
func (r *Remote) Endpoint() soap.Endpoint {
	return r.client.Endpoint()
}

// recordConnected stores the outcome of the latest request. Any error, including
// a 200 whose body lacks the expected value, counts as disconnected.
func (r *Remote) recordConnected(ok bool) {
	r.mu.Lock()
	r.connected = ok
	r.updatedAt = time.Now().UTC()
	r.mu.Unlock()
}

// ClampVolume limits level to the range a speaker accepts.
func ClampVolume(level int) int {
	if level < MinVolume {
		return MinVolume
	}
	if level > MaxVolume {
		return MaxVolume
	}
	return level
}
