package poller

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strefethen/sonos-remote-go/internal/remote"
)

type fakeProber struct {
	calls     atomic.Int32
	connected atomic.Bool
}

func (f *fakeProber) GetVolume(ctx context.Context) int {
	f.calls.Add(1)
	if !f.connected.Load() {
		return remote.UnknownVolume
	}
	return 30
}

func (f *fakeProber) Status() remote.Status {
	volume := remote.UnknownVolume
	if f.connected.Load() {
		volume = 30
	}
	return remote.Status{Object: "remote_status", Connected: f.connected.Load(), Volume: volume}
}

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []remote.Status
}

func (r *recordingPublisher) Publish(snapshot remote.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New("every now and then", &fakeProber{}, nil, time.Second, quietLogger())
	require.Error(t, err)
}

func TestRunOncePublishesSnapshot(t *testing.T) {
	prober := &fakeProber{}
	prober.connected.Store(true)
	publisher := &recordingPublisher{}

	p, err := New("@every 1h", prober, publisher, time.Second, quietLogger())
	require.NoError(t, err)

	snapshot := p.RunOnce(context.Background())
	require.True(t, snapshot.Connected)
	require.Equal(t, 30, snapshot.Volume)
	require.Equal(t, int32(1), prober.calls.Load())
	require.Equal(t, 1, publisher.count())
}

func TestRunOnceWithoutPublisher(t *testing.T) {
	prober := &fakeProber{}
	p, err := New("@every 1h", prober, nil, 0, quietLogger())
	require.NoError(t, err)

	snapshot := p.RunOnce(context.Background())
	require.False(t, snapshot.Connected)
	require.Equal(t, remote.UnknownVolume, snapshot.Volume)
}

func TestScheduledProbes(t *testing.T) {
	prober := &fakeProber{}
	publisher := &recordingPublisher{}

	p, err := New("@every 1s", prober, publisher, time.Second, quietLogger())
	require.NoError(t, err)

	p.Start()
	require.Eventually(t, func() bool {
		return publisher.count() >= 1
	}, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Stop(ctx)

	calls := prober.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	require.Equal(t, calls, prober.calls.Load())
}
