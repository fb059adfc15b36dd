package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitorreg/internal/audit"
)

// fakeServer blocks in ListenAndServe until Shutdown, which first runs
// inFlight to stand in for requests that finish during the grace period.
type fakeServer struct {
	stopped     chan struct{}
	inFlight    func()
	shutdownErr error
}

func newFakeServer(inFlight func(), shutdownErr error) *fakeServer {
	return &fakeServer{stopped: make(chan struct{}), inFlight: inFlight, shutdownErr: shutdownErr}
}

func (f *fakeServer) ListenAndServe() error {
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.inFlight != nil {
		f.inFlight()
	}
	close(f.stopped)
	return f.shutdownErr
}

type collectingPublisher struct {
	mu      sync.Mutex
	targets []string
}

func (p *collectingPublisher) Publish(_ context.Context, entry *audit.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets = append(p.targets, entry.TargetID)
	return nil
}

func (p *collectingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.targets...)
}

func streamingApp(pub audit.Publisher) *application {
	outbox := make(chan *audit.Entry, 8)
	return &application{
		outbox: outbox,
		worker: audit.NewWorker(pub, outbox, nil),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServe_PublishesEntriesRecordedDuringShutdown(t *testing.T) {
	pub := &collectingPublisher{}
	app := streamingApp(pub)
	srv := newFakeServer(func() {
		// Give the worker time to observe cancellation before the last
		// request records its entry.
		time.Sleep(20 * time.Millisecond)
		app.outbox <- &audit.Entry{TargetID: "in-flight"}
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	app.outbox <- &audit.Entry{TargetID: "before-shutdown"}
	cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, app, time.Second, discardLogger()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}
	assert.ElementsMatch(t, []string{"before-shutdown", "in-flight"}, pub.published())
}

func TestServe_ShutdownFailureStopsWorker(t *testing.T) {
	pub := &collectingPublisher{}
	app := streamingApp(pub)
	timeout := errors.New("shutdown deadline exceeded")
	srv := newFakeServer(nil, timeout)

	ctx, cancel := context.WithCancel(context.Background())
	app.outbox <- &audit.Entry{TargetID: "buffered"}
	cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, app, time.Second, discardLogger()) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, timeout)
	case <-time.After(5 * time.Second):
		t.Fatal("worker kept running after a failed shutdown")
	}
	assert.Equal(t, []string{"buffered"}, pub.published())
}

func TestServe_WithoutStreamStopsOnCancel(t *testing.T) {
	srv := newFakeServer(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve(ctx, srv, &application{}, time.Second, discardLogger()))
}
