/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lifecycle

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	started  atomic.Bool
	stopped  atomic.Bool
	startErr error
	done     chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{done: make(chan struct{})}
}

func (f *fakeService) Start(ctx context.Context) error {
	f.started.Store(true)

	if f.startErr != nil {
		return f.startErr
	}

	select {
	case <-ctx.Done():
	case <-f.done:
	}

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	if f.stopped.CompareAndSwap(false, true) {
		close(f.done)
	}

	return nil
}

func TestRunServer_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	svc := newFakeService()
	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{
			ServiceName: "test",
			Listener:    ln,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}),
			Services: []Service{svc},
		})
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, svc.started.Load())

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunServer did not return")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServer_ServiceErrorStopsServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	boom := errors.New("boom")
	failing := newFakeService()
	failing.startErr = boom

	err = RunServer(t.Context(), &ServerOptions{
		ServiceName: "test",
		Listener:    ln,
		Handler:     http.NotFoundHandler(),
		Services:    []Service{failing},
	})
	require.ErrorIs(t, err, boom)
	assert.True(t, failing.stopped.Load())
}

func TestRunServer_ListenError(t *testing.T) {
	err := RunServer(t.Context(), &ServerOptions{ListenAddr: "256.0.0.1:bad", Handler: http.NotFoundHandler()})
	require.Error(t, err)
}
