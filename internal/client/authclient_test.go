package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSource struct {
	mu       sync.Mutex
	current  Session
	refreshN int32
	next     func(n int32) Session
}

func (f *fakeSource) CurrentSession(ctx context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeSource) RefreshSession(ctx context.Context) (Session, error) {
	n := atomic.AddInt32(&f.refreshN, 1)
	sess := f.next(n)
	f.mu.Lock()
	f.current = sess
	f.mu.Unlock()
	return sess, nil
}

func TestDoRefreshesOnUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	src := &fakeSource{
		current: Session{Token: "stale"},
		next:    func(int32) Session { return Session{Token: "fresh"} },
	}
	c := NewAuthClient(srv.Client(), src)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&src.refreshN); n != 1 {
		t.Fatalf("refresh count = %d, want 1", n)
	}
}

func TestDoReplaysRequestBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	src := &fakeSource{
		current: Session{Token: "stale"},
		next:    func(int32) Session { return Session{Token: "fresh"} },
	}
	c := NewAuthClient(srv.Client(), src)

	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(bodies))
	}
	for i, b := range bodies {
		if b != `{"a":1}` {
			t.Errorf("request %d body = %q", i, b)
		}
	}
}

func TestConcurrentUnauthorizedSharesOneRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	src := &fakeSource{
		current: Session{Token: "stale"},
		next: func(int32) Session {
			time.Sleep(20 * time.Millisecond) // widen the window the goroutines pile into
			return Session{Token: "fresh"}
		},
	}
	c := NewAuthClient(srv.Client(), src)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			if err != nil {
				errs <- err
				return
			}
			resp, err := c.Do(req)
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("status %d", resp.StatusCode)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("worker: %v", err)
	}
	if n := atomic.LoadInt32(&src.refreshN); n != 1 {
		t.Fatalf("refresh count = %d, want 1", n)
	}
}

func TestExpiredSession(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		sess Session
		want bool
	}{
		{"empty token", Session{}, true},
		{"no expiry", Session{Token: "t"}, false},
		{"future expiry", Session{Token: "t", Expiry: now.Add(time.Minute)}, false},
		{"past expiry", Session{Token: "t", Expiry: now.Add(-time.Minute)}, true},
		{"exact expiry", Session{Token: "t", Expiry: now}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.sess.Expired(now); got != tc.want {
				t.Fatalf("Expired = %v, want %v", got, tc.want)
			}
		})
	}
}
