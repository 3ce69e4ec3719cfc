package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-photo-share/entity"
)

// fakeObjectStore accepts PUTs and serves them back, with knobs to break
// each step.
type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putStatus int
	getStatus int
	corrupt   bool
}

func (s *fakeObjectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if s.putStatus != 0 {
			w.WriteHeader(s.putStatus)
			return
		}
		s.objects[r.URL.Path] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		if s.getStatus != 0 {
			w.WriteHeader(s.getStatus)
			return
		}
		body, ok := s.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if s.corrupt {
			body = []byte(`{"success":false}`)
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type fakeProbeTarget struct {
	name      string
	baseURL   string
	issueErr  error
	deleteErr error
	deleted   []string
}

func (f *fakeProbeTarget) Name() string { return f.name }

func (f *fakeProbeTarget) IssueWriteCapability(_ context.Context, container, _ string, ttl time.Duration) (*entity.SignedCapability, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return &entity.SignedCapability{
		URL:       f.baseURL + "/" + container + "/folder/original.json?X-Amz-Signature=abc",
		Operation: entity.OperationWrite,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (f *fakeProbeTarget) DirectURL(container, objectPath string) string {
	return f.baseURL + "/" + container + "/" + objectPath
}

func (f *fakeProbeTarget) DeleteContainer(_ context.Context, container string) entity.Outcome {
	f.deleted = append(f.deleted, container)
	return entity.Outcome{Target: container, Err: f.deleteErr}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		breaks func(store *fakeObjectStore, guest, registered *fakeProbeTarget, links *memLinkStore)
		ready  bool
	}{
		{name: "all steps pass", breaks: func(*fakeObjectStore, *fakeProbeTarget, *fakeProbeTarget, *memLinkStore) {}, ready: true},
		{name: "issue capability fails", breaks: func(_ *fakeObjectStore, g, _ *fakeProbeTarget, _ *memLinkStore) { g.issueErr = errInjected }},
		{name: "registered profile fails", breaks: func(_ *fakeObjectStore, _, r *fakeProbeTarget, _ *memLinkStore) { r.issueErr = errInjected }},
		{name: "upload rejected", breaks: func(s *fakeObjectStore, _, _ *fakeProbeTarget, _ *memLinkStore) { s.putStatus = http.StatusForbidden }},
		{name: "download fails", breaks: func(s *fakeObjectStore, _, _ *fakeProbeTarget, _ *memLinkStore) { s.getStatus = http.StatusNotFound }},
		{name: "content mismatch", breaks: func(s *fakeObjectStore, _, _ *fakeProbeTarget, _ *memLinkStore) { s.corrupt = true }},
		{name: "container delete fails", breaks: func(_ *fakeObjectStore, g, _ *fakeProbeTarget, _ *memLinkStore) { g.deleteErr = errInjected }},
		{name: "entity insert fails", breaks: func(_ *fakeObjectStore, _, _ *fakeProbeTarget, l *memLinkStore) { l.failInsert = 1 }},
		{name: "entity query misses", breaks: func(_ *fakeObjectStore, _, _ *fakeProbeTarget, l *memLinkStore) { l.queryMiss = true }},
		{name: "entity query errors", breaks: func(_ *fakeObjectStore, _, _ *fakeProbeTarget, l *memLinkStore) { l.queryErr = errInjected }},
		{name: "entity delete fails", breaks: func(_ *fakeObjectStore, _, _ *fakeProbeTarget, l *memLinkStore) { l.deleteErr = errInjected }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeObjectStore{objects: map[string][]byte{}}
			server := httptest.NewServer(store)
			defer server.Close()

			guest := &fakeProbeTarget{name: "guest", baseURL: server.URL}
			registered := &fakeProbeTarget{name: "registered", baseURL: server.URL}
			links := newMemLinkStore()
			tt.breaks(store, guest, registered, links)

			prober := NewReadinessProber([]ProbeTarget{guest, registered}, links, server.Client(), "readiness-probe", discardLogger())

			assert.Equal(t, tt.ready, prober.Ready(context.Background()))
		})
	}
}

func TestReadinessCleansUpAfterItself(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{}}
	server := httptest.NewServer(store)
	defer server.Close()

	guest := &fakeProbeTarget{name: "guest", baseURL: server.URL}
	registered := &fakeProbeTarget{name: "registered", baseURL: server.URL}
	links := newMemLinkStore()

	prober := NewReadinessProber([]ProbeTarget{guest, registered}, links, server.Client(), "readiness-probe", discardLogger())
	assert.True(t, prober.Ready(context.Background()))

	require.Len(t, guest.deleted, 1)
	require.Len(t, registered.deleted, 1)
	assert.True(t, strings.HasPrefix(guest.deleted[0], "readiness-probe-"))
	assert.LessOrEqual(t, len(guest.deleted[0]), 63)
	assert.NotEqual(t, guest.deleted[0], registered.deleted[0])
	assert.Empty(t, links.links)
	assert.Len(t, links.deleted, 1)
}

func TestReadinessRemovesContainerWhenRoundTripFails(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{}, getStatus: http.StatusNotFound}
	server := httptest.NewServer(store)
	defer server.Close()

	guest := &fakeProbeTarget{name: "guest", baseURL: server.URL}
	prober := NewReadinessProber([]ProbeTarget{guest}, newMemLinkStore(), server.Client(), "readiness-probe", discardLogger())

	assert.False(t, prober.Ready(context.Background()))
	assert.Len(t, guest.deleted, 1)
}

// bucketStore is an object store whose buckets really go away on delete. The
// first GET waits for two uploads and every later GET waits for a container
// delete, so one run always deletes between the other run's PUT and GET.
type bucketStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	puts    int
	gets    int
	deletes int
}

func (s *bucketStore) waitFor(cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() && time.Now().Before(deadline) {
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		s.mu.Lock()
	}
}

func (s *bucketStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	container, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		objects, ok := s.buckets[container]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		objects[key] = body
		s.puts++
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.gets++
		if s.gets == 1 {
			s.waitFor(func() bool { return s.puts >= 2 })
		} else {
			s.waitFor(func() bool { return s.deletes >= 1 })
		}
		body, ok := s.buckets[container][key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type bucketTarget struct {
	store   *bucketStore
	baseURL string
}

func (b *bucketTarget) Name() string { return "shared" }

func (b *bucketTarget) IssueWriteCapability(_ context.Context, container, objectName string, ttl time.Duration) (*entity.SignedCapability, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if _, ok := b.store.buckets[container]; !ok {
		b.store.buckets[container] = map[string][]byte{}
	}
	return &entity.SignedCapability{
		URL:       b.baseURL + "/" + container + "/" + uuid.NewString() + "/" + objectName + "?X-Amz-Signature=abc",
		Operation: entity.OperationWrite,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (b *bucketTarget) DirectURL(container, objectPath string) string {
	return b.baseURL + "/" + container + "/" + objectPath
}

func (b *bucketTarget) DeleteContainer(_ context.Context, container string) entity.Outcome {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	delete(b.store.buckets, container)
	b.store.deletes++
	return entity.Outcome{Target: container}
}

func TestConcurrentReadinessRunsDoNotInterfere(t *testing.T) {
	store := &bucketStore{buckets: map[string]map[string][]byte{}}
	server := httptest.NewServer(store)
	defer server.Close()

	target := &bucketTarget{store: store, baseURL: server.URL}

	results := make([]bool, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prober := NewReadinessProber([]ProbeTarget{target}, newMemLinkStore(), server.Client(), "readiness-probe", discardLogger())
			results[i] = prober.Ready(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []bool{true, true}, results)
	assert.Empty(t, store.buckets)
}
