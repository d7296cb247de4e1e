package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/mediaproxy/cache"
	"github.com/jonwraymond/mediaproxy/health"
)

// fakeService returns "AAA" for quality "low" and a repeated marker per
// video otherwise.
type fakeService struct {
	calls atomic.Int64
	delay time.Duration
	err   error
}

func (s *fakeService) DownloadCompressed(ctx context.Context, videoID, quality string) ([]byte, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if quality == "low" {
		return []byte("AAA"), nil
	}
	return []byte(videoID + ":" + quality), nil
}

type countingFactory struct {
	calls atomic.Int64
	svc   VideoService
}

func (f *countingFactory) factory() (VideoService, error) {
	f.calls.Add(1)
	return f.svc, nil
}

func newTestProxy(t *testing.T, svc VideoService, opts ...Option) (*ProxyVideoService, *countingFactory) {
	t.Helper()
	f := &countingFactory{svc: svc}
	p, err := New(f.factory, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, f
}

func TestNew_NilFactory(t *testing.T) {
	p, err := New(nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if p != nil {
		t.Error("no proxy should be returned")
	}
}

func TestNew_DoesNotInvokeFactory(t *testing.T) {
	p, f := newTestProxy(t, &fakeService{})

	if got := f.calls.Load(); got != 0 {
		t.Errorf("factory calls = %d, want 0", got)
	}
	if p.Initialized() {
		t.Error("proxy should not be initialized after New")
	}
}

func TestNew_OptionErrors(t *testing.T) {
	factory := func() (VideoService, error) { return &fakeService{}, nil }

	tests := []struct {
		name string
		opt  Option
	}{
		{"nil store", WithStore(nil)},
		{"nil keyer", WithKeyer(nil)},
		{"nil observer", WithObserver(nil)},
		{"empty name", WithName("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(factory, tt.opt); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if _, err := New(factory, WithStore(nil)); !errors.Is(err, cache.ErrNilStore) {
		t.Errorf("expected cache.ErrNilStore in chain, got %v", err)
	}
}

func TestDownloadCompressed_EndToEnd(t *testing.T) {
	svc := &fakeService{}
	p, f := newTestProxy(t, svc)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := p.DownloadCompressed(ctx, "x", "low")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if string(got) != "AAA" {
			t.Errorf("call %d: got %q, want AAA", i, got)
		}
	}

	if got := f.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
	if got := svc.calls.Load(); got != 1 {
		t.Errorf("service calls = %d, want 1", got)
	}
}

func TestDownloadCompressed_LazyConstruction(t *testing.T) {
	p, f := newTestProxy(t, &fakeService{})

	if _, err := p.DownloadCompressed(context.Background(), "v1", "hd"); err != nil {
		t.Fatalf("DownloadCompressed() error = %v", err)
	}
	if got := f.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
	if !p.Initialized() {
		t.Error("proxy should be initialized after first miss")
	}
}

func TestDownloadCompressed_SingleConstruction(t *testing.T) {
	svc := &fakeService{}
	p, f := newTestProxy(t, svc)
	ctx := context.Background()

	keys := [][2]string{{"a", "low"}, {"a", "hd"}, {"b", "low"}, {"c", "4k"}}
	for _, k := range keys {
		if _, err := p.DownloadCompressed(ctx, k[0], k[1]); err != nil {
			t.Fatalf("DownloadCompressed(%q, %q) error = %v", k[0], k[1], err)
		}
	}

	if got := f.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
	if got := svc.calls.Load(); got != int64(len(keys)) {
		t.Errorf("service calls = %d, want %d", got, len(keys))
	}
}

func TestDownloadCompressed_PerKeyIndependence(t *testing.T) {
	p, _ := newTestProxy(t, &fakeService{})
	ctx := context.Background()

	hd, err := p.DownloadCompressed(ctx, "v1", "hd")
	if err != nil {
		t.Fatal(err)
	}
	sd, err := p.DownloadCompressed(ctx, "v1", "sd")
	if err != nil {
		t.Fatal(err)
	}
	other, err := p.DownloadCompressed(ctx, "v2", "hd")
	if err != nil {
		t.Fatal(err)
	}

	if string(hd) != "v1:hd" || string(sd) != "v1:sd" || string(other) != "v2:hd" {
		t.Errorf("got %q, %q, %q", hd, sd, other)
	}
	if got := p.Stats().Entries; got != 3 {
		t.Errorf("Entries = %d, want 3", got)
	}
}

func TestDownloadCompressed_KeysDoNotCollide(t *testing.T) {
	p, _ := newTestProxy(t, &fakeService{})
	ctx := context.Background()

	a, _ := p.DownloadCompressed(ctx, "a:b", "c")
	b, _ := p.DownloadCompressed(ctx, "a", "b:c")

	if bytes.Equal(a, b) {
		t.Errorf("distinct keys returned the same payload %q", a)
	}
}

// gatedService blocks fetches of gated until release is closed and echoes
// the video ID otherwise.
type gatedService struct {
	gated   string
	started chan struct{}
	release chan struct{}
	calls   atomic.Int64
}

func newGatedService(gated string) *gatedService {
	return &gatedService{
		gated:   gated,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedService) DownloadCompressed(ctx context.Context, videoID, _ string) ([]byte, error) {
	s.calls.Add(1)
	if videoID == s.gated {
		close(s.started)
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []byte("payload-for-" + videoID), nil
}

func TestDownloadCompressed_ConcurrentOpaqueIDsDoNotShareFetch(t *testing.T) {
	svc := newGatedService("a\xff")
	p, _ := newTestProxy(t, svc)
	ctx := context.Background()

	type result struct {
		data []byte
		err  error
	}
	first := make(chan result, 1)
	go func() {
		data, err := p.DownloadCompressed(ctx, "a\xff", "low")
		first <- result{data, err}
	}()
	<-svc.started

	got, err := p.DownloadCompressed(ctx, "a\xfe", "low")
	if err != nil {
		t.Fatalf("second key error = %v", err)
	}
	if string(got) != "payload-for-a\xfe" {
		t.Errorf("second key got %q, want its own payload", got)
	}

	close(svc.release)
	r := <-first
	if r.err != nil {
		t.Fatalf("first key error = %v", r.err)
	}
	if string(r.data) != "payload-for-a\xff" {
		t.Errorf("first key got %q", r.data)
	}
	if got := svc.calls.Load(); got != 2 {
		t.Errorf("service calls = %d, want 2", got)
	}
	if got := p.Stats().Entries; got != 2 {
		t.Errorf("Entries = %d, want 2", got)
	}
}

func TestDownloadCompressed_CallerCancellationIsIsolated(t *testing.T) {
	svc := newGatedService("v1")
	p, _ := newTestProxy(t, svc)

	cancelCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := p.DownloadCompressed(cancelCtx, "v1", "hd")
		first <- err
	}()
	<-svc.started

	type result struct {
		data []byte
		err  error
	}
	second := make(chan result, 1)
	go func() {
		data, err := p.DownloadCompressed(context.Background(), "v1", "hd")
		second <- result{data, err}
	}()

	deadline := time.Now().Add(time.Second)
	for p.Stats().Misses < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller: expected context.Canceled, got %v", err)
	}

	close(svc.release)
	r := <-second
	if r.err != nil {
		t.Fatalf("live caller got %v from another caller's cancellation", r.err)
	}
	if string(r.data) != "payload-for-v1" {
		t.Errorf("live caller got %q", r.data)
	}
	if got := svc.calls.Load(); got != 1 {
		t.Errorf("service calls = %d, want 1", got)
	}
	if got := p.Stats().Entries; got != 1 {
		t.Errorf("Entries = %d, want 1", got)
	}
}

func TestDownloadCompressed_HitAvoidsDelegation(t *testing.T) {
	svc := &fakeService{}
	p, _ := newTestProxy(t, svc)
	ctx := context.Background()

	_, _ = p.DownloadCompressed(ctx, "v1", "hd")
	for i := 0; i < 5; i++ {
		_, _ = p.DownloadCompressed(ctx, "v1", "hd")
	}

	if got := svc.calls.Load(); got != 1 {
		t.Errorf("service calls = %d, want 1", got)
	}
	stats := p.Stats()
	if stats.Hits != 5 || stats.Misses != 1 || stats.Fetches != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestDownloadCompressed_EmptyPayloadIsCached(t *testing.T) {
	var calls atomic.Int64
	svc := ServiceFunc(func(context.Context, string, string) ([]byte, error) {
		calls.Add(1)
		return []byte{}, nil
	})
	p, _ := newTestProxy(t, svc)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := p.DownloadCompressed(ctx, "empty", "low")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("call %d: got %#v, want empty non-nil slice", i, got)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("service calls = %d, want 1", got)
	}
}

func TestDownloadCompressed_NilSliceIsContractViolation(t *testing.T) {
	svc := ServiceFunc(func(context.Context, string, string) ([]byte, error) {
		return nil, nil
	})
	p, _ := newTestProxy(t, svc)

	_, err := p.DownloadCompressed(context.Background(), "v1", "hd")
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation, got %v", err)
	}
	if got := p.Stats().Entries; got != 0 {
		t.Errorf("Entries = %d, want 0", got)
	}
}

// scripted returns the queued values in order.
type scripted struct {
	mu      sync.Mutex
	results []any
	calls   int
}

func (s *scripted) DownloadCompressed(context.Context, string, string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.results[s.calls]
	s.calls++
	return v, nil
}

func TestDownloadCompressed_UntypedValidation(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"string", "AAA"},
		{"number", 42},
		{"nil", nil},
		{"nil bytes", []byte(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &scripted{results: []any{tt.value, []byte("valid")}}
			p, _ := newTestProxy(t, FromUntyped(backend))
			ctx := context.Background()

			_, err := p.DownloadCompressed(ctx, "v1", "hd")
			if !errors.Is(err, ErrContractViolation) {
				t.Fatalf("expected ErrContractViolation, got %v", err)
			}
			if got := p.Stats().Entries; got != 0 {
				t.Errorf("Entries = %d after violation, want 0", got)
			}

			got, err := p.DownloadCompressed(ctx, "v1", "hd")
			if err != nil {
				t.Fatalf("second call error = %v", err)
			}
			if string(got) != "valid" {
				t.Errorf("got %q, want valid", got)
			}
			if backend.calls != 2 {
				t.Errorf("backend calls = %d, want 2", backend.calls)
			}
		})
	}
}

func TestDownloadCompressed_ServiceErrorNotCached(t *testing.T) {
	errUpstream := errors.New("upstream unavailable")
	svc := &fakeService{err: errUpstream}
	p, _ := newTestProxy(t, svc)
	ctx := context.Background()

	_, err := p.DownloadCompressed(ctx, "v1", "hd")
	if !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error in chain, got %v", err)
	}

	svc.err = nil
	got, err := p.DownloadCompressed(ctx, "v1", "hd")
	if err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if string(got) != "v1:hd" {
		t.Errorf("got %q, want v1:hd", got)
	}
	if got := svc.calls.Load(); got != 2 {
		t.Errorf("service calls = %d, want 2", got)
	}
}

func TestDownloadCompressed_FactoryFailureRetried(t *testing.T) {
	errBoot := errors.New("boot failed")
	var calls atomic.Int64
	factory := func() (VideoService, error) {
		switch calls.Add(1) {
		case 1:
			return nil, errBoot
		case 2:
			return nil, nil
		default:
			return &fakeService{}, nil
		}
	}

	p, err := New(factory)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_, err = p.DownloadCompressed(ctx, "v1", "hd")
	if !errors.Is(err, ErrFactory) || !errors.Is(err, errBoot) {
		t.Fatalf("expected ErrFactory wrapping cause, got %v", err)
	}
	if p.Initialized() {
		t.Error("failed factory must leave proxy uninitialized")
	}
	if r := p.Check(ctx); r.Status != health.StatusUnhealthy {
		t.Errorf("health = %v, want unhealthy", r.Status)
	}

	if _, err = p.DownloadCompressed(ctx, "v1", "hd"); !errors.Is(err, ErrFactory) {
		t.Fatalf("nil service should be ErrFactory, got %v", err)
	}

	got, err := p.DownloadCompressed(ctx, "v1", "hd")
	if err != nil {
		t.Fatalf("third call error = %v", err)
	}
	if string(got) != "v1:hd" {
		t.Errorf("got %q", got)
	}
	if stats := p.Stats(); stats.FactoryCalls != 3 {
		t.Errorf("FactoryCalls = %d, want 3", stats.FactoryCalls)
	}
	if r := p.Check(ctx); r.Status != health.StatusHealthy {
		t.Errorf("health = %v, want healthy", r.Status)
	}
}

func TestDownloadCompressed_ReturnedSliceIsPrivate(t *testing.T) {
	p, _ := newTestProxy(t, &fakeService{})
	ctx := context.Background()

	first, _ := p.DownloadCompressed(ctx, "x", "low")
	first[0] = 'Z'

	second, _ := p.DownloadCompressed(ctx, "x", "low")
	if string(second) != "AAA" {
		t.Errorf("cache mutated through returned slice: %q", second)
	}
	second[1] = 'Y'

	third, _ := p.DownloadCompressed(ctx, "x", "low")
	if string(third) != "AAA" {
		t.Errorf("cache mutated through hit slice: %q", third)
	}
}

func TestDownloadCompressed_ServiceSliceIsCopied(t *testing.T) {
	backing := []byte("AAA")
	svc := ServiceFunc(func(context.Context, string, string) ([]byte, error) {
		return backing, nil
	})
	p, _ := newTestProxy(t, svc)
	ctx := context.Background()

	_, _ = p.DownloadCompressed(ctx, "x", "low")
	backing[0] = 'Z'

	got, _ := p.DownloadCompressed(ctx, "x", "low")
	if string(got) != "AAA" {
		t.Errorf("cache shares memory with the service result: %q", got)
	}
}

func TestDownloadCompressed_ConcurrentCallers(t *testing.T) {
	svc := &fakeService{delay: 20 * time.Millisecond}
	p, f := newTestProxy(t, svc)
	ctx := context.Background()

	const callers = 32
	keys := []string{"hd", "sd", "low"}

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := keys[i%len(keys)]
			got, err := p.DownloadCompressed(ctx, "v1", q)
			if err != nil {
				errs <- err
				return
			}
			want := "v1:" + q
			if q == "low" {
				want = "AAA"
			}
			if string(got) != want {
				errs <- fmt.Errorf("got %q, want %q", got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if got := f.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
	if got := svc.calls.Load(); got != int64(len(keys)) {
		t.Errorf("service calls = %d, want %d", got, len(keys))
	}
}

func TestDownloadCompressed_CustomStore(t *testing.T) {
	store := cache.NewMemoryStore()
	store.Add(cache.Key{VideoID: "warm", Quality: "hd"}, []byte("prefilled"))

	p, f := newTestProxy(t, &fakeService{}, WithStore(store))

	got, err := p.DownloadCompressed(context.Background(), "warm", "hd")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "prefilled" {
		t.Errorf("got %q, want prefilled", got)
	}
	if got := f.calls.Load(); got != 0 {
		t.Errorf("a hit must not construct the service, factory calls = %d", got)
	}
}

type failingKeyer struct{}

func (failingKeyer) Derive(cache.Key) (string, error) {
	return "", errors.New("keyer broken")
}

func TestDownloadCompressed_KeyerFailureFallsBack(t *testing.T) {
	p, _ := newTestProxy(t, &fakeService{}, WithKeyer(failingKeyer{}))

	got, err := p.DownloadCompressed(context.Background(), "x", "low")
	if err != nil {
		t.Fatalf("DownloadCompressed() error = %v", err)
	}
	if string(got) != "AAA" {
		t.Errorf("got %q, want AAA", got)
	}
}

func TestCheck_States(t *testing.T) {
	p, f := newTestProxy(t, &fakeService{}, WithName("videos"))
	ctx := context.Background()

	if p.Name() != "videos" {
		t.Errorf("Name() = %q, want videos", p.Name())
	}

	r := p.Check(ctx)
	if r.Status != health.StatusDegraded {
		t.Errorf("before first use: %v, want degraded", r.Status)
	}
	if f.calls.Load() != 0 {
		t.Error("Check must not construct the service")
	}

	_, _ = p.DownloadCompressed(ctx, "v1", "hd")

	r = p.Check(ctx)
	if r.Status != health.StatusHealthy {
		t.Errorf("after first use: %v, want healthy", r.Status)
	}
	if r.Details["entries"] != 1 {
		t.Errorf("entries detail = %v, want 1", r.Details["entries"])
	}
}

func TestCheck_DefaultName(t *testing.T) {
	p, _ := newTestProxy(t, &fakeService{})
	if p.Name() != DefaultName {
		t.Errorf("Name() = %q, want %q", p.Name(), DefaultName)
	}
}
