package ar

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/browser"
)

// fakeRenderer stands in for the WebXR surface and records every call.
type fakeRenderer struct {
	mu           sync.Mutex
	supports     bool
	supportsErr  error
	probeCalls   int
	loaded       bool
	waitCalls    int
	waitErr      error
	presentErr   error
	presentCalls int
	stopCalls    int
	statusFn     func(Status)

	// presentStarted (buffered) and presentBlock let a test hold a
	// presentation open.
	presentStarted chan struct{}
	presentBlock   chan struct{}
}

func (r *fakeRenderer) SupportsPresentation(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probeCalls++
	return r.supports, r.supportsErr
}

func (r *fakeRenderer) Present(ctx context.Context) error {
	r.mu.Lock()
	r.presentCalls++
	started, block, err := r.presentStarted, r.presentBlock, r.presentErr
	r.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func (r *fakeRenderer) StopPresenting(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopCalls++
	return nil
}

func (r *fakeRenderer) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

func (r *fakeRenderer) WaitForLoad(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waitCalls++
	if r.waitErr != nil {
		return r.waitErr
	}
	r.loaded = true
	return nil
}

func (r *fakeRenderer) OnStatus(fn func(Status)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusFn = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.statusFn = nil
	}
}

func (r *fakeRenderer) pushStatus(s Status) {
	r.mu.Lock()
	fn := r.statusFn
	r.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func (r *fakeRenderer) counts() (probe, present, stop, wait int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.probeCalls, r.presentCalls, r.stopCalls, r.waitCalls
}

// fakeNavigator stands in for the page surface.
type fakeNavigator struct {
	mu        sync.Mutex
	page      *url.URL
	launches  []Activation
	launchErr error
	backCalls int
	nextID    int
	hashFns   map[int]func(string)
	msgFns    map[int]func(string)
}

func newFakeNavigator(page string) *fakeNavigator {
	var u *url.URL
	if page != "" {
		var err error
		if u, err = url.Parse(page); err != nil {
			panic(err)
		}
	}
	return &fakeNavigator{
		page:    u,
		hashFns: make(map[int]func(string)),
		msgFns:  make(map[int]func(string)),
	}
}

func (n *fakeNavigator) PageURL() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.page
}

func (n *fakeNavigator) Launch(a Activation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.launchErr != nil {
		return n.launchErr
	}
	n.launches = append(n.launches, a)
	return nil
}

func (n *fakeNavigator) OnHashChange(fn func(string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.hashFns[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.hashFns, id)
	}
}

func (n *fakeNavigator) Back() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.backCalls++
	return nil
}

func (n *fakeNavigator) OnMessage(fn func(string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.msgFns[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.msgFns, id)
	}
}

func (n *fakeNavigator) fireHashChange(hash string) {
	n.mu.Lock()
	fns := make([]func(string), 0, len(n.hashFns))
	for _, fn := range n.hashFns {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(hash)
	}
}

func (n *fakeNavigator) postMessage(payload string) {
	n.mu.Lock()
	fns := make([]func(string), 0, len(n.msgFns))
	for _, fn := range n.msgFns {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(payload)
	}
}

func (n *fakeNavigator) launched() []Activation {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Activation, len(n.launches))
	copy(out, n.launches)
	return out
}

func (n *fakeNavigator) hashWatchers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.hashFns)
}

func (n *fakeNavigator) backs() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.backCalls
}

// recorder captures events and taps delivered by the feature.
type recorder struct {
	mu     sync.Mutex
	events []Status
	taps   int
}

func (r *recorder) onStatus(ev StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev.Status)
}

func (r *recorder) onTap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taps++
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) tapped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.taps
}

func (r *recorder) count(s Status) int {
	n := 0
	for _, got := range r.statuses() {
		if got == s {
			n++
		}
	}
	return n
}

func androidChromeEnv() browser.Environment {
	return browser.Environment{
		Flags:              browser.Flags{Android: true, Chrome: true},
		XRCapable:          true,
		SceneViewerCapable: true,
	}
}

func iosSafariEnv() browser.Environment {
	return browser.Environment{
		Flags:            browser.Flags{IOS: true, Safari: true},
		QuickLookCapable: true,
	}
}

func newTestFeature(t *testing.T, r Renderer, nav Navigator, env browser.Environment, cfg Config) (*Feature, *recorder) {
	t.Helper()

	rec := &recorder{}
	f, err := New(r, nav, Options{
		Env:                     env,
		Blocks:                  armode.NewBlocks(),
		OnStatus:                rec.onStatus,
		OnQuickLookButtonTapped: rec.onTap,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(f.Close)

	if err := f.SetConfig(context.Background(), cfg); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	return f, rec
}
