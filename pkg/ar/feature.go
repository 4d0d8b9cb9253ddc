// Package ar wires mode selection and intent building into one
// activation engine a host viewer embeds. The host supplies a Renderer
// for WebXR sessions and a Navigator for everything that touches the
// page; the feature owns the selection state, the launch mechanics and
// the Scene Viewer fallback detection.
package ar

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/arlaunch/arlaunch/internal/utils"
	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/browser"
)

const (
	// FallbackSigil is the synthetic hash marking the history entry used
	// to detect a failed Scene Viewer handoff.
	FallbackSigil = "#model-viewer-no-ar-fallback"

	// QuickLookButtonTappedMessage is the payload Quick Look posts back
	// through the anchor when the banner button is tapped.
	QuickLookButtonTappedMessage = "_apple_ar_quicklook_button_tapped"
)

var (
	// ErrActivationInProgress rejects an ActivateAR call that overlaps a
	// pending one.
	ErrActivationInProgress = errors.New("AR activation already in progress")

	// ErrNotActivatable means no launch method passed its gate for the
	// current configuration and platform.
	ErrNotActivatable = errors.New("no AR launch method available")

	// ErrPresentationFailed means the WebXR session could not be
	// presented and the fallback retry is spent.
	ErrPresentationFailed = errors.New("WebXR presentation failed")
)

// Renderer is the presentation surface the feature drives for WebXR
// sessions. SupportsPresentation doubles as the selector's runtime
// probe.
type Renderer interface {
	// SupportsPresentation asks the runtime whether an immersive-ar
	// session can be presented right now.
	SupportsPresentation(ctx context.Context) (bool, error)

	// Present starts an immersive session for the current scene and
	// returns once it is established.
	Present(ctx context.Context) error

	// StopPresenting tears the session down.
	StopPresenting(ctx context.Context) error

	// Loaded reports whether the model is ready to present.
	Loaded() bool

	// WaitForLoad blocks until the model is ready, forcing a preload if
	// one was deferred.
	WaitForLoad(ctx context.Context) error

	// OnStatus registers a session status listener and returns its
	// unsubscribe func.
	OnStatus(fn func(Status)) (cancel func())
}

// Activation is one launch request handed to the navigator.
type Activation struct {
	// URL for the transient anchor.
	URL string

	// QuickLook marks launches that need rel="ar" and a nested image
	// child on the anchor, which is what makes the platform open the
	// native viewer instead of navigating.
	QuickLook bool
}

// Navigator is the page surface the feature drives: transient anchor
// activation, the location hash, history and messages posted back from
// native viewer anchors.
type Navigator interface {
	// PageURL returns the current page location, or nil when there is
	// no meaningful page (headless evaluation).
	PageURL() *url.URL

	// Launch points a transient anchor at the URL and clicks it.
	Launch(a Activation) error

	// OnHashChange registers a location hash listener and returns its
	// unsubscribe func. The callback receives the new hash including
	// its # prefix.
	OnHashChange(fn func(newHash string)) (cancel func())

	// Back moves one step back in session history.
	Back() error

	// OnMessage registers a listener for message payloads posted back
	// from the native viewer anchor.
	OnMessage(fn func(payload string)) (cancel func())
}

// Options configure a Feature beyond its two collaborators.
type Options struct {
	// Env is the static browser environment the feature runs in.
	Env browser.Environment

	// Gates tunes the selector's gate evaluation.
	Gates armode.Gates

	// Blocks overrides the process wide session block set. Tests use
	// this for isolation.
	Blocks *armode.Blocks

	// OnStatus receives AR lifecycle events.
	OnStatus func(StatusEvent)

	// OnQuickLookButtonTapped fires when the Quick Look banner button
	// posts back.
	OnQuickLookButtonTapped func()
}

type launchState int

const (
	launchIdle launchState = iota
	launchAttempting
	launchFallbackDetected
)

// Feature is the AR activation engine for one hosted viewer. Safe for
// concurrent use; overlapping activations are rejected rather than
// interleaved.
type Feature struct {
	renderer Renderer
	nav      Navigator
	env      browser.Environment
	gates    armode.Gates
	blocks   *armode.Blocks
	onStatus func(StatusEvent)
	onTapped func()

	mu              sync.Mutex
	cfg             Config
	mode            armode.Mode
	activating      bool
	launchState     launchState
	cancelHashWatch func()
	cancelMessages  func()
	cancelStatuses  func()
}

// New builds a Feature around a renderer and a navigator. The renderer
// may be nil when the host has no WebXR surface at all; the navigator
// is required.
func New(renderer Renderer, nav Navigator, opts Options) (*Feature, error) {
	if nav == nil {
		return nil, errors.New("navigator is required")
	}

	blocks := opts.Blocks
	if blocks == nil {
		blocks = armode.Shared()
	}

	f := &Feature{
		renderer: renderer,
		nav:      nav,
		env:      opts.Env,
		gates:    opts.Gates,
		blocks:   blocks,
		onStatus: opts.OnStatus,
		onTapped: opts.OnQuickLookButtonTapped,
	}

	if renderer != nil {
		f.cancelStatuses = renderer.OnStatus(f.forwardStatus)
	}
	f.cancelMessages = nav.OnMessage(f.handleMessage)

	return f, nil
}

// Close detaches the feature from its navigator and renderer.
func (f *Feature) Close() {
	f.mu.Lock()
	cancels := []func(){f.cancelHashWatch, f.cancelMessages, f.cancelStatuses}
	f.cancelHashWatch, f.cancelMessages, f.cancelStatuses = nil, nil, nil
	f.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
}

// SetConfig installs a new viewer configuration and re-runs mode
// selection against it.
func (f *Feature) SetConfig(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	f.cfg = cfg
	f.mu.Unlock()

	_, err := f.refreshMode(ctx)
	return err
}

// Config returns a copy of the current configuration.
func (f *Feature) Config() Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

// Mode returns the currently selected launch mode.
func (f *Feature) Mode() armode.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// CanActivateAR reports whether ActivateAR currently has a launch
// method to use.
func (f *Feature) CanActivateAR() bool {
	return f.Mode().Launchable()
}

// RefreshMode re-runs mode selection against the current configuration
// and environment. Hosts call this after resetting block flags or when
// the runtime changed underneath them.
func (f *Feature) RefreshMode(ctx context.Context) (armode.Mode, error) {
	return f.refreshMode(ctx)
}

// refreshMode snapshots the configuration, runs the selector without
// holding the lock (the probe may block), stores the outcome and emits
// failed when the feature just became unactivatable. A configuration
// mutation racing the probe can produce a one-shot stale decision; the
// next refresh corrects it.
func (f *Feature) refreshMode(ctx context.Context) (armode.Mode, error) {
	f.mu.Lock()
	pc := f.platformContextLocked()
	candidates := f.cfg.ModesOrDefault()
	wasLaunchable := f.mode.Launchable()
	f.mu.Unlock()

	mode, err := armode.Select(ctx, candidates, pc)
	if err != nil {
		return armode.None, err
	}

	f.mu.Lock()
	f.mode = mode
	f.mu.Unlock()

	utils.Log.Debug("AR mode selected: ", mode)
	if wasLaunchable && !mode.Launchable() {
		f.emit(StatusEvent{Status: StatusFailed})
	}
	return mode, nil
}

func (f *Feature) platformContextLocked() armode.PlatformContext {
	pc := f.env.PlatformContext(f.cfg.AR, f.cfg.IOSSource != "")

	gates := f.gates
	if len(f.cfg.QuickLookBrowsers) > 0 {
		gates.QuickLookBrowsers = f.cfg.QuickLookBrowsers
	}
	pc.Gates = gates
	pc.Blocks = f.blocks
	if f.renderer != nil {
		pc.Probe = f.renderer
	}
	return pc
}

// ActivateAR launches the currently selected mode. A second call while
// one is pending returns ErrActivationInProgress; a call with no mode
// available warns, emits a failed status and returns ErrNotActivatable.
func (f *Feature) ActivateAR(ctx context.Context) error {
	f.mu.Lock()
	if f.activating {
		f.mu.Unlock()
		return ErrActivationInProgress
	}
	f.activating = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.activating = false
		f.mu.Unlock()
	}()

	return f.activate(ctx, false)
}

func (f *Feature) activate(ctx context.Context, retried bool) error {
	f.mu.Lock()
	mode := f.mode
	cfg := f.cfg
	f.mu.Unlock()

	switch mode {
	case armode.WebXR:
		return f.activateWebXR(ctx, retried)
	case armode.SceneViewer:
		return f.launchSceneViewer(cfg)
	case armode.QuickLook:
		return f.launchQuickLook(cfg)
	}

	utils.Log.Warn("No AR launch method available for this platform and configuration")
	f.emit(StatusEvent{Status: StatusFailed})
	return ErrNotActivatable
}

// activateWebXR delegates to the renderer, waiting for the model first
// when it is not loaded yet. On presentation failure it stops the
// renderer, blocks webxr for the session and falls back through the
// selector exactly once. The selector re-runs on every exit path.
func (f *Feature) activateWebXR(ctx context.Context, retried bool) error {
	defer func() {
		if _, err := f.refreshMode(ctx); err != nil {
			utils.Log.Debug("Mode refresh after WebXR attempt failed: ", err)
		}
	}()

	if f.renderer == nil {
		// Selection cannot pick webxr without a probe, but a host may
		// force the mode by hand.
		return fmt.Errorf("%w: no renderer", ErrNotActivatable)
	}

	if !f.renderer.Loaded() {
		if err := f.renderer.WaitForLoad(ctx); err != nil {
			return fmt.Errorf("waiting for model load: %w", err)
		}
	}

	presentErr := f.renderer.Present(ctx)
	if presentErr == nil {
		return nil
	}

	utils.Log.Warn("WebXR presentation failed, falling back: ", presentErr)
	if err := f.renderer.StopPresenting(ctx); err != nil {
		utils.Log.Debug("Stopping failed WebXR presentation: ", err)
	}
	f.blocks.Block(armode.WebXR)
	if _, err := f.refreshMode(ctx); err != nil {
		return err
	}

	if retried {
		return fmt.Errorf("%w: %v", ErrPresentationFailed, presentErr)
	}
	return f.activate(ctx, true)
}

// launchSceneViewer builds the intent URI and fires it through the
// navigator with the fallback watcher armed.
func (f *Feature) launchSceneViewer(cfg Config) error {
	sv, err := cfg.BuildSceneViewer(f.pageString())
	if err != nil {
		return fmt.Errorf("building scene viewer intent: %w", err)
	}

	f.armFallbackWatcher()
	if err := f.nav.Launch(Activation{URL: sv.ToURL()}); err != nil {
		f.disarmFallbackWatcher()
		return fmt.Errorf("launching scene viewer: %w", err)
	}
	return nil
}

// launchQuickLook builds the Quick Look URL and fires it through the
// navigator with the rel="ar" anchor shape.
func (f *Feature) launchQuickLook(cfg Config) error {
	ql, err := cfg.BuildQuickLook(f.pageString())
	if err != nil {
		return fmt.Errorf("building quick look intent: %w", err)
	}

	if err := f.nav.Launch(Activation{URL: ql.ToURL(), QuickLook: true}); err != nil {
		return fmt.Errorf("launching quick look: %w", err)
	}
	return nil
}

// pageString renders the navigator's current location, or "" when the
// host runs headless.
func (f *Feature) pageString() string {
	if page := f.nav.PageURL(); page != nil {
		return page.String()
	}
	return ""
}

// armFallbackWatcher arms the one-shot hashchange watcher for the
// current Scene Viewer attempt, superseding a previous one.
func (f *Feature) armFallbackWatcher() {
	f.mu.Lock()
	prev := f.cancelHashWatch
	f.cancelHashWatch = nil
	f.launchState = launchAttempting
	f.mu.Unlock()

	if prev != nil {
		prev()
	}

	cancel := f.nav.OnHashChange(f.handleHashChange)
	f.mu.Lock()
	f.cancelHashWatch = cancel
	f.mu.Unlock()
}

func (f *Feature) disarmFallbackWatcher() {
	f.mu.Lock()
	cancel := f.cancelHashWatch
	f.cancelHashWatch = nil
	f.launchState = launchIdle
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// handleHashChange consumes the one armed watcher. Whatever the first
// hash change is, the watcher is spent; only the sigil marks a bounced
// handoff. A genuine handoff never fires it, and the detection cannot
// distinguish that from "still resolving"; the heuristic is best
// effort.
func (f *Feature) handleHashChange(newHash string) {
	f.mu.Lock()
	cancel := f.cancelHashWatch
	f.cancelHashWatch = nil
	armed := f.launchState == launchAttempting
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if !armed {
		return
	}

	if !isFallbackSigil(newHash) {
		f.mu.Lock()
		f.launchState = launchIdle
		f.mu.Unlock()
		return
	}

	utils.Log.Debug("Scene Viewer handoff bounced back, blocking it for this session")
	f.mu.Lock()
	f.launchState = launchFallbackDetected
	f.mu.Unlock()

	f.blocks.Block(armode.SceneViewer)
	if err := f.nav.Back(); err != nil {
		utils.Log.Debug("Reversing the fallback history entry failed: ", err)
	}
	if _, err := f.refreshMode(context.Background()); err != nil {
		utils.Log.Debug("Mode refresh after fallback detection failed: ", err)
	}
}

func isFallbackSigil(hash string) bool {
	return "#"+strings.TrimPrefix(hash, "#") == FallbackSigil
}

func (f *Feature) forwardStatus(s Status) {
	f.emit(StatusEvent{Status: s})
}

func (f *Feature) handleMessage(payload string) {
	if payload != QuickLookButtonTappedMessage {
		return
	}
	if f.onTapped != nil {
		f.onTapped()
	}
}

func (f *Feature) emit(ev StatusEvent) {
	if f.onStatus != nil {
		f.onStatus(ev)
	}
}
