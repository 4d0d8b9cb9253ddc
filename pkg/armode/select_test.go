package armode

import (
	"context"
	"errors"
	"testing"
)

// countingProbe fakes the WebXR runtime and records how often the
// selector actually asked it.
type countingProbe struct {
	supported bool
	err       error
	calls     int
}

func (p *countingProbe) SupportsPresentation(ctx context.Context) (bool, error) {
	p.calls++
	return p.supported, p.err
}

// allCapable returns a context where every static gate passes.
func allCapable(probe *countingProbe) PlatformContext {
	return PlatformContext{
		AREnabled:          true,
		HasIOSSource:       true,
		Android:            true,
		XRCapable:          true,
		SceneViewerCapable: true,
		QuickLookCapable:   true,
		QuickLookBrowser:   "safari",
		Probe:              probe,
		Blocks:             NewBlocks(),
	}
}

func mustSelect(t *testing.T, candidates []Mode, pc PlatformContext) Mode {
	t.Helper()
	got, err := Select(context.Background(), candidates, pc)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	return got
}

func TestSelectDisabledSkipsEveryGate(t *testing.T) {
	probe := &countingProbe{supported: true}
	pc := allCapable(probe)
	pc.AREnabled = false

	if got := mustSelect(t, DefaultModes, pc); got != None {
		t.Fatalf("expected none with AR disabled, got %s", got)
	}
	if probe.calls != 0 {
		t.Fatalf("probe must not run when AR is disabled, ran %d times", probe.calls)
	}
}

func TestSelectFirstMatchWins(t *testing.T) {
	probe := &countingProbe{supported: true}
	pc := allCapable(probe)

	if got := mustSelect(t, []Mode{SceneViewer, WebXR, QuickLook}, pc); got != SceneViewer {
		t.Fatalf("expected scene-viewer to win, got %s", got)
	}
	if probe.calls != 0 {
		t.Fatalf("candidates after the first match must not be evaluated, probe ran %d times", probe.calls)
	}
}

func TestSelectWebXRNeedsProbeApproval(t *testing.T) {
	probe := &countingProbe{supported: true}
	pc := allCapable(probe)

	if got := mustSelect(t, DefaultModes, pc); got != WebXR {
		t.Fatalf("expected webxr, got %s", got)
	}
	if probe.calls != 1 {
		t.Fatalf("expected exactly one probe call, got %d", probe.calls)
	}

	probe = &countingProbe{supported: false}
	pc.Probe = probe
	if got := mustSelect(t, DefaultModes, pc); got != SceneViewer {
		t.Fatalf("expected fallthrough to scene-viewer on probe rejection, got %s", got)
	}
}

func TestSelectProbeErrorIsNotFatal(t *testing.T) {
	probe := &countingProbe{err: errors.New("runtime gone")}
	pc := allCapable(probe)

	if got := mustSelect(t, DefaultModes, pc); got != SceneViewer {
		t.Fatalf("expected scene-viewer after probe error, got %s", got)
	}
}

func TestSelectStaticGateShortCircuitsProbe(t *testing.T) {
	probe := &countingProbe{supported: true}
	pc := allCapable(probe)
	pc.XRCapable = false

	if got := mustSelect(t, DefaultModes, pc); got != SceneViewer {
		t.Fatalf("expected scene-viewer, got %s", got)
	}
	if probe.calls != 0 {
		t.Fatalf("probe must not run when the static gate fails, ran %d times", probe.calls)
	}
}

func TestSelectNilProbeFailsWebXRGate(t *testing.T) {
	pc := allCapable(nil)
	pc.Probe = nil

	if got := mustSelect(t, DefaultModes, pc); got != SceneViewer {
		t.Fatalf("expected scene-viewer without a probe, got %s", got)
	}
}

func TestSelectHonorsBlocks(t *testing.T) {
	probe := &countingProbe{supported: true}
	pc := allCapable(probe)
	pc.Blocks.Block(WebXR)

	if got := mustSelect(t, DefaultModes, pc); got != SceneViewer {
		t.Fatalf("expected scene-viewer with webxr blocked, got %s", got)
	}
	if probe.calls != 0 {
		t.Fatalf("blocked webxr must not probe, ran %d times", probe.calls)
	}

	pc.Blocks.Block(SceneViewer)
	if got := mustSelect(t, DefaultModes, pc); got != QuickLook {
		t.Fatalf("expected quick-look with webxr and scene-viewer blocked, got %s", got)
	}

	pc.Blocks.Reset()
	if got := mustSelect(t, DefaultModes, pc); got != WebXR {
		t.Fatalf("expected webxr after reset, got %s", got)
	}
}

func TestSelectQuickLookRequiresIOSSource(t *testing.T) {
	pc := allCapable(nil)
	pc.XRCapable = false
	pc.SceneViewerCapable = false
	pc.Android = false
	pc.HasIOSSource = false

	if got := mustSelect(t, DefaultModes, pc); got != None {
		t.Fatalf("expected none without a usdz source, got %s", got)
	}

	pc.HasIOSSource = true
	if got := mustSelect(t, DefaultModes, pc); got != QuickLook {
		t.Fatalf("expected quick-look, got %s", got)
	}
}

func TestSelectQuickLookBrowserGate(t *testing.T) {
	pc := allCapable(nil)
	pc.XRCapable = false
	pc.SceneViewerCapable = false
	pc.Android = false
	pc.Gates.QuickLookBrowsers = []string{"safari"}

	pc.QuickLookBrowser = "chrome"
	if got := mustSelect(t, DefaultModes, pc); got != None {
		t.Fatalf("expected none for disallowed browser, got %s", got)
	}

	pc.QuickLookBrowser = "safari"
	if got := mustSelect(t, DefaultModes, pc); got != QuickLook {
		t.Fatalf("expected quick-look for allowed browser, got %s", got)
	}

	pc.Gates.QuickLookBrowsers = nil
	pc.QuickLookBrowser = "chrome"
	if got := mustSelect(t, DefaultModes, pc); got != QuickLook {
		t.Fatalf("expected quick-look with empty allow list, got %s", got)
	}
}

func TestSelectSceneViewerAndroidGate(t *testing.T) {
	pc := allCapable(nil)
	pc.XRCapable = false
	pc.Gates.SceneViewerOnAndroid = true

	pc.Android = false
	pc.SceneViewerCapable = true
	if got := mustSelect(t, []Mode{SceneViewer}, pc); got != None {
		t.Fatalf("android gate must ignore the capability signal, got %s", got)
	}

	pc.Android = true
	pc.SceneViewerCapable = false
	if got := mustSelect(t, []Mode{SceneViewer}, pc); got != SceneViewer {
		t.Fatalf("expected scene-viewer on the raw android flag, got %s", got)
	}
}

func TestSelectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Select(ctx, DefaultModes, allCapable(nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBlocksAreIndependent(t *testing.T) {
	a := NewBlocks()
	b := NewBlocks()
	a.Block(WebXR)

	if b.Blocked(WebXR) {
		t.Fatal("independent block sets must not share flags")
	}
	if !a.Blocked(WebXR) {
		t.Fatal("block flag lost")
	}
}

func TestParseQuickLookBrowsers(t *testing.T) {
	got := ParseQuickLookBrowsers("Safari chrome lynx")
	if len(got) != 2 || got[0] != "safari" || got[1] != "chrome" {
		t.Fatalf("unexpected allow list: %v", got)
	}
	if out := ParseQuickLookBrowsers(""); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
}
