package armode

import (
	"context"
	"strings"

	"github.com/arlaunch/arlaunch/internal/utils"
)

// XRProbe answers the runtime half of the webxr gate. The static flags
// only say the browser should support immersive AR; the probe asks the
// actual runtime whether a session can be presented right now.
type XRProbe interface {
	SupportsPresentation(ctx context.Context) (bool, error)
}

// Gates tunes how individual candidate gates are evaluated.
type Gates struct {
	// SceneViewerOnAndroid gates scene-viewer on the raw Android flag
	// instead of the derived Scene Viewer capability signal. Matches the
	// older, stricter gating generation.
	SceneViewerOnAndroid bool

	// QuickLookBrowsers restricts quick-look to the named browser
	// families ("safari", "chrome"). Empty allows any Quick Look capable
	// browser.
	QuickLookBrowsers []string
}

// ParseQuickLookBrowsers parses a whitespace separated browser allow
// list. Only "safari" and "chrome" are meaningful; other tokens are
// dropped with a warning.
func ParseQuickLookBrowsers(raw string) []string {
	var out []string
	for _, token := range strings.Fields(raw) {
		name := strings.ToLower(token)
		if name != "safari" && name != "chrome" {
			utils.Log.Warn("Ignoring unknown quick-look browser token: ", token)
			continue
		}
		out = append(out, name)
	}
	return out
}

// PlatformContext carries everything Select needs to know about the
// viewer configuration and the hosting browser.
type PlatformContext struct {
	// AREnabled mirrors the viewer's ar switch. When false, Select
	// returns None without evaluating a single gate.
	AREnabled bool

	// HasIOSSource reports whether a usdz model was configured.
	HasIOSSource bool

	// Static platform detection flags, usually derived from the user
	// agent (see pkg/browser).
	Android            bool
	XRCapable          bool
	SceneViewerCapable bool
	QuickLookCapable   bool

	// QuickLookBrowser names the browser family for the allowed-browser
	// gate: "safari", "chrome" or "".
	QuickLookBrowser string

	// Probe is consulted only after a webxr candidate passed its static
	// gate. Nil means no runtime is available, which fails the gate.
	Probe XRProbe

	// Blocks holds the session block flags. Nil falls back to Shared().
	Blocks *Blocks

	Gates Gates
}

func (pc PlatformContext) blocks() *Blocks {
	if pc.Blocks != nil {
		return pc.Blocks
	}
	return Shared()
}

// Select walks the candidate list in order and returns the first mode
// whose gate passes, or None when no gate does. Gate failures are never
// errors: a probe rejection or probe error just makes that candidate
// unavailable. The only error returned is the context's.
//
// The webxr probe runs at most once per call, and only when webxr's
// static gate already passed. Candidates after the first match are not
// evaluated at all.
func Select(ctx context.Context, candidates []Mode, pc PlatformContext) (Mode, error) {
	if !pc.AREnabled {
		return None, nil
	}

	blocks := pc.blocks()
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return None, err
		}

		switch candidate {
		case WebXR:
			if !pc.XRCapable || blocks.Blocked(WebXR) {
				continue
			}
			supported, err := probeXR(ctx, pc.Probe)
			if err != nil {
				if ctx.Err() != nil {
					return None, ctx.Err()
				}
				utils.Log.Debug("WebXR probe failed, skipping candidate: ", err)
				continue
			}
			if supported {
				return WebXR, nil
			}

		case SceneViewer:
			capable := pc.SceneViewerCapable
			if pc.Gates.SceneViewerOnAndroid {
				capable = pc.Android
			}
			if capable && !blocks.Blocked(SceneViewer) {
				return SceneViewer, nil
			}

		case QuickLook:
			if pc.HasIOSSource && pc.QuickLookCapable && quickLookBrowserAllowed(pc) {
				return QuickLook, nil
			}
		}
	}
	return None, nil
}

func probeXR(ctx context.Context, probe XRProbe) (bool, error) {
	if probe == nil {
		return false, nil
	}
	return probe.SupportsPresentation(ctx)
}

func quickLookBrowserAllowed(pc PlatformContext) bool {
	allowed := pc.Gates.QuickLookBrowsers
	if len(allowed) == 0 {
		return true
	}
	for _, name := range allowed {
		if strings.EqualFold(name, pc.QuickLookBrowser) {
			return true
		}
	}
	return false
}
