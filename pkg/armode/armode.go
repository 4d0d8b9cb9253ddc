package armode

import (
	"strings"

	"github.com/arlaunch/arlaunch/internal/utils"
)

// Mode identifies one way of entering an AR presentation.
type Mode string

const (
	// WebXR presents inline through the browser's immersive-ar session.
	WebXR Mode = "webxr"
	// SceneViewer hands off to Google Scene Viewer via an intent:// URL.
	SceneViewer Mode = "scene-viewer"
	// QuickLook hands off to Apple AR Quick Look via a usdz URL.
	QuickLook Mode = "quick-look"
	// None means no launch method is available.
	None Mode = "none"
)

func (m Mode) String() string {
	return string(m)
}

// Launchable reports whether the mode actually starts a presentation.
func (m Mode) Launchable() bool {
	return m == WebXR || m == SceneViewer || m == QuickLook
}

// knownModes is the source of truth for candidate list tokens.
// "none" is deliberately absent: it is an outcome, not a candidate.
var knownModes = map[string]Mode{
	"webxr":        WebXR,
	"scene-viewer": SceneViewer,
	"quick-look":   QuickLook,
}

// DefaultModes is the candidate order used when a viewer does not
// configure one.
var DefaultModes = []Mode{WebXR, SceneViewer, QuickLook}

// ParseMode maps a single token to a Mode.
func ParseMode(token string) (Mode, bool) {
	m, ok := knownModes[strings.ToLower(strings.TrimSpace(token))]
	return m, ok
}

// ParseModeList parses a whitespace separated candidate list like
// "webxr scene-viewer quick-look". Order is preserved, duplicates keep
// their first position and unknown tokens are dropped with a warning.
// An empty or all-unknown list parses to no candidates; callers decide
// whether to substitute DefaultModes.
func ParseModeList(raw string) []Mode {
	var modes []Mode
	seen := make(map[Mode]bool)
	for _, token := range strings.Fields(raw) {
		m, ok := ParseMode(token)
		if !ok {
			utils.Log.Warn("Ignoring unknown AR mode token: ", token)
			continue
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		modes = append(modes, m)
	}
	return modes
}

// FormatModeList renders a candidate list back to its attribute form.
func FormatModeList(modes []Mode) string {
	tokens := make([]string, 0, len(modes))
	for _, m := range modes {
		tokens = append(tokens, string(m))
	}
	return strings.Join(tokens, " ")
}
