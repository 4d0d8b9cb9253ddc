// Package browser classifies user agent strings into the platform
// flags the AR mode selector consumes, and ships a small catalog of
// device profiles for resolving launch behavior off-device.
package browser

import (
	"strings"

	"github.com/arlaunch/arlaunch/pkg/armode"
)

// Flags are the raw facts read from a user agent string. They make no
// capability claims on their own; the candidate methods derive those.
type Flags struct {
	Android bool
	IOS     bool
	IPad    bool

	Safari    bool
	Chrome    bool
	IOSChrome bool
	Firefox   bool
	Samsung   bool
	Edge      bool
	Oculus    bool
	WebView   bool
}

// Detect classifies a user agent string. Token checks only: browser
// version thresholds are deliberately not parsed here, the device
// catalog carries measured capability truth where heuristics fall
// short.
func Detect(userAgent string) Flags {
	ua := userAgent
	var f Flags

	f.Android = strings.Contains(ua, "Android")
	f.IPad = strings.Contains(ua, "iPad")
	f.IOS = f.IPad || strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPod")

	f.IOSChrome = strings.Contains(ua, "CriOS/")
	f.Samsung = strings.Contains(ua, "SamsungBrowser/")
	f.Oculus = strings.Contains(ua, "OculusBrowser/")
	f.Firefox = strings.Contains(ua, "Firefox/") || strings.Contains(ua, "FxiOS/")
	f.Edge = strings.Contains(ua, "Edg/") || strings.Contains(ua, "EdgA/") || strings.Contains(ua, "EdgiOS/")

	// "Chrome/" shows up in every Chromium derivative, so knock the
	// known derivatives out first.
	f.Chrome = strings.Contains(ua, "Chrome/") &&
		!f.Samsung && !f.Oculus && !f.Edge && !strings.Contains(ua, "OPR/")

	// Real Safari never carries a Chrome token.
	f.Safari = strings.Contains(ua, "Safari/") &&
		!strings.Contains(ua, "Chrome/") && !f.IOSChrome && !f.Firefox &&
		!f.Samsung && !f.Oculus && !f.Edge

	// Android WebViews advertise "; wv)", iOS WKWebViews drop the
	// Safari token.
	f.WebView = strings.Contains(ua, "; wv)") || (f.IOS && !strings.Contains(ua, "Safari/"))

	return f
}

// SceneViewerCandidate reports whether a Scene Viewer handoff could
// work here. Firefox on Android and the Oculus browser ship without
// ARCore integration.
func (f Flags) SceneViewerCandidate() bool {
	return f.Android && !f.Firefox && !f.Oculus
}

// QuickLookCandidate reports whether an AR Quick Look handoff could
// work here. Safari and Chrome on iOS both hand usdz files to Quick
// Look.
func (f Flags) QuickLookCandidate() bool {
	return f.IOS && (f.Safari || f.IOSChrome)
}

// WebXRCandidate reports whether the browser could host an immersive-ar
// session. This is the static half of the gate only; the runtime probe
// has the final word.
func (f Flags) WebXRCandidate() bool {
	if f.Oculus {
		return true
	}
	return f.Android && f.Chrome
}

// QuickLookBrowserName names the browser family for the quick-look
// allow list gate: "safari", "chrome" or "".
func (f Flags) QuickLookBrowserName() string {
	switch {
	case f.IOSChrome:
		return "chrome"
	case f.IOS && f.Safari:
		return "safari"
	}
	return ""
}

// Environment is the static capability picture the selector works
// from. The capability fields usually derive from Flags but a catalog
// profile may override them with measured truth.
type Environment struct {
	UserAgent string
	Flags     Flags

	XRCapable          bool
	SceneViewerCapable bool
	QuickLookCapable   bool
}

// DetectEnvironment classifies a user agent and derives the capability
// fields from its flags alone.
func DetectEnvironment(userAgent string) Environment {
	flags := Detect(userAgent)
	return Environment{
		UserAgent:          userAgent,
		Flags:              flags,
		XRCapable:          flags.WebXRCandidate(),
		SceneViewerCapable: flags.SceneViewerCandidate(),
		QuickLookCapable:   flags.QuickLookCandidate(),
	}
}

// PlatformContext assembles the selector inputs for one viewer
// configuration in this environment. Probe, Blocks and Gates stay at
// their zero values for the caller to fill in.
func (e Environment) PlatformContext(arEnabled, hasIOSSource bool) armode.PlatformContext {
	return armode.PlatformContext{
		AREnabled:          arEnabled,
		HasIOSSource:       hasIOSSource,
		Android:            e.Flags.Android,
		XRCapable:          e.XRCapable,
		SceneViewerCapable: e.SceneViewerCapable,
		QuickLookCapable:   e.QuickLookCapable,
		QuickLookBrowser:   e.Flags.QuickLookBrowserName(),
	}
}
