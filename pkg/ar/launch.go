package ar

import (
	"net/url"
	"strings"

	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/intent"
)

// BuildQuickLook returns the Quick Look intent a viewer with this
// configuration launches from the given page.
func (c Config) BuildQuickLook(pageURL string) (*intent.QuickLookIntent, error) {
	return intent.NewQuickLook(c.IOSSource, pageURL, c.quickLookParams())
}

// BuildSceneViewer returns the Scene Viewer intent a viewer with this
// configuration launches from the given page. When no fallback URL is
// configured the page itself, marked with the fallback sigil, stands
// in so a bounced handoff is detectable.
func (c Config) BuildSceneViewer(pageURL string) (*intent.SceneViewerIntent, error) {
	fallback := c.FallbackURL
	if fallback == "" && pageURL != "" {
		if page, err := url.Parse(pageURL); err == nil {
			sigiled := *page
			sigiled.Fragment = strings.TrimPrefix(FallbackSigil, "#")
			sigiled.RawFragment = ""
			fallback = sigiled.String()
		}
	}
	return intent.NewSceneViewer(c.Source, pageURL, c.sceneViewerParams(fallback))
}

// LaunchURL returns the URL the given mode opens for this configuration
// from the given page. WebXR sessions have no launch URL; webxr and
// none return the empty string.
func (c Config) LaunchURL(mode armode.Mode, pageURL string) (string, error) {
	switch mode {
	case armode.QuickLook:
		ql, err := c.BuildQuickLook(pageURL)
		if err != nil {
			return "", err
		}
		return ql.ToURL(), nil
	case armode.SceneViewer:
		sv, err := c.BuildSceneViewer(pageURL)
		if err != nil {
			return "", err
		}
		return sv.ToURL(), nil
	}
	return "", nil
}
