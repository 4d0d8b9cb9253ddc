package intent

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/arlaunch/arlaunch/pkg/armode"
)

// SceneViewerParams configures the Scene Viewer handoff. All fields are
// optional.
type SceneViewerParams struct {
	// Title shown in the Scene Viewer chrome. Percent-encoded.
	Title string

	// Link is an optional web page Scene Viewer offers to visit. May be
	// relative to the page.
	Link string

	// Sound is an optional looping audio asset URL. May be relative to
	// the page.
	Sound string

	// FallbackURL is where the browser navigates when the Scene Viewer
	// app cannot be launched. May be relative to the page. Leave empty
	// to let the caller arm its own fallback detection.
	FallbackURL string

	// Resizable false pins the model scale. Scene Viewer defaults to
	// resizable, so only the pinned case is serialized.
	Resizable bool
}

// SceneViewerIntent is a ready to launch intent:// URI for Google Scene
// Viewer: the glb/gltf file plus its parameters, already resolved to
// absolute form.
type SceneViewerIntent struct {
	File   *url.URL
	Params SceneViewerParams
}

// NewSceneViewer validates the model file URL, resolves it and the
// link, sound and fallback references against the page URL when
// relative, and returns an immutable intent.
func NewSceneViewer(fileURL, pageURL string, params SceneViewerParams) (*SceneViewerIntent, error) {
	page, err := parsePage(pageURL)
	if err != nil {
		return nil, err
	}
	file, err := parseFile(fileURL, page)
	if err != nil {
		return nil, err
	}
	if params.Link, err = resolveRef(page, params.Link); err != nil {
		return nil, fmt.Errorf("resolving link: %w", err)
	}
	if params.Sound, err = resolveRef(page, params.Sound); err != nil {
		return nil, fmt.Errorf("resolving sound: %w", err)
	}
	if params.FallbackURL, err = resolveRef(page, params.FallbackURL); err != nil {
		return nil, fmt.Errorf("resolving fallback URL: %w", err)
	}

	return &SceneViewerIntent{File: file, Params: params}, nil
}

// Mode returns the launch method this intent belongs to.
func (i *SceneViewerIntent) Mode() armode.Mode {
	return armode.SceneViewer
}

// ToURL renders the intent:// URI. The file URL is embedded verbatim so
// any query parameters already on it survive the round trip; only the
// title and the browser fallback URL are percent-encoded, matching what
// the Scene Viewer intent scheme expects.
func (i *SceneViewerIntent) ToURL() string {
	p := i.Params

	var q strings.Builder
	q.WriteString("file=")
	q.WriteString(i.File.String())
	q.WriteString("&mode=ar_only")
	if p.Link != "" {
		q.WriteString("&link=")
		q.WriteString(p.Link)
	}
	if p.Title != "" {
		q.WriteString("&title=")
		q.WriteString(escape(p.Title))
	}
	if p.Sound != "" {
		q.WriteString("&sound=")
		q.WriteString(p.Sound)
	}
	if !p.Resizable {
		q.WriteString("&resizable=false")
	}

	var frag strings.Builder
	frag.WriteString("Intent;scheme=")
	frag.WriteString(i.File.Scheme)
	frag.WriteString(";package=com.google.ar.core")
	frag.WriteString(";action=android.intent.action.VIEW")
	if p.FallbackURL != "" {
		frag.WriteString(";S.browser_fallback_url=")
		frag.WriteString(escape(p.FallbackURL))
	}
	frag.WriteString(";end;")

	return "intent://arvr.google.com/scene-viewer/1.0?" + q.String() + "#" + frag.String()
}
