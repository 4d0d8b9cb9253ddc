// Package intent builds the launch URLs that hand a model off to the
// native AR viewers: Apple AR Quick Look on iOS and Google Scene Viewer
// on Android. Both builders are pure: they validate and resolve their
// inputs at construction time and ToURL never fails afterwards.
package intent

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/arlaunch/arlaunch/pkg/armode"
)

// Intent is the contract both launch intents share: the mode they
// belong to and the platform-native URL that opens them.
type Intent interface {
	Mode() armode.Mode
	ToURL() string
}

var (
	// ErrNoFile means no model file URL was given for the intent.
	ErrNoFile = errors.New("no model file URL configured")

	// ErrFileNotAbsolute means the model file URL has no scheme or host.
	// Native viewers have no document context to resolve against.
	ErrFileNotAbsolute = errors.New("model file URL is not absolute")

	// ErrNoPage flags a relative reference with no page URL to resolve
	// it against.
	ErrNoPage = errors.New("relative URL reference requires a page URL")
)

// escape percent-encodes a value for embedding in a query or fragment,
// with spaces as %20 rather than +.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// parseFile parses and validates the model file URL, resolving a
// relative one against the page when possible. Its fragment is dropped:
// both launch URL formats reserve the fragment for their own payload.
func parseFile(fileURL string, page *url.URL) (*url.URL, error) {
	if strings.TrimSpace(fileURL) == "" {
		return nil, ErrNoFile
	}
	u, err := url.Parse(fileURL)
	if err != nil {
		return nil, fmt.Errorf("parsing model file URL %q: %w", fileURL, err)
	}
	if !u.IsAbs() && page != nil {
		u = page.ResolveReference(u)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrFileNotAbsolute, fileURL)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

// parsePage parses the optional page URL used for resolving relative
// references. Empty input is allowed and yields nil.
func parsePage(pageURL string) (*url.URL, error) {
	if strings.TrimSpace(pageURL) == "" {
		return nil, nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL %q: %w", pageURL, err)
	}
	return u, nil
}

// resolveRef turns a possibly relative reference into an absolute URL
// against the page. Empty references stay empty.
func resolveRef(page *url.URL, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing URL reference %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if page == nil {
		return "", fmt.Errorf("%w: %q", ErrNoPage, ref)
	}
	return page.ResolveReference(u).String(), nil
}
