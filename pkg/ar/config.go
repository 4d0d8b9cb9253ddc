package ar

import (
	"fmt"
	"strings"

	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/intent"
)

// Scale controls whether the user may resize the model inside the
// native viewer.
type Scale string

const (
	ScaleAuto  Scale = "auto"
	ScaleFixed Scale = "fixed"
)

// ParseScale maps a config token to a Scale. The empty string parses
// to auto.
func ParseScale(s string) (Scale, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch Scale(s) {
	case "":
		return ScaleAuto, nil
	case ScaleAuto, ScaleFixed:
		return Scale(s), nil
	}
	return "", fmt.Errorf("unknown ar scale %q", s)
}

// Config is the typed viewer configuration. ConfigFromAttrs is the one
// string→typed boundary; everything downstream works with this form.
type Config struct {
	// AR enables the whole feature. Off means no gate is ever
	// evaluated.
	AR bool

	// Modes is the launch candidate order. nil means DefaultModes; an
	// empty non-nil slice means the viewer explicitly configured no
	// usable candidates.
	Modes []armode.Mode

	// Scale governs the resizable semantics of both intent builders.
	Scale Scale

	// Source is the glb/gltf model URL, possibly relative to the page.
	Source string

	// IOSSource is the usdz model URL for Quick Look, possibly relative
	// to the page.
	IOSSource string

	// Title is shown by both native viewers.
	Title string

	// Link is the canonical web page offered by the native viewers.
	Link string

	// Quick Look banner extras.
	CheckoutSubtitle   string
	Price              string
	ApplePayButtonType intent.ApplePayButtonType
	CallToAction       string
	CustomBanner       string
	CustomHeight       intent.BannerHeight

	// Scene Viewer extras.
	FallbackURL string
	Sound       string

	// QuickLookBrowsers narrows quick-look to "safari"/"chrome".
	QuickLookBrowsers []string
}

// Resizable reports whether the configured scale allows resizing.
func (c Config) Resizable() bool {
	return c.Scale != ScaleFixed
}

// ModesOrDefault returns the configured candidate order, or
// DefaultModes when none was configured.
func (c Config) ModesOrDefault() []armode.Mode {
	if c.Modes == nil {
		return armode.DefaultModes
	}
	return c.Modes
}

// Validate checks the enum fields. Launch-time concerns (missing
// sources, unresolvable references) are reported by the launch paths.
func (c Config) Validate() error {
	if _, err := ParseScale(string(c.Scale)); err != nil {
		return err
	}
	if _, err := intent.ParseApplePayButtonType(string(c.ApplePayButtonType)); err != nil {
		return err
	}
	if _, err := intent.ParseBannerHeight(string(c.CustomHeight)); err != nil {
		return err
	}
	return nil
}

func (c Config) quickLookParams() intent.QuickLookParams {
	return intent.QuickLookParams{
		Title:              c.Title,
		CheckoutSubtitle:   c.CheckoutSubtitle,
		Price:              c.Price,
		Resizable:          c.Resizable(),
		Link:               c.Link,
		ApplePayButtonType: c.ApplePayButtonType,
		CallToAction:       c.CallToAction,
		CustomBanner:       c.CustomBanner,
		CustomHeight:       c.CustomHeight,
	}
}

func (c Config) sceneViewerParams(fallbackURL string) intent.SceneViewerParams {
	return intent.SceneViewerParams{
		Title:       c.Title,
		Link:        c.Link,
		Sound:       c.Sound,
		FallbackURL: fallbackURL,
		Resizable:   c.Resizable(),
	}
}

// ConfigFromAttrs builds a Config from raw element attributes. The
// recognized attributes are:
//
//	ar                      presence enables AR (HTML boolean attribute)
//	ar-modes                space separated candidate order
//	ar-scale                auto | fixed
//	src                     glb/gltf model URL
//	ios-src                 usdz model URL
//	ar-title, alt           viewer title (ar-title wins)
//	ar-link                 canonical web page URL
//	ar-fallback-url         Scene Viewer browser fallback URL
//	ar-sound                Scene Viewer looping audio URL
//	checkout-subtitle       Quick Look banner subtitle
//	price                   Quick Look banner price string
//	apple-pay-button-type   plain|pay|buy|check-out|book|donate|subscribe
//	call-to-action          Quick Look banner button label
//	custom-banner           Quick Look custom banner URL
//	custom-height           small|medium|large
//	quick-look-browsers     space separated safari/chrome allow list
//
// Unknown attributes are ignored: host elements carry plenty this
// feature does not own.
func ConfigFromAttrs(attrs map[string]string) (Config, error) {
	var cfg Config
	var err error

	_, cfg.AR = attrs["ar"]

	if raw, ok := attrs["ar-modes"]; ok {
		cfg.Modes = armode.ParseModeList(raw)
		if cfg.Modes == nil {
			// Present but useless is not the same as absent: the viewer
			// asked for an order we cannot satisfy.
			cfg.Modes = []armode.Mode{}
		}
	}

	if cfg.Scale, err = ParseScale(attrs["ar-scale"]); err != nil {
		return Config{}, fmt.Errorf("attribute ar-scale: %w", err)
	}

	cfg.Source = strings.TrimSpace(attrs["src"])
	cfg.IOSSource = strings.TrimSpace(attrs["ios-src"])

	cfg.Title = attrs["ar-title"]
	if cfg.Title == "" {
		cfg.Title = attrs["alt"]
	}
	cfg.Link = strings.TrimSpace(attrs["ar-link"])
	cfg.FallbackURL = strings.TrimSpace(attrs["ar-fallback-url"])
	cfg.Sound = strings.TrimSpace(attrs["ar-sound"])

	cfg.CheckoutSubtitle = attrs["checkout-subtitle"]
	cfg.Price = attrs["price"]
	if cfg.ApplePayButtonType, err = intent.ParseApplePayButtonType(attrs["apple-pay-button-type"]); err != nil {
		return Config{}, fmt.Errorf("attribute apple-pay-button-type: %w", err)
	}
	cfg.CallToAction = attrs["call-to-action"]
	cfg.CustomBanner = strings.TrimSpace(attrs["custom-banner"])
	if cfg.CustomHeight, err = intent.ParseBannerHeight(attrs["custom-height"]); err != nil {
		return Config{}, fmt.Errorf("attribute custom-height: %w", err)
	}

	cfg.QuickLookBrowsers = armode.ParseQuickLookBrowsers(attrs["quick-look-browsers"])

	return cfg, nil
}
