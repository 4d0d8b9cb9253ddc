package intent

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/arlaunch/arlaunch/internal/utils"
	"github.com/arlaunch/arlaunch/pkg/armode"
)

// ApplePayButtonType selects the Apple Pay button style on the Quick
// Look banner. An empty value means no Apple Pay button.
type ApplePayButtonType string

const (
	ApplePayPlain     ApplePayButtonType = "plain"
	ApplePayPay       ApplePayButtonType = "pay"
	ApplePayBuy       ApplePayButtonType = "buy"
	ApplePayCheckout  ApplePayButtonType = "check-out"
	ApplePayBook      ApplePayButtonType = "book"
	ApplePayDonate    ApplePayButtonType = "donate"
	ApplePaySubscribe ApplePayButtonType = "subscribe"
)

// applePayButtonTypes is the source of truth for accepted button styles.
var applePayButtonTypes = map[string]ApplePayButtonType{
	"plain":     ApplePayPlain,
	"pay":       ApplePayPay,
	"buy":       ApplePayBuy,
	"check-out": ApplePayCheckout,
	"book":      ApplePayBook,
	"donate":    ApplePayDonate,
	"subscribe": ApplePaySubscribe,
}

// ParseApplePayButtonType maps a config token to a button type. The
// empty string parses to the empty type (no button).
func ParseApplePayButtonType(s string) (ApplePayButtonType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if t, ok := applePayButtonTypes[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown apple pay button type %q", s)
}

// BannerHeight sizes a custom Quick Look banner.
type BannerHeight string

const (
	BannerSmall  BannerHeight = "small"
	BannerMedium BannerHeight = "medium"
	BannerLarge  BannerHeight = "large"
)

// ParseBannerHeight maps a config token to a banner height. The empty
// string parses to the empty height (platform default).
func ParseBannerHeight(s string) (BannerHeight, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch BannerHeight(s) {
	case "", BannerSmall, BannerMedium, BannerLarge:
		return BannerHeight(s), nil
	}
	return "", fmt.Errorf("unknown banner height %q", s)
}

// QuickLookParams configures the AR Quick Look banner. All fields are
// optional; empty fields are left out of the URL entirely.
type QuickLookParams struct {
	// Title is shown on the banner. Serialized as checkoutTitle.
	Title string

	// CheckoutSubtitle is the second banner line.
	CheckoutSubtitle string

	// Price string, already formatted with its currency.
	Price string

	// Resizable false pins the model scale in the viewer. Serialized as
	// allowsContentScaling with "0" meaning pinned.
	Resizable bool

	// Link is the canonical web page for the model, serialized as
	// canonicalWebPageURL. May be relative to the page.
	Link string

	// ApplePayButtonType puts an Apple Pay button on the banner.
	ApplePayButtonType ApplePayButtonType

	// CallToAction labels a plain action button instead of Apple Pay.
	CallToAction string

	// CustomBanner is the URL of a custom banner document, serialized
	// as custom. May be relative to the page.
	CustomBanner string

	// CustomHeight sizes the custom banner.
	CustomHeight BannerHeight
}

// QuickLookIntent is a ready to launch Quick Look URL: the usdz file
// plus its banner parameters, already resolved to absolute form.
type QuickLookIntent struct {
	File   *url.URL
	Params QuickLookParams
}

// NewQuickLook validates the usdz file URL, resolves it and the link
// and custom banner references against the page URL when relative, and
// returns an immutable intent. Banner misconfiguration is never fatal:
// it is warned to the log and serialization proceeds.
func NewQuickLook(fileURL, pageURL string, params QuickLookParams) (*QuickLookIntent, error) {
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
	if params.CustomBanner, err = resolveRef(page, params.CustomBanner); err != nil {
		return nil, fmt.Errorf("resolving custom banner: %w", err)
	}

	if params.ApplePayButtonType == "" && params.CallToAction == "" {
		utils.Log.Warn("Quick Look banner has neither an apple pay button type nor a call to action; the viewer will show its default banner")
	}
	if _, err := ParseApplePayButtonType(string(params.ApplePayButtonType)); err != nil {
		utils.Log.Warn("Serializing anyway: ", err)
	}
	if _, err := ParseBannerHeight(string(params.CustomHeight)); err != nil {
		utils.Log.Warn("Serializing anyway: ", err)
	}

	return &QuickLookIntent{File: file, Params: params}, nil
}

// Mode returns the launch method this intent belongs to.
func (i *QuickLookIntent) Mode() armode.Mode {
	return armode.QuickLook
}

// ToURL renders the launch URL: the usdz file URL with the banner
// parameters percent-encoded into its fragment. Empty parameters are
// omitted; allowsContentScaling is always present since the scale
// choice is never absent. Keys are emitted in a fixed order.
func (i *QuickLookIntent) ToURL() string {
	p := i.Params

	pairs := make([]string, 0, 9)
	add := func(key, value string) {
		if value == "" {
			return
		}
		pairs = append(pairs, key+"="+escape(value))
	}

	add("checkoutTitle", p.Title)
	add("checkoutSubtitle", p.CheckoutSubtitle)
	add("price", p.Price)

	scaling := "1"
	if !p.Resizable {
		scaling = "0"
	}
	pairs = append(pairs, "allowsContentScaling="+scaling)

	add("canonicalWebPageURL", p.Link)
	add("applePayButtonType", string(p.ApplePayButtonType))
	add("callToAction", p.CallToAction)
	add("custom", p.CustomBanner)
	add("customHeight", string(p.CustomHeight))

	return i.File.String() + "#" + strings.Join(pairs, "&")
}
