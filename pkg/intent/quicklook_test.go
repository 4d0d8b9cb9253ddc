package intent

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/arlaunch/arlaunch/internal/utils"
)

func TestQuickLookFullBanner(t *testing.T) {
	ql, err := NewQuickLook(
		"https://cdn.example.com/rocket.usdz",
		"https://shop.example.com/products/rocket",
		QuickLookParams{
			Title:              "Space Rocket",
			CheckoutSubtitle:   "Limited edition",
			Price:              "$129.00",
			Resizable:          false,
			Link:               "/rocket",
			ApplePayButtonType: ApplePayBuy,
			CustomBanner:       "banners/rocket.html",
			CustomHeight:       BannerLarge,
		})
	if err != nil {
		t.Fatalf("NewQuickLook failed: %v", err)
	}

	expected := "https://cdn.example.com/rocket.usdz#" +
		"checkoutTitle=Space%20Rocket" +
		"&checkoutSubtitle=Limited%20edition" +
		"&price=%24129.00" +
		"&allowsContentScaling=0" +
		"&canonicalWebPageURL=https%3A%2F%2Fshop.example.com%2Frocket" +
		"&applePayButtonType=buy" +
		"&custom=https%3A%2F%2Fshop.example.com%2Fproducts%2Fbanners%2Frocket.html" +
		"&customHeight=large"
	if got := ql.ToURL(); got != expected {
		t.Fatalf("unexpected URL:\n got: %s\nwant: %s", got, expected)
	}
}

func TestQuickLookFieldRenames(t *testing.T) {
	ql, err := NewQuickLook("https://cdn.example.com/m.usdz", "", QuickLookParams{
		Title:     "Chair",
		Resizable: true,
		Link:      "https://example.com/chair",
	})
	if err != nil {
		t.Fatalf("NewQuickLook failed: %v", err)
	}

	got := ql.ToURL()
	for _, want := range []string{
		"checkoutTitle=Chair",
		"allowsContentScaling=1",
		"canonicalWebPageURL=https%3A%2F%2Fexample.com%2Fchair",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %s", want, got)
		}
	}
	for _, stale := range []string{"title=", "resizable=", "link="} {
		if strings.Contains(got, "&"+stale) || strings.Contains(got, "#"+stale) {
			t.Fatalf("unrenamed field %q leaked into %s", stale, got)
		}
	}
}

func TestQuickLookOmitsEmptyFields(t *testing.T) {
	ql, err := NewQuickLook("https://cdn.example.com/m.usdz", "", QuickLookParams{
		Title: "Chair",
	})
	if err != nil {
		t.Fatalf("NewQuickLook failed: %v", err)
	}

	// The scale choice is never absent, everything else is.
	expected := "https://cdn.example.com/m.usdz#checkoutTitle=Chair&allowsContentScaling=0"
	if got := ql.ToURL(); got != expected {
		t.Fatalf("unexpected URL: %s", got)
	}
}

func TestQuickLookFixedScaleWithCustomBanner(t *testing.T) {
	ql, err := NewQuickLook("https://cdn.example.com/m.usdz", "", QuickLookParams{
		Resizable:    false,
		CustomBanner: "https://example.com/banner.html",
		CallToAction: "Preorder now",
	})
	if err != nil {
		t.Fatalf("NewQuickLook failed: %v", err)
	}

	got := ql.ToURL()
	if !strings.Contains(got, "allowsContentScaling=0") {
		t.Fatalf("fixed scale must serialize as allowsContentScaling=0: %s", got)
	}
	if !strings.Contains(got, "custom=https%3A%2F%2Fexample.com%2Fbanner.html") {
		t.Fatalf("custom banner missing from %s", got)
	}
	if !strings.Contains(got, "callToAction=Preorder%20now") {
		t.Fatalf("call to action missing from %s", got)
	}
}

func TestQuickLookRelativeRefsNeedPage(t *testing.T) {
	_, err := NewQuickLook("https://cdn.example.com/m.usdz", "", QuickLookParams{
		Link: "chair.html",
	})
	if !errors.Is(err, ErrNoPage) {
		t.Fatalf("expected ErrNoPage, got %v", err)
	}
}

func TestQuickLookFileValidation(t *testing.T) {
	if _, err := NewQuickLook("", "", QuickLookParams{}); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
	if _, err := NewQuickLook("models/m.usdz", "", QuickLookParams{}); !errors.Is(err, ErrFileNotAbsolute) {
		t.Fatalf("expected ErrFileNotAbsolute, got %v", err)
	}

	ql, err := NewQuickLook("models/m.usdz", "https://shop.example.com/p/", QuickLookParams{
		CallToAction: "Buy",
	})
	if err != nil {
		t.Fatalf("relative usdz with a page must resolve: %v", err)
	}
	if got := ql.ToURL(); !strings.HasPrefix(got, "https://shop.example.com/p/models/m.usdz#") {
		t.Fatalf("relative usdz not resolved: %s", got)
	}
}

func TestQuickLookStripsFileFragment(t *testing.T) {
	ql, err := NewQuickLook("https://cdn.example.com/m.usdz#old", "", QuickLookParams{Resizable: true})
	if err != nil {
		t.Fatalf("NewQuickLook failed: %v", err)
	}
	if got := ql.ToURL(); got != "https://cdn.example.com/m.usdz#allowsContentScaling=1" {
		t.Fatalf("stale file fragment survived: %s", got)
	}
}

func TestQuickLookWarnsWithoutBannerAction(t *testing.T) {
	hook := test.NewLocal(utils.Log)
	defer hook.Reset()

	ql, err := NewQuickLook("https://cdn.example.com/m.usdz", "", QuickLookParams{
		Title: "Chair",
	})
	if err != nil {
		t.Fatalf("misconfigured banner must not fail: %v", err)
	}
	if ql.ToURL() == "" {
		t.Fatal("expected a usable URL despite the warning")
	}

	found := false
	for _, entry := range hook.AllEntries() {
		if strings.Contains(entry.Message, "neither an apple pay button") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a diagnostic warning about the missing banner action")
	}

	hook.Reset()
	if _, err := NewQuickLook("https://cdn.example.com/m.usdz", "", QuickLookParams{
		CallToAction: "Buy it",
	}); err != nil {
		t.Fatalf("NewQuickLook failed: %v", err)
	}
	for _, entry := range hook.AllEntries() {
		if strings.Contains(entry.Message, "neither an apple pay button") {
			t.Fatal("unexpected warning with a call to action configured")
		}
	}
}
