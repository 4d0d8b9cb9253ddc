package armode

import (
	"reflect"
	"testing"
)

func TestParseModeList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []Mode
	}{
		{
			name:     "full list keeps order",
			raw:      "webxr scene-viewer quick-look",
			expected: []Mode{WebXR, SceneViewer, QuickLook},
		},
		{
			name:     "reversed order is preserved",
			raw:      "quick-look scene-viewer webxr",
			expected: []Mode{QuickLook, SceneViewer, WebXR},
		},
		{
			name:     "duplicates keep their first position",
			raw:      "scene-viewer webxr scene-viewer",
			expected: []Mode{SceneViewer, WebXR},
		},
		{
			name:     "unknown tokens are dropped",
			raw:      "webxr hologram quick-look",
			expected: []Mode{WebXR, QuickLook},
		},
		{
			name:     "none is not a candidate",
			raw:      "none webxr",
			expected: []Mode{WebXR},
		},
		{
			name:     "empty list",
			raw:      "   ",
			expected: nil,
		},
		{
			name:     "extra whitespace and case",
			raw:      "  WebXR\tSCENE-VIEWER ",
			expected: []Mode{WebXR, SceneViewer},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ParseModeList(tc.raw)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("ParseModeList(%q) = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := ParseMode(" Quick-Look "); !ok || m != QuickLook {
		t.Fatalf("expected quick-look, got %v (ok=%v)", m, ok)
	}
	if _, ok := ParseMode("none"); ok {
		t.Fatal("none must not parse as a candidate")
	}
	if _, ok := ParseMode("sceneviewer"); ok {
		t.Fatal("sceneviewer without dash must not parse")
	}
}

func TestFormatModeList(t *testing.T) {
	raw := "quick-look webxr"
	if got := FormatModeList(ParseModeList(raw)); got != raw {
		t.Fatalf("round trip failed: %q", got)
	}
}

func TestLaunchable(t *testing.T) {
	for _, m := range DefaultModes {
		if !m.Launchable() {
			t.Fatalf("%s should be launchable", m)
		}
	}
	if None.Launchable() {
		t.Fatal("none should not be launchable")
	}
}
