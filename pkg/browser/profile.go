package browser

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

//go:embed devices.json
var devicesJSON []byte

// Profile is one browser/device pair from the built in catalog. Its
// capability fields are measured truth for that pair, not UA
// heuristics.
type Profile struct {
	Name        string
	UserAgent   string
	WebXR       bool
	SceneViewer bool
	QuickLook   bool
	Notes       string
}

// Profiles returns the built in device catalog, sorted by name.
func Profiles() []Profile {
	profiles := parseProfiles(devicesJSON)
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

func parseProfiles(data []byte) []Profile {
	var profiles []Profile
	for _, entry := range gjson.ParseBytes(data).Array() {
		profile := Profile{
			Name:        gjson.Get(entry.Raw, "name").Str,
			UserAgent:   gjson.Get(entry.Raw, "user_agent").Str,
			WebXR:       gjson.Get(entry.Raw, "webxr").Bool(),
			SceneViewer: gjson.Get(entry.Raw, "scene_viewer").Bool(),
			QuickLook:   gjson.Get(entry.Raw, "quick_look").Bool(),
			Notes:       gjson.Get(entry.Raw, "notes").Str,
		}
		if profile.Name == "" || profile.UserAgent == "" {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// LookupProfile finds a catalog entry by name, case insensitively.
func LookupProfile(name string) (Profile, bool) {
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Profile{}, false
}

// ProfileFromUA builds an ad hoc profile for a raw user agent string.
// Its capabilities come from UA heuristics alone, so it behaves the way
// an uncataloged browser would.
func ProfileFromUA(name, userAgent string) Profile {
	env := DetectEnvironment(userAgent)
	return Profile{
		Name:        name,
		UserAgent:   userAgent,
		WebXR:       env.XRCapable,
		SceneViewer: env.SceneViewerCapable,
		QuickLook:   env.QuickLookCapable,
	}
}

// Environment builds the selector inputs for this profile: flags come
// from its user agent, capabilities from the catalog truth.
func (p Profile) Environment() Environment {
	return Environment{
		UserAgent:          p.UserAgent,
		Flags:              Detect(p.UserAgent),
		XRCapable:          p.WebXR,
		SceneViewerCapable: p.SceneViewer,
		QuickLookCapable:   p.QuickLook,
	}
}
