package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/arlaunch/arlaunch/internal/fetch"
	"github.com/arlaunch/arlaunch/internal/utils"
	"github.com/arlaunch/arlaunch/pkg/ar"
	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/browser"
	"github.com/arlaunch/arlaunch/pkg/store"
)

// Evaluation is the resolution outcome for one element on one device
// profile.
type Evaluation struct {
	Profile   string
	Mode      armode.Mode
	LaunchURL string

	// Note carries a launch URL build failure; the mode still stands.
	Note string
}

// catalogProbe answers the selector's runtime WebXR probe with the
// catalog's measured capability bit. Off-device there is no session to
// ask.
type catalogProbe bool

func (p catalogProbe) SupportsPresentation(ctx context.Context) (bool, error) {
	return bool(p), nil
}

// Evaluate resolves a viewer configuration against one device profile:
// which mode activation would pick there, and the launch URL it would
// open. Blocks start empty, as on a fresh page load.
func Evaluate(ctx context.Context, cfg ar.Config, pageURL string, profile browser.Profile, gates armode.Gates) (Evaluation, error) {
	pc := profile.Environment().PlatformContext(cfg.AR, cfg.IOSSource != "")
	pc.Probe = catalogProbe(profile.WebXR)
	pc.Blocks = armode.NewBlocks()
	if len(cfg.QuickLookBrowsers) > 0 {
		gates.QuickLookBrowsers = cfg.QuickLookBrowsers
	}
	pc.Gates = gates

	mode, err := armode.Select(ctx, cfg.ModesOrDefault(), pc)
	if err != nil {
		return Evaluation{}, err
	}

	ev := Evaluation{Profile: profile.Name, Mode: mode}
	launchURL, err := cfg.LaunchURL(mode, pageURL)
	if err != nil {
		ev.Note = "launch URL: " + err.Error()
		return ev, nil
	}
	ev.LaunchURL = launchURL
	return ev, nil
}

// Result is everything the scanner learned about one page.
type Result struct {
	URL      string
	Title    string
	Status   int
	Elements []Element

	// Err is set when the page could not be fetched at all.
	Err string
}

// Records flattens the result into history rows, one per evaluation.
func (r *Result) Records() []store.Resolution {
	var records []store.Resolution
	for _, el := range r.Elements {
		for _, ev := range el.Evaluations {
			records = append(records, store.Resolution{
				Page:      r.URL,
				ElementID: el.ID,
				Profile:   ev.Profile,
				Mode:      ev.Mode.String(),
				LaunchURL: ev.LaunchURL,
				Notes:     ev.Note,
			})
		}
	}
	return records
}

// Scanner fetches pages and resolves every viewer element on them
// against a set of device profiles.
type Scanner struct {
	// Client for page fetches. nil uses the fetch package default.
	Client *retryablehttp.Client

	// Profiles to evaluate against. Empty means the whole catalog.
	Profiles []browser.Profile

	// Gates tune the selector, shared by every evaluation.
	Gates armode.Gates

	// UserAgent for the page fetch itself. Empty uses the fetch
	// default.
	UserAgent string
}

// ScanPage fetches one page and evaluates every viewer element on it.
func (s *Scanner) ScanPage(ctx context.Context, pageURL string) (*Result, error) {
	res, err := fetch.Send(ctx, &fetch.Request{URL: pageURL, UserAgent: s.UserAgent}, s.Client)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}

	elements, err := ParseElements(pageURL, res.Body)
	if err != nil {
		return nil, err
	}

	profiles := s.Profiles
	if len(profiles) == 0 {
		profiles = browser.Profiles()
	}

	for i := range elements {
		el := &elements[i]
		if el.HasIssue(IssueBadConfig) {
			continue
		}
		for _, profile := range profiles {
			ev, err := Evaluate(ctx, el.Config, pageURL, profile, s.Gates)
			if err != nil {
				return nil, err
			}
			el.Evaluations = append(el.Evaluations, ev)
		}
	}

	return &Result{
		URL:      pageURL,
		Title:    res.Title,
		Status:   res.StatusCode,
		Elements: elements,
	}, nil
}

// ScanPages scans pages concurrently. Failed pages come back as
// results with Err set rather than failing the batch; results keep the
// input order.
func (s *Scanner) ScanPages(ctx context.Context, pageURLs []string, concurrency int) []*Result {
	if concurrency < 1 {
		concurrency = 1
	}

	urlChan := make(chan string)
	results := make([]*Result, 0, len(pageURLs))
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range urlChan {
				res, err := s.ScanPage(ctx, pageURL)
				if err != nil {
					utils.Log.Warn("Scan failed for ", pageURL, ": ", err)
					res = &Result{URL: pageURL, Err: err.Error()}
				}
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}

	for _, pageURL := range pageURLs {
		urlChan <- pageURL
	}
	close(urlChan)
	wg.Wait()

	order := make(map[string]int, len(pageURLs))
	for i, pageURL := range pageURLs {
		order[pageURL] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		return order[results[i].URL] < order[results[j].URL]
	})

	return results
}
