// Package scan inspects HTML pages for model viewer elements and
// reports how AR activation would resolve for them on given device
// profiles.
package scan

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/arlaunch/arlaunch/pkg/ar"
	"github.com/arlaunch/arlaunch/pkg/armode"
)

// ViewerTag is the element name the scanner looks for.
const ViewerTag = "model-viewer"

type IssueCode string

const (
	// IssueBadConfig marks attributes the config boundary rejected.
	IssueBadConfig IssueCode = "bad-config"

	// IssueARDisabled marks elements without the ar attribute.
	IssueARDisabled IssueCode = "ar-disabled"

	// IssueNoModelSource marks elements without a src model URL.
	IssueNoModelSource IssueCode = "no-model-source"

	// IssueNoIOSSource marks elements listing quick-look without an
	// ios-src, which can never match.
	IssueNoIOSSource IssueCode = "no-ios-source"

	// IssueCrossSite marks link or fallback URLs pointing at another
	// registrable domain than the page.
	IssueCrossSite IssueCode = "cross-site-url"
)

// Issue is one finding about a viewer element's AR readiness.
type Issue struct {
	Code    IssueCode
	Message string
}

func (i Issue) String() string {
	return string(i.Code) + ": " + i.Message
}

// Element is one viewer element lifted off a page, with its parsed
// configuration, findings and per-profile resolutions.
type Element struct {
	Index       int
	ID          string
	Config      ar.Config
	Issues      []Issue
	Evaluations []Evaluation
}

// HasIssue reports whether the element carries a finding of the given
// code.
func (e Element) HasIssue(code IssueCode) bool {
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// ParseElements extracts every viewer element from the page markup and
// runs its attributes through the config boundary. Evaluations are not
// filled in here; see Scanner and Evaluate.
func ParseElements(pageURL, body string) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page HTML: %w", err)
	}

	var elements []Element
	doc.Find(ViewerTag).Each(func(index int, s *goquery.Selection) {
		el := Element{Index: index}
		el.ID, _ = s.Attr("id")

		attrs := make(map[string]string)
		for _, attr := range s.Get(0).Attr {
			attrs[attr.Key] = attr.Val
		}

		cfg, err := ar.ConfigFromAttrs(attrs)
		if err != nil {
			el.Issues = append(el.Issues, Issue{Code: IssueBadConfig, Message: err.Error()})
			elements = append(elements, el)
			return
		}

		el.Config = cfg
		el.Issues = Diagnose(cfg, pageURL)
		elements = append(elements, el)
	})

	return elements, nil
}

// Diagnose reports readiness findings for one parsed configuration.
func Diagnose(cfg ar.Config, pageURL string) []Issue {
	var issues []Issue

	if !cfg.AR {
		issues = append(issues, Issue{Code: IssueARDisabled, Message: "element has no ar attribute, activation stays off"})
	}
	if cfg.Source == "" {
		issues = append(issues, Issue{Code: IssueNoModelSource, Message: "no src model URL configured"})
	}

	quickLookCandidate := false
	for _, m := range cfg.ModesOrDefault() {
		if m == armode.QuickLook {
			quickLookCandidate = true
			break
		}
	}
	if quickLookCandidate && cfg.IOSSource == "" {
		issues = append(issues, Issue{Code: IssueNoIOSSource, Message: "quick-look is a candidate but no ios-src is configured"})
	}

	// Cross-site references are legal but usually a copy-paste mistake,
	// and a cross-site fallback breaks the bounce detection.
	crossSiteChecks := []struct {
		attr  string
		value string
	}{
		{"ar-link", cfg.Link},
		{"ar-fallback-url", cfg.FallbackURL},
	}
	for _, check := range crossSiteChecks {
		if check.value == "" {
			continue
		}
		if crossSite(pageURL, check.value) {
			issues = append(issues, Issue{Code: IssueCrossSite, Message: check.attr + " points at a different site: " + check.value})
		}
	}

	return issues
}

// crossSite reports whether target lives on a different registrable
// domain than the page. Relative targets and anything that does not
// parse to a host compare as same-site.
func crossSite(pageURL, target string) bool {
	pageDomain, ok := registrableDomain(pageURL)
	if !ok {
		return false
	}
	targetDomain, ok := registrableDomain(target)
	if !ok {
		return false
	}
	return !strings.EqualFold(pageDomain, targetDomain)
}

func registrableDomain(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	// IP literals have no registrable domain; the suffix list would
	// split them like hostnames.
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return "", false
	}

	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", false
	}
	return domain, true
}
