// Package fetch is the HTTP layer used to pull pages in for scanning.
package fetch

import (
	"context"
	"io"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

// DefaultUserAgent is sent when a request does not pin one. Scans normally
// pin a device profile UA so the served markup matches that device.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

type Header struct {
	Name  string
	Value string
}

type Request struct {
	URL        string
	Method     string
	UserAgent  string
	CustomHost string
	Headers    []Header
}

type Response struct {
	StatusCode int
	Length     int
	Title      string
	Body       string
}

// NewClient returns the retrying client page fetches go through.
func NewClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 3
	client.HTTPClient.Timeout = 30 * time.Second
	return client
}

var defaultClient = NewClient()

// Send performs the request and reads the whole body. A nil client falls
// back to the package default.
func Send(ctx context.Context, fReq *Request, client *retryablehttp.Client) (*Response, error) {
	if client == nil {
		client = defaultClient
	}

	method := fReq.Method
	if method == "" {
		method = "GET"
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fReq.URL, nil)
	if err != nil {
		return nil, err
	}

	// Set custom Host header
	if fReq.CustomHost != "" {
		req.Host = fReq.CustomHost
	} else {
		if strings.HasSuffix(req.Host, ":80") {
			req.Host = strings.TrimSuffix(req.Host, ":80")
		} else if strings.HasSuffix(req.Host, ":443") {
			req.Host = strings.TrimSuffix(req.Host, ":443")
		}
	}

	// Set common headers
	ua := fReq.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Cache-Control", "no-transform")
	req.Header.Set("Connection", "close")
	req.Header.Set("Accept-Language", "en")

	// Set custom headers
	for _, h := range fReq.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	fRes := &Response{
		Body:       string(bodyBytes),
		StatusCode: resp.StatusCode,
	}

	if title, ok := pageTitle(fRes.Body); ok {
		fRes.Title = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
	}

	fRes.Length = utf8.RuneCountInString(fRes.Body)
	return fRes, nil
}

func isTitleNode(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func firstTitle(n *html.Node) (string, bool) {
	if isTitleNode(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title, ok := firstTitle(c); ok {
			return title, ok
		}
	}

	return "", false
}

func pageTitle(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	return firstTitle(doc)
}
