// Package main (bypass.go) :
// These methods are for converting a file ID into a direct download URL.
// When the size of file is large, Google Drive returns a virus scan warning
// page instead of the file. The confirm token and uuid in that page are
// appended to the download URL, and then the URL can be fetched directly.
package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
)

const (
	anyurl       = "https://drive.google.com/uc?export=download"
	maxPageBytes = 1 << 20
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ConfirmExtractor : Retrieve the confirm token and uuid from a virus scan warning page.
type ConfirmExtractor func(page []byte) (confirm, uuid string, ok bool)

// Negotiator : Structure for negotiating the virus scan warning of Google Drive.
type Negotiator struct {
	Client  *http.Client
	BaseURL string
	Extract ConfirmExtractor
}

// linkNegotiator : Negotiate a direct URL for a file ID.
type linkNegotiator interface {
	Negotiate(id string) (string, error)
}

var (
	confirmPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[?&;]confirm=([0-9A-Za-z_-]+)`),
		regexp.MustCompile(`name="confirm"\s+value="([0-9A-Za-z_-]+)"`),
	}
	uuidPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[?&;]uuid=([0-9A-Za-z_-]+)`),
		regexp.MustCompile(`name="uuid"\s+value="([0-9A-Za-z_-]+)"`),
	}
)

// NewNegotiator : Create a Negotiator with a cookie jar.
func NewNegotiator() (*Negotiator, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Negotiator{
		Client:  &http.Client{Jar: jar},
		BaseURL: anyurl,
		Extract: ExtractConfirm,
	}, nil
}

// ExtractConfirm : Default extractor. The download anchor and the download form
// of the warning page are searched.
func ExtractConfirm(page []byte) (string, string, bool) {
	confirm := firstMatch(confirmPatterns, page)
	if confirm == "" {
		return "", "", false
	}
	return confirm, firstMatch(uuidPatterns, page), true
}

// cookieConfirm : Confirm token of the legacy download_warning cookie.
func cookieConfirm(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if strings.HasPrefix(c.Name, "download_warning") {
			return c.Value
		}
	}
	return ""
}

func firstMatch(patterns []*regexp.Regexp, page []byte) string {
	for _, r := range patterns {
		if m := r.FindSubmatch(page); m != nil {
			return string(m[1])
		}
	}
	return ""
}

// PlainURL : Export download URL of the file ID.
func (n *Negotiator) PlainURL(id string) string {
	base := n.BaseURL
	if base == "" {
		base = anyurl
	}
	return base + "&id=" + url.QueryEscape(id)
}

// Negotiate : Retrieve a direct URL of the file ID. When the confirm token
// cannot be extracted, the plain URL is returned with ErrBypassExtractionFailed.
// A token found only in the download_warning cookie is bound to that session,
// so its URL is also returned with ErrBypassExtractionFailed.
func (n *Negotiator) Negotiate(id string) (string, error) {
	plain := n.PlainURL(id)
	res, err := n.fetch(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: file ID [ %s ]", ErrNotFound, id)
	case res.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// An empty file cannot serve the first byte.
		return plain, nil
	case res.StatusCode != http.StatusOK && res.StatusCode != http.StatusPartialContent:
		return "", fmt.Errorf("%w: file ID [ %s ] returned status code %d", ErrNotAccessible, id, res.StatusCode)
	}
	if !isHTML(res.Header.Get("Content-Type")) {
		return plain, nil
	}
	page, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	extract := n.Extract
	if extract == nil {
		extract = ExtractConfirm
	}
	if confirm, uuid, ok := extract(page); ok {
		return bypassURL(plain, confirm, uuid), nil
	}
	cookies := res.Cookies()
	if n.Client != nil && n.Client.Jar != nil {
		cookies = append(cookies, n.Client.Jar.Cookies(res.Request.URL)...)
	}
	if confirm := cookieConfirm(cookies); confirm != "" {
		return bypassURL(plain, confirm, ""), fmt.Errorf("%w: file ID [ %s ] has only a session cookie token", ErrBypassExtractionFailed, id)
	}
	return plain, fmt.Errorf("%w: file ID [ %s ]", ErrBypassExtractionFailed, id)
}

// fetch : Fetch only the head of the file, since a binary response is not read.
func (n *Negotiator) fetch(u string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", "bytes=0-0")
	req.Header.Set("User-Agent", userAgent)
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

func bypassURL(plain, confirm, uuid string) string {
	u := plain + "&confirm=" + url.QueryEscape(confirm)
	if uuid != "" {
		u += "&uuid=" + url.QueryEscape(uuid)
	}
	return u
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(contentType), "text/html")
	}
	return mt == "text/html"
}

// DirectLink : Build a DownloadLink of the entry. A failed bypass degrades to
// the URL returned by the negotiator with a warning unless strict is set.
func DirectLink(n linkNegotiator, e Entry, strict bool) (DownloadLink, error) {
	u, err := n.Negotiate(e.ID)
	link := DownloadLink{FileID: e.ID, DisplayName: e.Name, URL: u}
	switch {
	case err == nil:
		return link, nil
	case errors.Is(err, ErrBypassExtractionFailed) && !strict:
		warnf("!! %v. The link of '%s' may still ask for confirmation.\n", err, e.displayName())
		link.Fallback = true
		return link, nil
	default:
		return DownloadLink{}, err
	}
}
