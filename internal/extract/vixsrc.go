package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"minnow/internal/httputil"
	"minnow/internal/media"
)

// DefaultVixSrcBase is the third party's origin.
const DefaultVixSrcBase = "https://vixsrc.to"

const vixsrcName = "vixsrc"

// VixSrc extracts HLS streams from vixsrc.to embed pages. The page is
// fetched as text and scraped for the inline player variables; it is
// never executed.
type VixSrc struct {
	base   string
	client *http.Client
}

// NewVixSrc creates a VixSrc extractor. An empty base falls back to
// DefaultVixSrcBase; an empty timeout to httputil.DefaultTimeout.
func NewVixSrc(base string, timeout time.Duration) *VixSrc {
	if base == "" {
		base = DefaultVixSrcBase
	}
	return &VixSrc{
		base:   strings.TrimRight(base, "/"),
		client: httputil.NewClient(timeout),
	}
}

func (v *VixSrc) Name() string { return vixsrcName }

// EmbedURL builds the embed page URL for a request.
// Movies: {base}/movie/{id}/  TV: {base}/tv/{id}/{season}/{episode}/
func (v *VixSrc) EmbedURL(req media.StreamRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := httputil.ValidateID(req.ContentID); err != nil {
		return "", fmt.Errorf("invalid content ID: %w", err)
	}

	if req.Type == media.TV {
		return httputil.BuildURL(v.base, "tv", req.ContentID,
			strconv.Itoa(req.Season), strconv.Itoa(req.Episode)) + "/", nil
	}
	return httputil.BuildURL(v.base, "movie", req.ContentID) + "/", nil
}

// Extract resolves a request into streams. Malformed requests fail
// fast before any network call. Transport and build failures become
// per-source errors; a failed variable parse degrades to the literal
// manifest scan instead of failing.
func (v *VixSrc) Extract(ctx context.Context, req media.StreamRequest) media.ExtractionResult {
	embedURL, err := v.EmbedURL(req)
	if err != nil {
		return media.ExtractionResult{Source: vixsrcName, Err: err.Error()}
	}

	html, err := v.fetchEmbedPage(ctx, embedURL)
	if err != nil {
		return media.ExtractionResult{
			Source: vixsrcName,
			Err:    fmt.Sprintf("loading embed page: %v", err),
		}
	}

	desc := parseEmbedVars(html)
	if desc == nil {
		// Degraded path: the page layout changed or the variables moved.
		// Any literal manifest URLs still present beat an empty result,
		// and finding none is itself a valid outcome.
		return media.ExtractionResult{
			Source:  vixsrcName,
			Streams: v.scanForManifests(html, embedURL),
		}
	}

	manifestURL := buildManifestURL(desc)
	if manifestURL == "" {
		return media.ExtractionResult{
			Source: vixsrcName,
			Err:    "building manifest URL from descriptor",
		}
	}

	return media.ExtractionResult{
		Source: vixsrcName,
		Streams: []media.Stream{{
			File:    manifestURL,
			Title:   "VixSrc Stream",
			Quality: "HD",
			Kind:    media.KindHLS,
			Headers: v.playbackHeaders(embedURL),
		}},
	}
}

// fetchEmbedPage GETs the embed page with browser-mimicking headers.
// Referer and Origin are pinned to the source's own domain; the origin
// rejects requests without a plausible referer.
func (v *VixSrc) fetchEmbedPage(ctx context.Context, embedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, embedURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", httputil.BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", v.base+"/")
	req.Header.Set("Origin", v.base)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	return string(body), nil
}

// scanForManifests wraps every literal manifest URL found in the page
// into a stream carrying the same pinned header set as the primary path.
func (v *VixSrc) scanForManifests(html, embedURL string) []media.Stream {
	urls := scanManifestURLs(html)

	streams := make([]media.Stream, 0, len(urls))
	for i, u := range urls {
		streams = append(streams, media.Stream{
			File:    u,
			Title:   fmt.Sprintf("VixSrc Stream %d", i+1),
			Quality: "HD",
			Kind:    media.KindHLS,
			Headers: v.playbackHeaders(embedURL),
		})
	}
	return streams
}

// playbackHeaders is the hotlink-protection set attached to every
// stream. Downstream players must forward it unmodified on manifest
// and segment requests.
func (v *VixSrc) playbackHeaders(embedURL string) map[string]string {
	return map[string]string{
		"Referer":         embedURL,
		"Origin":          v.base,
		"User-Agent":      httputil.BrowserUserAgent,
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
		"Connection":      "keep-alive",
		"Sec-Fetch-Dest":  "video",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
	}
}
