package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// embedDescriptor is the parsed form of the inline player variables on
// a VixSrc embed page. Every field except fhd is mandatory; a partial
// descriptor is never produced.
type embedDescriptor struct {
	videoID string
	token   string
	expires string
	baseURL string
	fhd     bool
}

// Patterns for the inline-script globals the embed page sets. The page
// is only ever fetched as text, never executed, so matching stays
// deliberately loose about whitespace and key order. The page layout
// changes without notice; keep these tolerant.
var (
	videoIDRe     = regexp.MustCompile(`window\.video\s*=\s*\{[^}]*\bid\s*:\s*['"]([^'"]+)['"]`)
	playlistRe    = regexp.MustCompile(`window\.masterPlaylist\s*=`)
	windowVarRe   = regexp.MustCompile(`window\.\w+\s*=`)
	tokenRe       = regexp.MustCompile(`['"]?token['"]?\s*:\s*['"]([^'"]+)['"]`)
	expiresRe     = regexp.MustCompile(`['"]?expires['"]?\s*:\s*['"]([^'"]+)['"]`)
	playlistURLRe = regexp.MustCompile(`\burl\s*:\s*['"]([^'"]+)['"]`)
	fhdRe         = regexp.MustCompile(`window\.canPlayFHD\s*=\s*(true|false)`)
	manifestRe    = regexp.MustCompile(`https?:[^'"\s\\]+\.m3u8[^'"\s\\]*`)
)

// parseEmbedVars pulls the player variables out of embed page HTML.
// Returns nil unless videoID, token, expires and the playlist URL are
// all present. Pure function: no I/O, input is never mutated.
func parseEmbedVars(html string) *embedDescriptor {
	text := scriptText(html)

	videoID := firstGroup(videoIDRe, text)

	block := playlistBlock(text)
	token := firstGroup(tokenRe, block)
	expires := firstGroup(expiresRe, block)
	baseURL := firstGroup(playlistURLRe, block)

	if videoID == "" || token == "" || expires == "" || baseURL == "" {
		return nil
	}

	return &embedDescriptor{
		videoID: videoID,
		token:   token,
		expires: expires,
		baseURL: baseURL,
		fhd:     firstGroup(fhdRe, text) == "true",
	}
}

// scriptText returns the concatenated contents of all inline <script>
// elements, so visible page text cannot produce accidental matches.
// Falls back to the raw input when the document yields no scripts.
func scriptText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	var b strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
		b.WriteString("\n")
	})
	if b.Len() == 0 {
		return html
	}
	return b.String()
}

// playlistBlock isolates the text of the window.masterPlaylist
// assignment so the token/expires/url patterns cannot match unrelated
// script variables. The block runs until the next window.* assignment
// or the end of input; key order inside the assignment does not matter.
func playlistBlock(text string) string {
	loc := playlistRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	block := text[loc[1]:]
	if next := windowVarRe.FindStringIndex(block); next != nil {
		block = block[:next[0]]
	}
	return block
}

// firstGroup returns the first capture group of the first match, or "".
func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// buildManifestURL assembles the signed manifest URL from a descriptor.
// The query always carries the escaped token and expires values, an
// empty asn placeholder and lang=en; h=1 is appended only when full HD
// is allowed. The separator is chosen by inspecting the base URL so a
// pre-existing query string never produces a second '?'.
func buildManifestURL(d *embedDescriptor) string {
	if d == nil || d.baseURL == "" || d.token == "" || d.expires == "" {
		return ""
	}

	params := []string{
		"token=" + url.QueryEscape(d.token),
		"expires=" + url.QueryEscape(d.expires),
		"asn=",
		"lang=en",
	}
	if d.fhd {
		params = append(params, "h=1")
	}

	sep := "?"
	if strings.Contains(d.baseURL, "?") {
		sep = "&"
	}
	return d.baseURL + sep + strings.Join(params, "&")
}

// scanManifestURLs finds literal HLS manifest URLs anywhere in the
// page, de-duplicated in order of first appearance. Matches are low
// confidence: the pattern can pick up unrelated URLs from analytics
// or ad scripts, which is acceptable for a last-resort path.
func scanManifestURLs(html string) []string {
	matches := manifestRe.FindAllString(html, -1)

	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		urls = append(urls, m)
	}
	return urls
}
