package extract

import (
	"strings"
	"testing"
)

const embedScript = `<html><head><script>
window.video = {id: 'abc123', title: 'Some Movie'};
window.streams = [];
window.masterPlaylist = {
    params: {
        'token': 'tok-value',
        'expires': '1700000000',
    },
    url: 'https://cdn.example/playlist/12345',
}
window.canPlayFHD = true
</script></head><body></body></html>`

func TestParseEmbedVars(t *testing.T) {
	desc := parseEmbedVars(embedScript)
	if desc == nil {
		t.Fatal("parseEmbedVars() = nil, want descriptor")
	}

	if desc.videoID != "abc123" {
		t.Errorf("videoID = %q, want abc123", desc.videoID)
	}
	if desc.token != "tok-value" {
		t.Errorf("token = %q, want tok-value", desc.token)
	}
	if desc.expires != "1700000000" {
		t.Errorf("expires = %q, want 1700000000", desc.expires)
	}
	if desc.baseURL != "https://cdn.example/playlist/12345" {
		t.Errorf("baseURL = %q, want https://cdn.example/playlist/12345", desc.baseURL)
	}
	if !desc.fhd {
		t.Error("fhd = false, want true")
	}
}

func TestParseEmbedVarsWhitespaceInsensitive(t *testing.T) {
	// Same variables, everything crammed onto single lines with
	// minimal spacing and double quotes.
	compact := `<script>window.video={id:"abc123"};window.masterPlaylist={params:{"token":"tok-value","expires":"1700000000"},url:"https://cdn.example/playlist/12345"};window.canPlayFHD=true</script>`

	a := parseEmbedVars(embedScript)
	b := parseEmbedVars(compact)
	if a == nil || b == nil {
		t.Fatalf("parseEmbedVars() = (%v, %v), want both non-nil", a, b)
	}
	if *a != *b {
		t.Errorf("descriptors differ across whitespace variants:\n%+v\n%+v", *a, *b)
	}
}

func TestParseEmbedVarsParamOrderInsensitive(t *testing.T) {
	swapped := `<script>
window.video = {id: 'abc123'};
window.masterPlaylist = {
    url: 'https://cdn.example/playlist/12345',
    params: {
        'expires': '1700000000',
        'token': 'tok-value',
    },
}
</script>`

	desc := parseEmbedVars(swapped)
	if desc == nil {
		t.Fatal("parseEmbedVars() = nil for reordered params")
	}
	if desc.token != "tok-value" || desc.expires != "1700000000" {
		t.Errorf("token/expires = %q/%q, want tok-value/1700000000", desc.token, desc.expires)
	}
}

func TestParseEmbedVarsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			"missing video id",
			`<script>window.masterPlaylist = {params: {'token': 'T', 'expires': 'E'}, url: 'https://c/p'}</script>`,
		},
		{
			"missing token",
			`<script>window.video = {id: 'v'}; window.masterPlaylist = {params: {'expires': 'E'}, url: 'https://c/p'}</script>`,
		},
		{
			"missing expires",
			`<script>window.video = {id: 'v'}; window.masterPlaylist = {params: {'token': 'T'}, url: 'https://c/p'}</script>`,
		},
		{
			"missing playlist url",
			`<script>window.video = {id: 'v'}; window.masterPlaylist = {params: {'token': 'T', 'expires': 'E'}}</script>`,
		},
		{
			"no playlist at all",
			`<script>window.video = {id: 'v'};</script>`,
		},
		{
			"empty document",
			``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if desc := parseEmbedVars(tt.html); desc != nil {
				t.Errorf("parseEmbedVars() = %+v, want nil (no partial descriptors)", desc)
			}
		})
	}
}

func TestParseEmbedVarsFHDDefaultsFalse(t *testing.T) {
	html := `<script>
window.video = {id: 'v'};
window.masterPlaylist = {params: {'token': 'T', 'expires': 'E'}, url: 'https://c/p'}
</script>`

	desc := parseEmbedVars(html)
	if desc == nil {
		t.Fatal("parseEmbedVars() = nil")
	}
	if desc.fhd {
		t.Error("fhd = true, want false when canPlayFHD is absent")
	}
}

func TestBuildManifestURL(t *testing.T) {
	tests := []struct {
		name string
		desc *embedDescriptor
		want string
	}{
		{
			"plain base with FHD",
			&embedDescriptor{token: "T", expires: "999", baseURL: "https://cdn.example/master.m3u8", fhd: true},
			"https://cdn.example/master.m3u8?token=T&expires=999&asn=&lang=en&h=1",
		},
		{
			"no FHD omits h flag",
			&embedDescriptor{token: "T", expires: "999", baseURL: "https://cdn.example/master.m3u8"},
			"https://cdn.example/master.m3u8?token=T&expires=999&asn=&lang=en",
		},
		{
			"base with existing query uses ampersand",
			&embedDescriptor{token: "T", expires: "999", baseURL: "https://cdn.example/p?b=1"},
			"https://cdn.example/p?b=1&token=T&expires=999&asn=&lang=en",
		},
		{
			"token and expires are escaped",
			&embedDescriptor{token: "a/b+c", expires: "1 2", baseURL: "https://cdn.example/p"},
			"https://cdn.example/p?token=a%2Fb%2Bc&expires=1+2&asn=&lang=en",
		},
		{
			"nil descriptor",
			nil,
			"",
		},
		{
			"incomplete descriptor",
			&embedDescriptor{token: "T", baseURL: "https://cdn.example/p"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildManifestURL(tt.desc)
			if got != tt.want {
				t.Errorf("buildManifestURL() = %q, want %q", got, tt.want)
			}
			if n := strings.Count(got, "?"); got != "" && n != 1 {
				t.Errorf("built URL contains %d '?' separators, want exactly 1: %q", n, got)
			}
		})
	}
}

func TestScanManifestURLs(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			"single match",
			`<script>var u = "https://cdn.example/master.m3u8?t=1";</script>`,
			[]string{"https://cdn.example/master.m3u8?t=1"},
		},
		{
			"multiple distinct matches",
			`a https://one.example/a.m3u8 b https://two.example/b.m3u8 c`,
			[]string{"https://one.example/a.m3u8", "https://two.example/b.m3u8"},
		},
		{
			"duplicates collapse in first-seen order",
			`https://x.example/a.m3u8 https://y.example/b.m3u8 https://x.example/a.m3u8`,
			[]string{"https://x.example/a.m3u8", "https://y.example/b.m3u8"},
		},
		{
			"no matches",
			`<html><body>nothing playable here</body></html>`,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanManifestURLs(tt.html)
			if len(got) != len(tt.want) {
				t.Fatalf("scanManifestURLs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("match[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
