package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"minnow/internal/config"
	"minnow/internal/extract"
	"minnow/internal/media"
)

type stubExtractor struct {
	name   string
	result media.ExtractionResult
	calls  atomic.Int32
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(ctx context.Context, req media.StreamRequest) media.ExtractionResult {
	s.calls.Add(1)
	res := s.result
	res.Source = s.name
	return res
}

func newTestServer(extractors ...extract.Extractor) *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(config.Default(), log, extract.NewRegistry(extractors...))
}

func doGET(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return w, body
}

func TestMovieEndpoint(t *testing.T) {
	ok := &stubExtractor{
		name: "vixsrc",
		result: media.ExtractionResult{Streams: []media.Stream{{
			File:    "https://cdn.example/master.m3u8?token=T",
			Title:   "VixSrc Stream",
			Quality: "HD",
			Kind:    media.KindHLS,
			Headers: map[string]string{"Referer": "https://vixsrc.to/movie/550/"},
		}}},
	}
	s := newTestServer(ok)

	w, body := doGET(t, s, "/movie/550")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	if body["type"] != "movie" || body["id"] != "550" {
		t.Errorf("type/id = %v/%v, want movie/550", body["type"], body["id"])
	}

	sub, ok2 := body["vixsrc"].(map[string]interface{})
	if !ok2 {
		t.Fatalf("response missing vixsrc sub-object: %v", body)
	}
	streams, ok2 := sub["streams"].([]interface{})
	if !ok2 || len(streams) != 1 {
		t.Fatalf("vixsrc.streams = %v, want 1 entry", sub["streams"])
	}
	if _, present := sub["error"]; present {
		t.Error("error key must be absent on success")
	}

	if body["totalServersWithStreams"] != float64(1) {
		t.Errorf("totalServersWithStreams = %v, want 1", body["totalServersWithStreams"])
	}
	if body["totalStreamsFound"] != float64(1) {
		t.Errorf("totalStreamsFound = %v, want 1", body["totalStreamsFound"])
	}

	// Headers survive serialization untouched.
	stream := streams[0].(map[string]interface{})
	headers := stream["headers"].(map[string]interface{})
	if headers["Referer"] != "https://vixsrc.to/movie/550/" {
		t.Errorf("stream Referer = %v", headers["Referer"])
	}
}

func TestMovieEndpointFailedSourceKeepsStreamsArray(t *testing.T) {
	failing := &stubExtractor{
		name:   "vixsrc",
		result: media.ExtractionResult{Err: "loading embed page: unexpected status 403"},
	}
	s := newTestServer(failing)

	w, body := doGET(t, s, "/movie/550")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	sub := body["vixsrc"].(map[string]interface{})
	if _, present := sub["streams"]; !present {
		t.Error("streams array must always be present")
	}
	if sub["error"] == "" || sub["error"] == nil {
		t.Error("failed source must carry an error string")
	}
	if body["totalStreamsFound"] != float64(0) {
		t.Errorf("totalStreamsFound = %v, want 0", body["totalStreamsFound"])
	}
}

func TestMovieEndpointUnknownServer(t *testing.T) {
	e := &stubExtractor{name: "vixsrc"}
	s := newTestServer(e)

	w, body := doGET(t, s, "/movie/550?server=doesnotexist")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body["error"] == nil {
		t.Error("400 response must carry an error message")
	}
	if e.calls.Load() != 0 {
		t.Errorf("extractor ran %d times, want 0 for unknown server", e.calls.Load())
	}
}

func TestTVEndpoint(t *testing.T) {
	e := &stubExtractor{
		name:   "vixsrc",
		result: media.ExtractionResult{Streams: []media.Stream{{File: "https://c/m.m3u8", Kind: media.KindHLS}}},
	}
	s := newTestServer(e)

	w, body := doGET(t, s, "/tv/1399?season=1&episode=5")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if body["type"] != "tv" || body["id"] != "1399" {
		t.Errorf("type/id = %v/%v", body["type"], body["id"])
	}
	if body["season"] != float64(1) || body["episode"] != float64(5) {
		t.Errorf("season/episode = %v/%v, want 1/5", body["season"], body["episode"])
	}
}

func TestTVEndpointMissingEpisode(t *testing.T) {
	e := &stubExtractor{name: "vixsrc"}
	s := newTestServer(e)

	w, body := doGET(t, s, "/tv/1399?season=1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	msg, _ := body["error"].(string)
	if msg == "" {
		t.Fatal("400 response must carry an error message")
	}
	if !strings.Contains(msg, "episode") {
		t.Errorf("error %q should cite the missing episode parameter", msg)
	}
	if e.calls.Load() != 0 {
		t.Errorf("extractor ran %d times, want 0", e.calls.Load())
	}
}

func TestTVEndpointRejectsNonPositiveNumbers(t *testing.T) {
	e := &stubExtractor{name: "vixsrc"}
	s := newTestServer(e)

	for _, path := range []string{
		"/tv/1399?season=0&episode=1",
		"/tv/1399?season=1&episode=-2",
		"/tv/1399?season=abc&episode=1",
	} {
		w, _ := doGET(t, s, path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, w.Code)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&stubExtractor{name: "vixsrc"})

	w, body := doGET(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	servers, _ := body["availableServers"].([]interface{})
	if len(servers) != 1 || servers[0] != "vixsrc" {
		t.Errorf("availableServers = %v, want [vixsrc]", body["availableServers"])
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(&stubExtractor{name: "vixsrc"})

	w, body := doGET(t, s, "/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body["error"] == nil {
		t.Error("404 response must be structured JSON")
	}
}
