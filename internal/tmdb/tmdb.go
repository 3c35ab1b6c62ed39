// Package tmdb is a thin client for The Movie Database API, used by
// the CLI to resolve titles and episode names for display.
package tmdb

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"minnow/internal/httputil"
	"minnow/internal/media"
)

const defaultBase = "https://api.themoviedb.org/3"

// Client is an authenticated TMDB API client.
type Client struct {
	base   string
	apiKey string
	client *http.Client
}

// NewClient creates a TMDB client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		base:   defaultBase,
		apiKey: apiKey,
		client: httputil.NewClient(httputil.DefaultTimeout),
	}
}

// endpoint builds a full API URL, appending api_key to whatever query
// string the path already carries.
func (c *Client) endpoint(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.base + path + sep + "api_key=" + url.QueryEscape(c.apiKey)
}

func (c *Client) get(path string, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("TMDB API key not configured (set tmdb_api_key or TMDB_API_KEY)")
	}

	body, err := httputil.GetJSON(c.client, c.endpoint(path))
	if err != nil {
		return fmt.Errorf("TMDB request failed: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing TMDB response: %w", err)
	}
	return nil
}

// Title is one movie or TV entry as TMDB returns it. Movies carry
// Title/ReleaseDate, shows carry Name/FirstAirDate.
type Title struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	MediaType    string `json:"media_type"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
}

// Type maps TMDB's media_type onto ours.
func (t Title) Type() media.MediaType {
	if t.MediaType == "tv" || (t.Name != "" && t.Title == "") {
		return media.TV
	}
	return media.Movie
}

// DisplayTitle formats a title with its year for pickers and logs.
func (t Title) DisplayTitle() string {
	name := t.Title
	if name == "" {
		name = t.Name
	}

	date := t.ReleaseDate
	if date == "" {
		date = t.FirstAirDate
	}
	if len(date) >= 4 {
		return fmt.Sprintf("%s (%s)", name, date[:4])
	}
	return name
}

// SearchMulti searches movies and TV shows by free text. Person and
// other result types are filtered out.
func (c *Client) SearchMulti(query string) ([]Title, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	var resp struct {
		Results []Title `json:"results"`
	}
	if err := c.get("/search/multi?query="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}

	var out []Title
	for _, t := range resp.Results {
		if t.MediaType == "movie" || t.MediaType == "tv" {
			out = append(out, t)
		}
	}
	return out, nil
}

// Movie fetches one movie by TMDB ID.
func (c *Client) Movie(id string) (*Title, error) {
	if err := httputil.ValidateNumericID(id); err != nil {
		return nil, fmt.Errorf("invalid movie ID: %w", err)
	}

	var t Title
	if err := c.get("/movie/"+id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TV fetches one show by TMDB ID.
func (c *Client) TV(id string) (*Title, error) {
	if err := httputil.ValidateNumericID(id); err != nil {
		return nil, fmt.Errorf("invalid show ID: %w", err)
	}

	var t Title
	if err := c.get("/tv/"+id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// EpisodeInfo is the subset of episode metadata the CLI displays.
type EpisodeInfo struct {
	Name          string `json:"name"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
}

// Episode fetches metadata for one episode of a show.
func (c *Client) Episode(showID string, season, episode int) (*EpisodeInfo, error) {
	if err := httputil.ValidateNumericID(showID); err != nil {
		return nil, fmt.Errorf("invalid show ID: %w", err)
	}
	if season <= 0 || episode <= 0 {
		return nil, fmt.Errorf("season and episode must be positive")
	}

	path := "/tv/" + showID + "/season/" + strconv.Itoa(season) + "/episode/" + strconv.Itoa(episode)
	var info EpisodeInfo
	if err := c.get(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
