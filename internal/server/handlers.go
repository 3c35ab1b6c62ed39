package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"minnow/internal/extract"
	"minnow/internal/media"
)

func (s *Server) handleMovie(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing id parameter"})
		return
	}

	req := media.StreamRequest{ContentID: id, Type: media.Movie}
	s.runExtraction(c, req, c.DefaultQuery("server", extract.SelectorAll))
}

func (s *Server) handleTV(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing id parameter"})
		return
	}

	seasonStr := c.Query("season")
	episodeStr := c.Query("episode")
	if seasonStr == "" || episodeStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing season or episode parameters"})
		return
	}

	season, err := strconv.Atoi(seasonStr)
	if err != nil || season <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "season must be a positive integer"})
		return
	}
	episode, err := strconv.Atoi(episodeStr)
	if err != nil || episode <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "episode must be a positive integer"})
		return
	}

	req := media.StreamRequest{ContentID: id, Type: media.TV, Season: season, Episode: episode}
	s.runExtraction(c, req, c.DefaultQuery("server", extract.SelectorAll))
}

// runExtraction delegates to the orchestrator and shapes the aggregated
// response: one sub-object per source keyed by source name, plus the
// derived counts. Orchestrator validation failures map to 400.
func (s *Server) runExtraction(c *gin.Context, req media.StreamRequest, selector string) {
	agg, err := s.orch.Run(c.Request.Context(), req, selector)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"type":  req.Type,
		"id":    req.ContentID,
		"query": gin.H{"server": selector},
	}
	if req.Type == media.TV {
		resp["season"] = req.Season
		resp["episode"] = req.Episode
	}

	for _, res := range agg.Results {
		resp[res.Source] = res.AsSourceResult()
	}
	resp["totalServersWithStreams"] = agg.SourcesWithStreams
	resp["totalStreamsFound"] = agg.TotalStreams

	s.log.WithFields(logrus.Fields{
		"request": req.Label(),
		"server":  selector,
		"streams": agg.TotalStreams,
	}).Debug("extraction complete")

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"availableServers": s.registry.Names(),
		"endpoints": gin.H{
			"movie":  "/movie/:id?server=" + selectorHint(s.registry),
			"tv":     "/tv/:id?season=1&episode=1&server=" + selectorHint(s.registry),
			"health": "/health",
			"root":   "/",
		},
	})
}

func (s *Server) handleDocs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "minnow",
		"description": "Stream extraction API: resolves movie and TV identifiers into playable HLS manifest URLs.",
		"endpoints": gin.H{
			"GET /movie/:id": gin.H{
				"description": "Extract streams for a movie by TMDB id",
				"query":       gin.H{"server": "source name or all (default all)"},
			},
			"GET /tv/:id": gin.H{
				"description": "Extract streams for a TV episode by TMDB id",
				"query": gin.H{
					"season":  "season number (required)",
					"episode": "episode number (required)",
					"server":  "source name or all (default all)",
				},
			},
			"GET /health": "Health check with available sources",
		},
		"servers": s.registry.Names(),
		"quickStart": []string{
			"GET /movie/550",
			"GET /movie/550?server=vixsrc",
			"GET /tv/1399?season=1&episode=1",
		},
		"notes": gin.H{
			"headers": "Forward each stream's headers map unmodified when fetching the manifest; the origin rejects requests without them.",
			"errors":  "A failing source reports its error in its own sub-object and never affects the others.",
		},
	})
}

func (s *Server) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Not found",
		"message": "Visit the root endpoint for documentation",
	})
}

func selectorHint(r *extract.Registry) string {
	return "all|" + strings.Join(r.Names(), "|")
}
