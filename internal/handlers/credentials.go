package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IssueCredentials proxies a GET to the configured upstream credential
// service (typically a TURN REST endpoint) and relays its JSON body
// verbatim. The proxy holds no state and knows nothing about rooms.
//
// Status mapping lets callers tell "try later" from "misconfigured
// deployment": 404 when no upstream is configured, 502 when the
// upstream answers with a non-success status, 500 when the upstream
// cannot be reached at all. Responses are ephemeral credentials, so
// callers are told not to cache them.
func IssueCredentials(upstreamURL string, timeout time.Duration) gin.HandlerFunc {
	client := &http.Client{Timeout: timeout}

	return func(c *gin.Context) {
		if upstreamURL == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "credential upstream not configured"})
			return
		}

		target := upstreamURL
		if raw := c.Request.URL.RawQuery; raw != "" {
			target += "?" + raw
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build upstream request"})
			return
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Error().Err(err).Msg("credential upstream unreachable")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "credential upstream unreachable"})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			log.Warn().Int("status", resp.StatusCode).Msg("credential upstream rejected request")
			c.JSON(http.StatusBadGateway, gin.H{"error": "credential upstream rejected request"})
			return
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upstream response"})
			return
		}

		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "application/json", body)
	}
}
