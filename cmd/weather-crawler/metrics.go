package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleMetrics fetches the current weather and writes every gauge in the
// text exposition format. Failures answer 500 with an empty body.
func (app *App) handleMetrics(c *gin.Context) {
	text, err := app.scraper.Scrape(c.Request.Context())
	if err != nil {
		app.logger.Error("failed to scrape current weather", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, app.scraper.ContentType(), []byte(text))
}
