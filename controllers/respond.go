package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthhub/household_backend/errs"
)

// respondError translates a service error into its HTTP status and a JSON
// error body. Unclassified errors are logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	status := errs.Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
