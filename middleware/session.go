// Package middleware provides request filters for the reference backend.
// File: middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codenames-sync/logger"
)

// SessionCookie carries the anonymous client identity.
const SessionCookie = "session_id"

// sessionKey is where SessionRequired stores the id in the gin context.
const sessionKey = "sessionID"

// SessionRequired rejects requests that carry no session_id cookie.
// Usage:
//
//	games.PUT("/:id/join", middleware.SessionRequired, ctrl.Join)
func SessionRequired(c *gin.Context) {
	id, err := c.Cookie(SessionCookie)
	if err != nil || id == "" {
		logger.Warn.Printf("[SessionRequired] %s %s without a session cookie", c.Request.Method, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not determine session id"})
		return
	}
	c.Set(sessionKey, id)
	c.Next()
}

// SessionID returns the id SessionRequired stored, or the raw cookie on
// routes where the session is optional.
func SessionID(c *gin.Context) string {
	if id := c.GetString(sessionKey); id != "" {
		return id
	}
	id, _ := c.Cookie(SessionCookie)
	return id
}
