// file: controllers/router.go
package controllers

import (
	"github.com/gin-gonic/gin"

	"codenames-sync/middleware"
)

// NewRouter registers every route on a fresh engine.
func NewRouter(gc *GameController) *gin.Engine {
	router := gin.Default()

	router.GET("/health", Health)

	router.POST("/games/", gc.CreateGame)
	games := router.Group("/games/:id")
	{
		games.GET("", gc.GetState)
		games.GET("/words", gc.GetWords)
		games.GET("/qrcode", gc.QRCode)
		games.PUT("/join", middleware.SessionRequired, gc.Join)
		games.PUT("/start", middleware.SessionRequired, gc.Start)
	}
	router.GET("/updates/:id", gc.Updates)
	return router
}
