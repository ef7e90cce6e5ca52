// Package controllers file: controllers/game_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"codenames-sync/logger"
	"codenames-sync/middleware"
	"codenames-sync/models"
	"codenames-sync/services"
	"codenames-sync/websocket"
)

const defaultQRSize = 256

// GameController serves the game endpoints.
type GameController struct {
	Games     services.GameServiceInterface
	Hub       *websocket.Hub
	PublicURL string
}

// NewGameController creates a GameController.
func NewGameController(games services.GameServiceInterface, hub *websocket.Hub, publicURL string) *GameController {
	logger.Debug.Println("[NewGameController] Initializing GameController")
	return &GameController{Games: games, Hub: hub, PublicURL: strings.TrimSuffix(publicURL, "/")}
}

// Health answers load balancer checks.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// CreateGame handles POST /games/.
func (gc *GameController) CreateGame(c *gin.Context) {
	name := c.PostForm("name")
	id, err := gc.Games.CreateGame(name, middleware.SessionID(c))
	if err != nil {
		logger.Warn.Printf("[GameController.CreateGame] %v", err)
		if errors.Is(err, models.ErrCreation) && strings.TrimSpace(name) != "" {
			abort(c, http.StatusForbidden, err)
			return
		}
		abort(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully created the game '%s'.", strings.TrimSpace(name)),
		"game_id": wireID(id),
	})
}

// GetState handles GET /games/:id.
func (gc *GameController) GetState(c *gin.Context) {
	gs, err := gc.Games.State(gameID(c))
	if err != nil {
		gc.fail(c, "GetState", err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

// GetWords handles GET /games/:id/words.
func (gc *GameController) GetWords(c *gin.Context) {
	words, err := gc.Games.Words(gameID(c))
	if err != nil {
		gc.fail(c, "GetWords", err)
		return
	}
	c.JSON(http.StatusOK, words)
}

// Join handles PUT /games/:id/join with form fields color_id, role_id and
// name.
func (gc *GameController) Join(c *gin.Context) {
	color, cerr := strconv.Atoi(c.PostForm("color_id"))
	role, rerr := strconv.Atoi(c.PostForm("role_id"))
	if cerr != nil || rerr != nil {
		abort(c, http.StatusBadRequest, errors.New("color_id and role_id must be integers"))
		return
	}

	gs, err := gc.Games.Join(gameID(c), middleware.SessionID(c), c.PostForm("name"), models.ColorID(color), models.RoleID(role))
	if err != nil {
		gc.fail(c, "Join", err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

// Start handles PUT /games/:id/start.
func (gc *GameController) Start(c *gin.Context) {
	gs, err := gc.Games.Start(gameID(c), middleware.SessionID(c))
	if err != nil {
		gc.fail(c, "Start", err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

// QRCode handles GET /games/:id/qrcode: a PNG of the game's share link.
func (gc *GameController) QRCode(c *gin.Context) {
	id := gameID(c)
	if _, err := gc.Games.State(id); err != nil {
		gc.fail(c, "QRCode", err)
		return
	}

	size := defaultQRSize
	if s := c.Query("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			abort(c, http.StatusBadRequest, errors.New("size must be an integer"))
			return
		}
		size = n
	}

	png, err := services.GenerateQRCode(gc.PublicURL+"/games/"+string(id), size, nil)
	if err != nil {
		logger.Error.Printf("[GameController.QRCode] game=%s: %v", id, err)
		abort(c, http.StatusBadRequest, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// Updates handles GET /updates/:id by upgrading to a websocket.
func (gc *GameController) Updates(c *gin.Context) {
	gc.Hub.ServeWs(c.Writer, c.Request, models.GameID(c.Param("id")))
}

// fail maps service errors onto status codes.
func (gc *GameController) fail(c *gin.Context, op string, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrSlotTaken), errors.Is(err, models.ErrNotReady):
		status = http.StatusConflict
	case errors.Is(err, models.ErrValidation), errors.Is(err, services.ErrGameStarted):
		status = http.StatusForbidden
	}
	logger.Warn.Printf("[GameController.%s] %d: %v", op, status, err)
	abort(c, status, err)
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
}

func gameID(c *gin.Context) models.GameID {
	return models.GameID(c.Param("id"))
}

// wireID sends numeric ids as numbers.
func wireID(id models.GameID) any {
	if n, err := strconv.Atoi(string(id)); err == nil {
		return n
	}
	return string(id)
}
