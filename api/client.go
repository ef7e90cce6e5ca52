// Package api talks to the game backend over HTTP: game creation, the board
// snapshot, joins and starts.
// file: api/client.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"codenames-sync/logger"
	"codenames-sync/models"
)

// SessionCookie is the cookie the backend reads the session id from.
const SessionCookie = "session_id"

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 1 << 20

// Backend is the set of calls the session layer needs. *Client implements it.
type Backend interface {
	CreateGame(ctx context.Context, name string) (models.GameID, error)
	LoadBoard(ctx context.Context, gameID models.GameID) ([]models.Word, error)
	Join(ctx context.Context, gameID models.GameID, req JoinRequest) (models.GameState, error)
	Start(ctx context.Context, gameID models.GameID) error
	FetchState(ctx context.Context, gameID models.GameID) (models.GameState, error)
	UpdatesURL(gameID models.GameID) string
}

// JoinRequest is the body of PUT /games/{id}/join.
type JoinRequest struct {
	Name  string
	Color models.ColorID
	Role  models.RoleID
}

// Client is an HTTP client for the backend contract.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	sessionID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request; expiry surfaces as a NetworkError.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSessionID sets where the session cookie value comes from.
func WithSessionID(fn func() string) Option {
	return func(c *Client) { c.sessionID = fn }
}

// NewClient builds a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https, got %q", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// --------------- game directory -----------------

type createResponse struct {
	Message string        `json:"message"`
	GameID  models.GameID `json:"game_id"`
}

// CreateGame creates a game and returns its id. It is never retried: the
// endpoint is not idempotent.
func (c *Client) CreateGame(ctx context.Context, name string) (models.GameID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &models.CreationError{Name: name, Reason: "name must not be empty"}
	}

	form := url.Values{"name": {name}}
	status, body, err := c.do(ctx, http.MethodPost, "/games/", form)
	if err != nil {
		return "", &models.NetworkError{Op: "create game", Err: err}
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", &models.CreationError{Name: name, Reason: detail(status, body)}
	}

	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &models.CreationError{Name: name, Reason: "malformed response: " + err.Error()}
	}
	if resp.GameID == "" {
		return "", &models.CreationError{Name: name, Reason: "response carried no game_id"}
	}
	logger.Info.Printf("[Client.CreateGame] Created game %q with id=%s", name, resp.GameID)
	return resp.GameID, nil
}

// --------------- board snapshot -----------------

// LoadBoard fetches the word board for a game.
func (c *Client) LoadBoard(ctx context.Context, gameID models.GameID) ([]models.Word, error) {
	status, body, err := c.do(ctx, http.MethodGet, gamePath(gameID, "words"), nil)
	if err != nil {
		return nil, &models.NetworkError{Op: "load board", Err: err}
	}
	if status == http.StatusNotFound {
		return nil, &models.NotFoundError{GameID: gameID}
	}
	if status != http.StatusOK {
		return nil, &models.NetworkError{Op: "load board", Err: errors.New(detail(status, body))}
	}

	var words []models.Word
	if err := json.Unmarshal(body, &words); err != nil {
		return nil, decodeError("load board", err)
	}
	logger.Debug.Printf("[Client.LoadBoard] game=%s words=%d", gameID, len(words))
	return words, nil
}

// --------------- join / start / state -----------------

// Join asks the backend to seat this session in the (colour, role) slot.
func (c *Client) Join(ctx context.Context, gameID models.GameID, req JoinRequest) (models.GameState, error) {
	form := url.Values{
		"color_id": {strconv.Itoa(int(req.Color))},
		"role_id":  {strconv.Itoa(int(req.Role))},
		"name":     {req.Name},
	}
	status, body, err := c.do(ctx, http.MethodPut, gamePath(gameID, "join"), form)
	if err != nil {
		return models.GameState{}, &models.NetworkError{Op: "join", Err: err}
	}

	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return models.GameState{}, &models.NotFoundError{GameID: gameID}
	case http.StatusConflict:
		return models.GameState{}, &models.SlotTakenError{
			Slot:   models.Slot{Color: req.Color, Role: req.Role},
			Holder: detail(status, body),
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusForbidden, http.StatusUnauthorized:
		return models.GameState{}, &models.ValidationError{Field: "join", Reason: detail(status, body)}
	default:
		return models.GameState{}, &models.NetworkError{Op: "join", Err: errors.New(detail(status, body))}
	}

	var gs models.GameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return models.GameState{}, decodeError("join", err)
	}
	return gs, nil
}

// Start asks the backend to start the game.
func (c *Client) Start(ctx context.Context, gameID models.GameID) error {
	status, body, err := c.do(ctx, http.MethodPut, gamePath(gameID, "start"), url.Values{})
	if err != nil {
		return &models.NetworkError{Op: "start", Err: err}
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &models.NotFoundError{GameID: gameID}
	case http.StatusConflict, http.StatusForbidden:
		return &models.PreconditionError{Op: "start", Err: fmt.Errorf("%w: %s", models.ErrNotReady, detail(status, body))}
	default:
		return &models.NetworkError{Op: "start", Err: errors.New(detail(status, body))}
	}
}

// FetchState reads the current GameState; used to resynchronise after a
// reconnect or a slot conflict.
func (c *Client) FetchState(ctx context.Context, gameID models.GameID) (models.GameState, error) {
	status, body, err := c.do(ctx, http.MethodGet, gamePath(gameID, ""), nil)
	if err != nil {
		return models.GameState{}, &models.NetworkError{Op: "fetch state", Err: err}
	}
	if status == http.StatusNotFound {
		return models.GameState{}, &models.NotFoundError{GameID: gameID}
	}
	if status != http.StatusOK {
		return models.GameState{}, &models.NetworkError{Op: "fetch state", Err: errors.New(detail(status, body))}
	}
	var gs models.GameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return models.GameState{}, decodeError("fetch state", err)
	}
	return gs, nil
}

// UpdatesURL is the websocket URL of the push channel for gameID.
func (c *Client) UpdatesURL(gameID models.GameID) string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/updates/" + url.PathEscape(string(gameID))
	return u.String()
}

// --------------- helpers -----------------

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return 0, nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	if c.sessionID != nil {
		if id := c.sessionID(); id != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn.Printf("[Client.do] %s %s failed after %s: %v", method, path, time.Since(start).Round(time.Millisecond), err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, err
	}
	logger.Debug.Printf("[Client.do] %s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp.StatusCode, data, nil
}

func gamePath(gameID models.GameID, action string) string {
	p := "/games/" + url.PathEscape(string(gameID))
	if action != "" {
		p += "/" + action
	}
	return p
}

// detail extracts FastAPI-style {"detail": "..."} bodies, falling back to
// the status text.
func detail(status int, body []byte) string {
	var d struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &d); err == nil && d.Detail != "" {
		return d.Detail
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// decodeError keeps enum mismatches visible as themselves; anything else is
// a malformed response.
func decodeError(op string, err error) error {
	if errors.Is(err, models.ErrUnknownEnumValue) {
		logger.Error.Printf("[Client] %s: backend sent an unknown enum value: %v", op, err)
		return err
	}
	return &models.NetworkError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
}
