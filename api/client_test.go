// file: api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenames-sync/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, append([]Option{WithSessionID(func() string { return "sess-1" })}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestCreateGame_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/games/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Test", r.PostForm.Get("name"))

		cookie, err := r.Cookie(SessionCookie)
		require.NoError(t, err)
		assert.Equal(t, "sess-1", cookie.Value)

		fmt.Fprint(w, `{"message":"Successfully created the game 'Test'.","game_id":42}`)
	})

	id, err := c.CreateGame(context.Background(), "Test")
	require.NoError(t, err)
	assert.Equal(t, models.GameID("42"), id)
}

func TestCreateGame_EmptyNameNeverSent(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.CreateGame(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrCreation)
	assert.False(t, called)
}

func TestCreateGame_RejectedIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"detail":"The game Test already exists"}`)
	})

	_, err := c.CreateGame(context.Background(), "Test")
	require.ErrorIs(t, err, models.ErrCreation)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, 1, calls)
}

func TestLoadBoard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/games/42/words":
			words := make([]map[string]any, models.BoardSize)
			for i := range words {
				words[i] = map[string]any{"word": fmt.Sprintf("w%d", i), "color": i%4 + 1}
			}
			_ = json.NewEncoder(w).Encode(words)
		default:
			http.NotFound(w, r)
		}
	})

	words, err := c.LoadBoard(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, words, models.BoardSize)
	assert.Equal(t, models.Word{Text: "w0", Color: models.Red}, words[0])

	_, err = c.LoadBoard(context.Background(), "7")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLoadBoard_UnknownColorIsSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"word":"x","color":5}]`)
	})

	_, err := c.LoadBoard(context.Background(), "1")
	assert.ErrorIs(t, err, models.ErrUnknownEnumValue)
	assert.NotErrorIs(t, err, models.ErrNetwork)
}

func TestJoin_SendsFormAndDecodesState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/games/42/join", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1", r.PostForm.Get("color_id"))
		assert.Equal(t, "2", r.PostForm.Get("role_id"))
		assert.Equal(t, "Bob", r.PostForm.Get("name"))
		fmt.Fprint(w, `{"game_id":42,"players":[{"name":"Bob","color_id":1,"role_id":2,"session_id":"sess-1"}],"started":false,"version":3}`)
	})

	gs, err := c.Join(context.Background(), "42", JoinRequest{Name: "Bob", Color: models.Red, Role: models.Spymaster})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), gs.Version)
	require.Len(t, gs.Players, 1)
	assert.Equal(t, "Bob", gs.Players[0].Name)
}

func TestJoin_ErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusConflict, models.ErrSlotTaken},
		{http.StatusBadRequest, models.ErrValidation},
		{http.StatusNotFound, models.ErrNotFound},
		{http.StatusInternalServerError, models.ErrNetwork},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"detail":"nope"}`)
			})
			_, err := c.Join(context.Background(), "1", JoinRequest{Name: "A", Color: models.Blue, Role: models.Agent})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestStart_NotReadyIsPrecondition(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"detail":"not all slots are filled"}`)
	})
	err := c.Start(context.Background(), "1")
	assert.ErrorIs(t, err, models.ErrNotReady)
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.FetchState(context.Background(), "1")
	assert.ErrorIs(t, err, models.ErrNetwork)
}

func TestUpdatesURL(t *testing.T) {
	c, err := NewClient("https://example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/api/updates/42", c.UpdatesURL("42"))

	c, err = NewClient("http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/updates/42", c.UpdatesURL("42"))
}

func TestNewClient_RejectsBadScheme(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)
}
