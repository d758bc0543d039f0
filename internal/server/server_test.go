package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/talk-companion/internal/companion"
	"github.com/rcliao/talk-companion/internal/content"
	"github.com/rcliao/talk-companion/internal/i18n"
	"github.com/rcliao/talk-companion/internal/model"
	"github.com/rcliao/talk-companion/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	site := fstest.MapFS{
		"index.html":             {Data: []byte("<html></html>")},
		"content/en/slide1.html": {Data: []byte("<p>one</p>")},
		"content/en/slide3.html": {Data: []byte("<p>three</p>")},
	}
	cat := model.Catalog{
		{Code: "A", Slides: []int{1}, Message: "first"},
		{Code: "AB", Slides: []int{2}, Message: "second"},
		{Code: "ABC", Slides: []int{3}, Message: "third"},
	}
	c := companion.New(cat, st, content.NewFSSource(site), zerolog.Nop())
	require.NoError(t, c.Load(context.Background()))

	s := New(c, http.FileServer(http.FS(site)), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go s.Hub().Run(ctx)

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts, s
}

func post(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestUnlockFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts.URL+"/api/unlock", `{"code":"abd"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[UnlockResponse](t, resp)
	assert.Equal(t, "AB", got.Code)
	assert.Equal(t, []int{1, 2}, got.Slides)

	resp = post(t, ts.URL+"/api/unlock", `{"code":"abcd"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[UnlockResponse](t, resp)
	assert.True(t, got.Success)
	assert.Equal(t, "fuzzy", got.Result)
	assert.Equal(t, "ABC", got.Code)
	assert.Equal(t, "Success! third", got.Notice)
	assert.Equal(t, []int{1, 2, 3}, got.Slides)

	resp = post(t, ts.URL+"/api/unlock", `{"code":"XYZ"}`)
	got = decode[UnlockResponse](t, resp)
	assert.False(t, got.Success)
	assert.Equal(t, "wrong", got.Result)
	assert.Equal(t, "Oops! Wrong code. Try again.", got.Notice)

	resp = post(t, ts.URL+"/api/unlock", `{"code":"  "}`)
	got = decode[UnlockResponse](t, resp)
	assert.Equal(t, "blank", got.Result)
	assert.Empty(t, got.Notice)

	r, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	defer r.Body.Close()
	state := decode[StateResponse](t, r)
	assert.Equal(t, []int{1, 2, 3}, state.State.UnlockedSlides)
	assert.Equal(t, "Unlock", state.Strings.UnlockButton)
}

func TestUnlockBadJSON(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := post(t, ts.URL+"/api/unlock", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLinksAndSlides(t *testing.T) {
	ts, _ := newTestServer(t)
	post(t, ts.URL+"/api/unlock", `{"code":"ABC"}`)

	r, err := http.Get(ts.URL + "/api/links")
	require.NoError(t, err)
	defer r.Body.Close()
	links := decode[LinksResponse](t, r)
	assert.Equal(t, i18n.English, links.Language)
	require.Len(t, links.Links, 2)
	assert.Equal(t, 1, links.Links[0].Slide)
	assert.Equal(t, "Slide Explanation 3", links.Links[1].Label)

	r2, err := http.Get(ts.URL + "/api/slides/3")
	require.NoError(t, err)
	defer r2.Body.Close()
	body, _ := io.ReadAll(r2.Body)
	assert.Equal(t, http.StatusOK, r2.StatusCode)
	assert.Equal(t, "<p>three</p>", string(body))

	r3, err := http.Get(ts.URL + "/api/slides/2")
	require.NoError(t, err)
	defer r3.Body.Close()
	body, _ = io.ReadAll(r3.Body)
	assert.Equal(t, http.StatusNotFound, r3.StatusCode)
	assert.Contains(t, string(body), "unexpected error")

	// static content is served from the site root
	r4, err := http.Get(ts.URL + "/content/en/slide1.html")
	require.NoError(t, err)
	defer r4.Body.Close()
	assert.Equal(t, http.StatusOK, r4.StatusCode)
}

func TestForgetAndLanguage(t *testing.T) {
	ts, _ := newTestServer(t)
	post(t, ts.URL+"/api/unlock", `{"code":"AB"}`)

	resp := post(t, ts.URL+"/api/lang", `{"language":"ca-ES"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[StateResponse](t, resp)
	assert.Equal(t, i18n.Catalan, state.State.Language)
	assert.Equal(t, "Desbloca", state.Strings.UnlockButton)
	assert.Equal(t, []int{1, 2}, state.State.UnlockedSlides)

	resp = post(t, ts.URL+"/api/lang", `{"language":"ja"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/forget", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[StateResponse](t, resp)
	assert.Empty(t, state.State.UnlockedSlides)
	assert.Equal(t, i18n.Catalan, state.State.Language)
}

func TestStringsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	r, err := http.Get(ts.URL + "/api/strings?lang=ca")
	require.NoError(t, err)
	defer r.Body.Close()
	s := decode[i18n.Strings](t, r)
	assert.Equal(t, "Oblida els Codis", s.ForgetButton)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	r, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusOK, r.StatusCode)
}

func TestWebSocketPushesState(t *testing.T) {
	ts, s := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readState := func() StateResponse {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var m struct {
			Type string        `json:"type"`
			Data StateResponse `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&m))
		assert.Equal(t, "state", m.Type)
		return m.Data
	}

	greeting := readState()
	assert.Empty(t, greeting.State.UnlockedSlides)

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	post(t, ts.URL+"/api/unlock", `{"code":"A"}`)
	pushed := readState()
	assert.Equal(t, []int{1}, pushed.State.UnlockedSlides)
}
