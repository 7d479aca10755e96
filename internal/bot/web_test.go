package bot

import (
	"Unbewohnte/YTCS/internal/report"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebServer(t *testing.T) (*WebServer, *httptest.Server) {
	t.Helper()

	bot, _, _ := newTestBot(t)
	bot.conf.Web.Password = "s3cret"
	bot.conf.Web.JWTSecret = "jwt-secret"

	ws, err := NewWebServer(bot)
	require.NoError(t, err)

	server := httptest.NewServer(ws.Router())
	t.Cleanup(server.Close)
	return ws, server
}

func login(t *testing.T, server *httptest.Server, password string) *http.Response {
	t.Helper()

	response, err := http.PostForm(server.URL+"/login", url.Values{
		"username": {"admin"},
		"password": {password},
	})
	require.NoError(t, err)
	response.Body.Close()
	return response
}

func authCookieFrom(t *testing.T, response *http.Response) *http.Cookie {
	t.Helper()

	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookie {
			return cookie
		}
	}
	t.Fatal("no auth cookie")
	return nil
}

func TestWebServerNeedsPassword(t *testing.T) {
	bot, _, _ := newTestBot(t)
	_, err := NewWebServer(bot)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	_, server := newTestWebServer(t)

	assert.Equal(t, http.StatusUnauthorized, login(t, server, "wrong").StatusCode)

	response := login(t, server, "s3cret")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	cookie := authCookieFrom(t, response)
	assert.True(t, cookie.HttpOnly)
}

func TestDistributionRequiresAuth(t *testing.T) {
	_, server := newTestWebServer(t)

	response, err := http.Get(server.URL + "/api/distribution")
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	cookie := authCookieFrom(t, login(t, server, "s3cret"))
	request, err := http.NewRequest(http.MethodGet, server.URL+"/api/distribution?video_id=abc", nil)
	require.NoError(t, err)
	request.AddCookie(cookie)

	response, err = http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	var summary report.Summary
	require.NoError(t, json.NewDecoder(response.Body).Decode(&summary))
	assert.Equal(t, report.Distribution{Negative: 1, Neutral: 1, Positive: 2}, summary.Distribution)
	assert.Len(t, summary.Histogram.Counts, report.HistogramBins)
	assert.InDelta(t, 50.0, summary.Positive, 1e-9)
}

func TestDownload(t *testing.T) {
	ws, server := newTestWebServer(t)
	exportConf := ws.bot.conf.Export
	require.NoError(t, os.WriteFile(exportConf.Path(exportConf.CSVFile), []byte("source_id\n"), 0644))

	cookie := authCookieFrom(t, login(t, server, "s3cret"))
	get := func(path string) *http.Response {
		request, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
		require.NoError(t, err)
		request.AddCookie(cookie)
		response, err := http.DefaultClient.Do(request)
		require.NoError(t, err)
		return response
	}

	response := get("/download/csv")
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "source_id\n", string(body))
	assert.Contains(t, response.Header.Get("Content-Disposition"), "comentarios.csv")

	response = get("/download/json")
	response.Body.Close()
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	response = get("/download/passwd")
	response.Body.Close()
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	assert.Contains(t, ws.filesMarkdown(), "[comentarios.csv](/download/csv)")
}

func TestWebSocketCommand(t *testing.T) {
	_, server := newTestWebServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, response, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	cookie := authCookieFrom(t, login(t, server, "s3cret"))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Cookie": {cookie.String()}})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(WebMessage{Type: "command", Content: "help setmax"}))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg WebMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "analysis", msg.Type)
	assert.Contains(t, msg.Content, "<code>setmax 500</code>")

	require.NoError(t, conn.WriteJSON(WebMessage{Type: "command", Content: "stast"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "log", msg.Type)
	assert.Contains(t, msg.Content, "stats")
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("*Comentários:* 4\n\n- Negativo: 1")
	require.NoError(t, err)
	assert.Contains(t, html, "<em>Comentários:</em>")
	assert.Contains(t, html, "<li>Negativo: 1</li>")

	html, err = RenderMarkdown("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestIndexIsServed(t *testing.T) {
	_, server := newTestWebServer(t)

	response, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer response.Body.Close()
	body, _ := io.ReadAll(response.Body)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), "<title>YTCS</title>")
}
