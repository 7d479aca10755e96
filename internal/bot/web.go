/*
   YTCS - YouTube Comment Sentiment
   Copyright (C) 2025  Unbewohnte (Kasyanov Nikolay Alexeevich)

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package bot

import (
	"Unbewohnte/YTCS/internal/report"
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed web
var webFiles embed.FS

const authCookie = "auth_token"

// RenderMarkdown converts bot responses to HTML for the web console
func RenderMarkdown(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type WebMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	From    string `json:"from,omitempty"`
}

type WebClient struct {
	conn *websocket.Conn
	send chan WebMessage
}

type WebServer struct {
	bot       *Bot
	upgrader  websocket.Upgrader
	clients   map[*WebClient]bool
	mu        sync.Mutex
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewWebServer(bot *Bot) (*WebServer, error) {
	if bot.conf.Web.Password == "" {
		return nil, errors.New("web password is not set")
	}

	secret := bot.conf.Web.JWTSecret
	if secret == "" {
		// Sessions will not survive a restart
		secret = uuid.NewString()
		bot.logger.Warn("No JWT secret configured, generated a temporary one")
	}

	ttl := time.Duration(bot.conf.Web.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	ws := &WebServer{
		bot: bot,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*WebClient]bool),
		jwtSecret: []byte(secret),
		tokenTTL:  ttl,
	}
	bot.AddProgressListener(ws.SendLog)

	return ws, nil
}

func (ws *WebServer) Router() http.Handler {
	r := mux.NewRouter()

	// WebSocket endpoint
	r.HandleFunc("/ws", ws.handleWebSocket)

	r.HandleFunc("/login", ws.handleLogin).Methods("POST")

	r.HandleFunc("/download/{format}", ws.requireAuth(ws.handleDownload)).Methods("GET")
	r.HandleFunc("/api/distribution", ws.requireAuth(ws.handleDistribution)).Methods("GET")

	// Static files
	static, _ := fs.Sub(webFiles, "web")
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static)))

	return r
}

// Start serves the console until ctx is done
func (ws *WebServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ws.bot.conf.Web.Addr,
		Handler:           ws.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		ws.bot.logger.Info("Web server started", "addr", ws.bot.conf.Web.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (ws *WebServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	if username != ws.bot.conf.Web.Username || password != ws.bot.conf.Web.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, err := ws.generateJWT()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Expires:  time.Now().Add(ws.tokenTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	})

	w.WriteHeader(http.StatusOK)
}

func (ws *WebServer) authorized(r *http.Request) bool {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return false
	}

	token, err := ws.validateJWT(cookie.Value)
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	return ok && claims["username"] == ws.bot.conf.Web.Username
}

func (ws *WebServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ws.authorized(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (ws *WebServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !ws.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.bot.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	client := &WebClient{
		conn: conn,
		send: make(chan WebMessage, 256),
	}
	ws.addClient(client)

	go client.writePump()
	go client.readPump(ws)
}

func (ws *WebServer) addClient(client *WebClient) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.clients[client] = true
	ws.bot.logger.Debug("Web client connected")
}

func (ws *WebServer) removeClient(client *WebClient) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.dropClient(client)
}

// dropClient expects ws.mu to be held
func (ws *WebServer) dropClient(client *WebClient) {
	if _, ok := ws.clients[client]; ok {
		delete(ws.clients, client)
		close(client.send)
		ws.bot.logger.Debug("Web client disconnected")
	}
}

func (ws *WebServer) broadcast(msg WebMessage) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for client := range ws.clients {
		select {
		case client.send <- msg:
		default:
			// Too slow to keep up
			ws.dropClient(client)
		}
	}
}

func (c *WebClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		err := c.conn.WriteJSON(msg)
		if err != nil {
			break
		}
	}
}

func (c *WebClient) readPump(ws *WebServer) {
	defer func() {
		ws.removeClient(c)
		c.conn.Close()
	}()

	for {
		_, msgBytes, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg WebMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "command":
			go ws.handleCommand(msg.Content)
		}
	}
}

// downloads maps a format to the export file the console may hand out
func (ws *WebServer) downloads() map[string]string {
	exportConf := ws.bot.conf.Export
	files := map[string]string{
		"csv":  exportConf.Path(exportConf.CSVFile),
		"json": exportConf.Path(exportConf.JSONFile),
		"db":   exportConf.Path(exportConf.SQLiteFile),
		"xlsx": exportConf.Path(exportConf.XLSXFile),
	}
	if ws.bot.conf.LogsFile != "" {
		files["logs"] = ws.bot.conf.LogsFile
	}

	return files
}

func (ws *WebServer) handleCommand(cmd string) {
	ws.bot.logger.Info("Web command", "command", cmd)

	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	// Links instead of file names
	if strings.ToLower(strings.TrimPrefix(parts[0], "/")) == "files" {
		ws.SendResponse(ws.filesMarkdown())
		return
	}

	response, err := ws.bot.Execute(cmd)
	if err != nil {
		var unknown *unknownCommandError
		if errors.As(err, &unknown) {
			ws.SendLog(ws.bot.suggestionsMessage(unknown))
			return
		}
		ws.SendLog("Erro ao executar o comando: " + err.Error())
		return
	}

	ws.SendResponse(response)
}

func (ws *WebServer) filesMarkdown() string {
	var out strings.Builder
	for _, format := range []string{"csv", "json", "db", "xlsx", "logs"} {
		path, ok := ws.downloads()[format]
		if !ok {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		out.WriteString(fmt.Sprintf("- [%s](/download/%s)\n", filepath.Base(path), format))
	}

	if out.Len() == 0 {
		return "Nenhum arquivo exportado ainda."
	}
	return "*Arquivos para download:*\n\n" + out.String()
}

func (ws *WebServer) SendResponse(result string) {
	html, err := RenderMarkdown(result)
	if err != nil {
		html = strings.ReplaceAll(result, "\n", "<br>")
	}

	ws.broadcast(WebMessage{
		Type:    "analysis",
		Content: html,
	})
}

// SendLog sends log messages to web clients
func (ws *WebServer) SendLog(log string) {
	ws.broadcast(WebMessage{
		Type:    "log",
		Content: log,
	})
}

func (ws *WebServer) generateJWT() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": ws.bot.conf.Web.Username,
		"exp":      time.Now().Add(ws.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
		"jti":      uuid.New().String(),
	})

	return token.SignedString(ws.jwtSecret)
}

func (ws *WebServer) validateJWT(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ws.jwtSecret, nil
	})
}

func (ws *WebServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	path, ok := ws.downloads()[format]
	if !ok {
		http.Error(w, "Unknown format", http.StatusNotFound)
		return
	}

	if _, err := os.Stat(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}

func (ws *WebServer) handleDistribution(w http.ResponseWriter, r *http.Request) {
	if ws.bot.store == nil {
		http.Error(w, "SQLite export is disabled", http.StatusNotFound)
		return
	}

	polarities, err := ws.bot.store.Polarities(r.Context(), r.URL.Query().Get("video_id"))
	if err != nil {
		ws.bot.logger.Error("Failed to read polarities", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report.Summarize(polarities))
}
