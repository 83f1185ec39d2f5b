// Package devserver serves the browser client during development: static
// files, the game API (proxied or mocked) and a live-reload socket that
// tells open pages to reload when the static tree changes.
package devserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/game/mockapi"
)

// ReloadPath is the live-reload WebSocket endpoint.
const ReloadPath = "/__livereload"

// debounceDelay collapses bursts of file events into one reload.
const debounceDelay = 100 * time.Millisecond

// Options configures a Server.
type Options struct {
	// Static is the directory served at /.
	Static string
	// APIURL is the game API the /api prefix is proxied to. Ignored with Mock.
	APIURL    string
	Mock      bool
	MockDelay time.Duration
	Logger    logrus.FieldLogger
}

// Server is the development HTTP handler.
type Server struct {
	opts     Options
	log      logrus.FieldLogger
	mux      *http.ServeMux
	api      http.Handler
	upgrader websocket.Upgrader

	wsMutex   sync.RWMutex
	wsClients map[*websocket.Conn]bool
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	s := &Server{
		opts:      opts,
		log:       opts.Logger,
		wsClients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			// Allow all origins in dev mode
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	if opts.Mock {
		s.api = mockapi.New(mockapi.WithDelay(opts.MockDelay), mockapi.WithLogger(s.log))
	} else {
		target, err := url.Parse(opts.APIURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid API URL %q", opts.APIURL)
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.WithError(err).WithField("path", r.URL.Path).Warn("game API unreachable")
			http.Error(w, "game API unreachable", http.StatusBadGateway)
		}
		s.api = proxy
	}

	s.mux = http.NewServeMux()
	s.mux.Handle(game.APIPrefix+"/", s.api)
	s.mux.HandleFunc(ReloadPath, s.handleWebSocket)
	s.mux.HandleFunc("/", s.serveStatic)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Clients returns the number of connected live-reload sockets.
func (s *Server) Clients() int {
	s.wsMutex.RLock()
	defer s.wsMutex.RUnlock()
	return len(s.wsClients)
}

// Watch starts watching the static tree and returns once the watcher is in
// place. Changes are announced as RELOAD until ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	err = filepath.Walk(s.opts.Static, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != s.opts.Static && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	go s.watchFiles(ctx, watcher)
	return nil
}

func (s *Server) watchFiles(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}
	var changed []string

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
				}
			}
			changed = append(changed, event.Name)
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("watcher error")

		case <-debounce.C:
			if len(changed) == 0 {
				continue
			}
			s.log.WithField("files", len(changed)).Info("static files changed, reloading pages")
			changed = nil
			s.Notify("reload", nil)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade error")
		return
	}
	defer conn.Close()

	s.wsMutex.Lock()
	s.wsClients[conn] = true
	s.wsMutex.Unlock()

	defer func() {
		s.wsMutex.Lock()
		delete(s.wsClients, conn)
		s.wsMutex.Unlock()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.WithError(err).Debug("websocket closed")
			}
			return
		}
		switch msg["type"] {
		case "HELLO":
			s.wsMutex.Lock()
			err := conn.WriteJSON(map[string]interface{}{"type": "ACK"})
			s.wsMutex.Unlock()
			if err != nil {
				return
			}
		default:
			s.log.WithField("type", msg["type"]).Debug("unknown websocket message")
		}
	}
}

// Notify sends {"type": MSGTYPE, ...data} to every live-reload client.
func (s *Server) Notify(msgType string, data map[string]interface{}) {
	message := map[string]interface{}{
		"type": strings.ToUpper(msgType),
	}
	for k, v := range data {
		message[k] = v
	}

	// Writes are serialised by the write lock; gorilla allows one writer.
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	for client := range s.wsClients {
		if err := client.WriteJSON(message); err != nil {
			s.log.WithError(err).Warn("failed to send message to client")
		}
	}
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(s.opts.Static, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	content, err := os.ReadFile(filePath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	switch filepath.Ext(filePath) {
	case ".html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case ".js":
		w.Header().Set("Content-Type", "application/javascript")
	case ".css":
		w.Header().Set("Content-Type", "text/css")
	case ".wasm":
		w.Header().Set("Content-Type", "application/wasm")
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(content)
}
