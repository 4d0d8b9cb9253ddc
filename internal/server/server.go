package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/arlaunch/arlaunch/internal/utils"
	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/store"
)

//go:embed web
var WebFS embed.FS

type Server struct {
	DB       *store.DB
	Username string
	Password string
	Gates    armode.Gates
}

func New(db *store.DB, user, pass string) *Server {
	return &Server{
		DB:       db,
		Username: user,
		Password: pass,
	}
}

// Handler assembles the API and static routes.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))
	mux.HandleFunc("GET /api/history", s.basicAuth(s.handleHistory))
	mux.HandleFunc("GET /api/profiles", s.basicAuth(s.handleProfiles))
	mux.HandleFunc("POST /api/resolve", s.basicAuth(s.handleResolve))
	mux.HandleFunc("POST /api/quicklook", s.basicAuth(s.handleQuickLook))
	mux.HandleFunc("POST /api/sceneviewer", s.basicAuth(s.handleSceneViewer))
	mux.HandleFunc("POST /api/scan", s.basicAuth(s.handleScan))

	// Static Files
	webRoot, err := fs.Sub(WebFS, "web")
	if err != nil {
		return nil, err
	}
	fileServer := http.FileServer(http.FS(webRoot))
	mux.Handle("/", s.basicAuthMiddlewareForStatic(fileServer))

	return mux, nil
}

func (s *Server) Start(addr string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	utils.Log.Info("Starting server on ", addr)
	return http.ListenAndServe(addr, handler)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) basicAuthMiddlewareForStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
