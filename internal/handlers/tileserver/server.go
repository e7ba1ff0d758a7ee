package tileserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/gdal"
	"terrain-desktop/internal/sources"
)

// ResolveFunc looks up the tile access for a source key
type ResolveFunc func(key string) (sources.Config, bool)

// Server is the local interop server. It hands GDAL descriptors and resolved
// source configs to tools that cannot call the desktop bindings.
type Server struct {
	resolve   ResolveFunc
	serverURL string
	server    *http.Server
}

// NewServer creates a new interop server instance
func NewServer(resolve ResolveFunc) *Server {
	return &Server{resolve: resolve}
}

// GetServerURL returns the server base URL, empty before Start
func (s *Server) GetServerURL() string {
	return s.serverURL
}

// VRTURL returns the URL serving the descriptor for a source
func (s *Server) VRTURL(key string) string {
	if s.serverURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/vrt/%s.xml", s.serverURL, key)
}

// corsMiddleware adds CORS headers to allow requests from Wails frontend
// On macOS/Linux, Wails uses wails://wails origin which requires CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/vrt/", s.handleVRT)
	mux.HandleFunc("/resolve/", s.handleResolve)
	mux.HandleFunc("/translate/", s.handleTranslate)
	return corsMiddleware(mux)
}

// Start listens on a random loopback port
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start interop server: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	s.serverURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	log.Printf("[Interop] Server started on %s", s.serverURL)

	s.server = &http.Server{
		Handler: s.Handler(),
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[Interop] Server stopped: %v", err)
		}
	}()

	return nil
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleVRT serves the GDAL_WMS descriptor
// URL format: /vrt/{key}.xml
func (s *Server) handleVRT(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/vrt/"), ".xml")
	if !ok || key == "" || strings.Contains(key, "/") {
		http.Error(w, "Invalid URL format. Expected: /vrt/{key}.xml", http.StatusBadRequest)
		return
	}

	cfg, found := s.resolve(key)
	if !found {
		http.Error(w, fmt.Sprintf("Unknown source: %s", key), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(gdal.BuildVirtualRasterXML(cfg.TileURL, cfg.TileSize)))
}

// handleResolve serves the resolved source config as JSON
// URL format: /resolve/{key}
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/resolve/")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "Invalid URL format. Expected: /resolve/{key}", http.StatusBadRequest)
		return
	}

	cfg, found := s.resolve(key)
	if !found {
		http.Error(w, fmt.Sprintf("Unknown source: %s", key), http.StatusNotFound)
		return
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		log.Printf("[Interop] Failed to encode config for %s: %v", key, err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleTranslate serves the gdal_translate command for an area
// URL format: /translate/{key}?bbox={west},{south},{east},{north}&max={pixels}
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/translate/")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "Invalid URL format. Expected: /translate/{key}?bbox=w,s,e,n", http.StatusBadRequest)
		return
	}

	b, err := common.ParseBounds(r.URL.Query().Get("bbox"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxPixels := 4096
	if v := r.URL.Query().Get("max"); v != "" {
		maxPixels, err = strconv.Atoi(v)
		if err != nil || maxPixels <= 0 {
			http.Error(w, "Invalid max output size", http.StatusBadRequest)
			return
		}
	}

	cfg, found := s.resolve(key)
	if !found {
		http.Error(w, fmt.Sprintf("Unknown source: %s", key), http.StatusNotFound)
		return
	}

	descriptor := gdal.BuildVirtualRasterXML(cfg.TileURL, cfg.TileSize)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(gdal.BuildTranslateCommand(descriptor, b, maxPixels)))
}
