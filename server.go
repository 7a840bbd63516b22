package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/rodmaze/api"
	"github.com/wricardo/mcp-training/rodmaze/game/cache"
	"github.com/wricardo/mcp-training/rodmaze/game/config"
	"github.com/wricardo/mcp-training/rodmaze/game/service"
	"github.com/wricardo/mcp-training/rodmaze/game/session"
	"github.com/wricardo/mcp-training/rodmaze/settings"
	"github.com/wricardo/mcp-training/rodmaze/transport/mcp"
	"github.com/wricardo/mcp-training/rodmaze/transport/websocket"
)

// services is everything the transports share
type services struct {
	maze     service.MazeService
	configs  *config.Manager
	sessions *session.Manager
	cache    cache.Cache
}

// Close saves sessions and releases the cache
func (s *services) Close() {
	if s.sessions != nil {
		if err := s.sessions.SaveAllSessions(); err != nil {
			log.Warn("Failed to save sessions", "err", err)
		}
	}
	if err := s.cache.Close(); err != nil {
		log.Warn("Failed to close cache", "err", err)
	}
}

// openStores opens the maze catalog and the solve cache shared by every
// command that builds a maze service.
func openStores(ctx context.Context, s *settings.Settings) (*config.Manager, cache.Cache, error) {
	configs, err := config.NewManager(s.Server.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	c, err := cache.New(ctx, cache.Options{
		Backend:       s.Cache.Backend,
		Dir:           s.Cache.Dir,
		RedisAddr:     s.Cache.RedisAddr,
		RedisPassword: s.Cache.RedisPassword,
		RedisDB:       s.Cache.RedisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open solve cache: %w", err)
	}
	return configs, c, nil
}

// newSolveServices wires the catalog and solve cache without session persistence
func newSolveServices(ctx context.Context, s *settings.Settings) (*services, error) {
	configs, c, err := openStores(ctx, s)
	if err != nil {
		return nil, err
	}

	return &services{
		maze:    service.NewMazeService(session.NewManager(), configs, service.WithCache(c, s.Cache.TTL.Duration)),
		configs: configs,
		cache:   c,
	}, nil
}

// newServices wires catalog, persisted sessions, cache and the maze service,
// and starts the session housekeeping goroutines bound to ctx.
func newServices(ctx context.Context, s *settings.Settings) (*services, error) {
	configs, c, err := openStores(ctx, s)
	if err != nil {
		return nil, err
	}

	persistence, err := session.NewFilePersistence(s.Sessions.Dir, configs)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessions := session.NewManagerWithPersistence(persistence)
	if err := sessions.LoadPersistedSessions(); err != nil {
		log.Warn("Failed to load persisted sessions", "err", err)
	}

	if s.Sessions.CleanupInterval.Duration > 0 && s.Sessions.MaxAge.Duration > 0 {
		go sessions.RunCleanup(ctx, s.Sessions.CleanupInterval.Duration, s.Sessions.MaxAge.Duration)
	}
	go syncSessionFiles(ctx, sessions, persistence, 5*time.Second)

	return &services{
		maze:     service.NewMazeService(sessions, configs, service.WithCache(c, s.Cache.TTL.Duration)),
		configs:  configs,
		sessions: sessions,
		cache:    c,
	}, nil
}

// syncSessionFiles drops sessions from memory once their file is deleted,
// so removing a file under the sessions directory ends that session.
func syncSessionFiles(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneDeletedSessions(manager, persistence)
		}
	}
}

func pruneDeletedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Debug("Pruned session with deleted file", "session", sess.ID)
		}
	}
	if pruned > 0 {
		log.Info("Pruned sessions whose files were deleted", "count", pruned)
	}
	return pruned
}

// newHTTPHandler mounts the API at / and the MCP JSON-RPC endpoint at /mcp
func newHTTPHandler(apiServer http.Handler, mcpServer *server.MCPServer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Warn("Failed to write MCP response", "err", err)
		}
	})
	return mux
}

// runHTTPServer serves until ctx is cancelled, optionally through ngrok too
func runHTTPServer(ctx context.Context, s *settings.Settings, ngrokAuth string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := newServices(ctx, s)
	if err != nil {
		return err
	}
	defer svc.Close()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := s.Addr()
	apiServer := api.NewServer(svc.maze, hub)
	mcpClient := mcp.NewClient("http://" + addr)
	handler := newHTTPHandler(apiServer, mcpClient.GetMCPServer())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info("HTTP server listening", "addr", addr, "version", Version)
		log.Info("Endpoints", "api", "http://"+addr+"/api", "ws", "ws://"+addr+"/ws?session=<id>", "mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, handler, ngrokAuth, s.Ngrok.Domain)
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", "err", err)
	}

	wg.Wait()
	log.Info("Server stopped")

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func serveNgrok(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	}

	log.Info("Starting ngrok tunnel", "domain", domain)
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error("Failed to start ngrok tunnel", "err", err)
		return
	}

	url := tun.URL()
	log.Info("Ngrok tunnel established", "url", url, "api", url+"/api", "mcp", url+"/mcp")

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn("Failed to close ngrok tunnel", "err", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error("Ngrok server error", "err", err)
	}
	log.Info("Ngrok tunnel closed")
}

// apiReachable reports whether a REST API answers its health check at baseURL
func apiReachable(ctx context.Context, baseURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP serves MCP over stdio. It reuses the API at externalURL when it
// is up, otherwise it starts an internal API on a loopback port.
func runStdioMCP(ctx context.Context, s *settings.Settings, externalURL string, probeTimeout time.Duration) error {
	baseURL := externalURL

	if apiReachable(ctx, externalURL, probeTimeout) {
		log.Info("Using external API server for MCP", "url", externalURL)
	} else {
		log.Info("No external API server found, starting internal HTTP server", "probed", externalURL)

		svc, err := newServices(ctx, s)
		if err != nil {
			return err
		}
		defer svc.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc.maze, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Internal HTTP server error", "err", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info("Internal HTTP server started", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
