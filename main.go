// Command stackquest starts the Stack Quest game server.
//
// It supports two commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, the
//     WebSocket hub with its tick scheduler, and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none
//     is available
//
// Flags control host/port, the packs directory, session storage, the tick
// cadence, debug logging, and optional ngrok tunneling for easy external
// access during development. Every flag can also be set from the environment
// or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/stackquest/api"
	"github.com/wricardo/stackquest/game/config"
	"github.com/wricardo/stackquest/game/scheduler"
	"github.com/wricardo/stackquest/game/service"
	"github.com/wricardo/stackquest/game/session"
	"github.com/wricardo/stackquest/transport/mcp"
	"github.com/wricardo/stackquest/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Stack Quest Server"
)

// Session store kinds accepted by --store.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// options is the process configuration collected from flags and environment.
type options struct {
	host         string
	port         int
	packsDir     string
	store        string
	sessionsDir  string
	dbPath       string
	tickInterval time.Duration
	sessionTTL   time.Duration
	retention    time.Duration
	debug        bool
	ngrok        bool
	ngrokAuth    string
	ngrokDomain  string
}

func (o options) addr() string {
	return net.JoinHostPort(o.host, fmt.Sprint(o.port))
}

type runner func(ctx context.Context, opts options) error

// main loads .env, parses flags and starts the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("error loading .env file", "err", err)
	}

	app := newApp(runHTTPServer, runStdioMCPWithInternalServer)
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal("stackquest failed", "err", err)
	}
}

func newApp(serve, stdio runner) *cli.Command {
	action := func(run runner) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, optionsFrom(cmd))
		}
	}

	return &cli.Command{
		Name:    "stackquest",
		Usage:   "Stack Quest game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "packs-dir", Usage: "Directory with extra level packs (builtin packs are always available)", Sources: cli.EnvVars("PACKS_DIR")},
			&cli.StringFlag{Name: "store", Value: StoreFile, Usage: "Session store: file, sqlite or memory", Sources: cli.EnvVars("SESSION_STORE")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for the file session store", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "db", Value: "data/stackquest.db", Usage: "Database path for the sqlite session store", Sources: cli.EnvVars("DB_PATH")},
			&cli.DurationFlag{Name: "tick-interval", Value: scheduler.DefaultInterval, Usage: "Tick cadence for held WebSocket input", Sources: cli.EnvVars("TICK_INTERVAL")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Idle time before a session is dropped from memory", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.DurationFlag{Name: "retention", Value: 7 * 24 * time.Hour, Usage: "Idle time before a session is purged from the sqlite store", Sources: cli.EnvVars("SESSION_RETENTION")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: action(serve),
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  action(serve),
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  action(stdio),
			},
		},
	}
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:         cmd.String("host"),
		port:         int(cmd.Int("port")),
		packsDir:     cmd.String("packs-dir"),
		store:        cmd.String("store"),
		sessionsDir:  cmd.String("sessions-dir"),
		dbPath:       cmd.String("db"),
		tickInterval: cmd.Duration("tick-interval"),
		sessionTTL:   cmd.Duration("session-ttl"),
		retention:    cmd.Duration("retention"),
		debug:        cmd.Bool("debug"),
		ngrok:        cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

// newLogger writes to stderr so the MCP stdio transport keeps stdout.
func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		ReportCaller:    debug,
		Prefix:          "stackquest",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// services bundles what every command needs.
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	logger      *log.Logger
}

// Close flushes sessions and releases the store.
func (s *services) Close() error {
	err := s.sessions.SaveAllSessions()
	if c, ok := s.persistence.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// initializeServices wires the pack manager, session store and game service.
func initializeServices(opts options, logger *log.Logger) (*services, error) {
	packs, err := config.NewManager(opts.packsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create pack manager: %w", err)
	}

	var persistence session.SessionPersistence
	switch opts.store {
	case StoreFile:
		persistence, err = session.NewFilePersistence(opts.sessionsDir, packs)
	case StoreSQLite:
		persistence, err = session.NewSQLitePersistence(opts.dbPath, packs)
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown session store %q", opts.store)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	var sessions *session.Manager
	if persistence != nil {
		sessions = session.NewManagerWithPersistence(persistence, logger)
		if err := sessions.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", "err", err)
		}
	} else {
		sessions = session.NewManager(logger)
	}

	return &services{
		game:        service.NewGameService(sessions, packs, logger),
		sessions:    sessions,
		persistence: persistence,
		logger:      logger,
	}, nil
}

// startBackground runs the cleanup and store sync loops until ctx ends.
func (s *services) startBackground(ctx context.Context, opts options) {
	go sessionCleanupRoutine(ctx, s, opts.sessionTTL, opts.retention, time.Hour)
	if s.persistence != nil {
		go storeSyncRoutine(ctx, s, 5*time.Second, 30*time.Second)
	}
}

// purger is implemented by stores that can drop old sessions themselves.
type purger interface {
	PurgeOlderThan(maxAge time.Duration) (int64, error)
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl, and purges stored sessions older than retention.
func sessionCleanupRoutine(ctx context.Context, s *services, ttl, retention, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if removed := s.sessions.CleanupExpiredSessions(ttl); removed > 0 {
			s.logger.Info("cleaned up expired sessions", "count", removed)
		}
		if p, ok := s.persistence.(purger); ok && retention > 0 {
			n, err := p.PurgeOlderThan(retention)
			if err != nil {
				s.logger.Warn("failed to purge stored sessions", "err", err)
			} else if n > 0 {
				s.logger.Info("purged stored sessions", "count", n)
			}
		}
	}
}

// storeSyncRoutine keeps memory and storage in step. Sessions whose stored
// copy was removed are dropped from memory; the rest are saved so ticks
// driven over the WebSocket reach the store.
func storeSyncRoutine(ctx context.Context, s *services, pruneEvery, saveEvery time.Duration) {
	prune := time.NewTicker(pruneEvery)
	defer prune.Stop()
	save := time.NewTicker(saveEvery)
	defer save.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-prune.C:
			pruneOrphans(s)
		case <-save.C:
			if err := s.sessions.SaveAllSessions(); err != nil {
				s.logger.Warn("session sync failed", "err", err)
			}
		}
	}
}

func pruneOrphans(s *services) int {
	pruned := 0
	for _, sess := range s.sessions.List() {
		if s.persistence.Exists(sess.ID) {
			continue
		}
		if err := s.sessions.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			s.logger.Debug("pruned session from memory (stored copy deleted)", "session", sess.ID)
		}
	}
	if pruned > 0 {
		s.logger.Info("store sync pruned orphaned sessions", "count", pruned)
	}
	return pruned
}

// buildHandler assembles the WebSocket hub, tick driver, REST API and the
// /mcp endpoint. The hub and driver live until ctx is cancelled.
func buildHandler(ctx context.Context, s *services, opts options, mcpBaseURL string) (http.Handler, *scheduler.Driver) {
	hub := websocket.NewHub(nil, s.logger)
	driver := scheduler.NewDriver(ctx, s.game, hub, opts.tickInterval, s.logger)
	hub.SetInputHandler(driver)
	go hub.Run(ctx)

	apiServer := api.NewServer(s.game, hub, s.logger)
	apiServer.OnDelete(driver.Forget)
	mcpClient := mcp.NewClient(mcpBaseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter, driver
}

// runHTTPServer starts the HTTP server and, when enabled, an ngrok tunnel.
// It returns after SIGINT/SIGTERM once both have shut down.
func runHTTPServer(ctx context.Context, opts options) error {
	logger := newLogger(opts.debug)
	logger.Info("starting", "app", AppName, "version", Version, "mode", "server")

	svc, err := initializeServices(opts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to close services", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc.startBackground(ctx, opts)

	addr := opts.addr()
	handler, driver := buildHandler(ctx, svc, opts, "http://"+addr)
	defer driver.Shutdown()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr)
		logger.Info("endpoints",
			"api", "http://"+addr+"/api",
			"ws", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, handler, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("HTTP server shutdown error", "err", serr)
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx ends.
func runNgrok(ctx context.Context, opts options, handler http.Handler, logger *log.Logger) {
	logger = logger.WithPrefix("ngrok")
	if opts.ngrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting tunnel")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		logger.Info("using custom domain", "domain", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		logger.Error("failed to start tunnel", "err", err)
		return
	}

	ngrokURL := tun.URL()
	logger.Info("tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"ws", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp")

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("tunnel server error", "err", err)
	}
	logger.Info("tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an API
// already listening on --host/--port; otherwise it starts an internal HTTP
// API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, opts options) error {
	logger := newLogger(opts.debug)
	logger.Info("starting", "app", AppName, "version", Version, "mode", "mcp")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	externalURL := "http://" + opts.addr()
	baseURL := externalURL

	if !apiAvailable(externalURL) {
		logger.Info("no external API server found, starting internal HTTP server", "checked", externalURL)

		svc, err := initializeServices(opts, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.Close()
		svc.startBackground(ctx, opts)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		handler, driver := buildHandler(ctx, svc, opts, baseURL)
		defer driver.Shutdown()

		httpServer := &http.Server{Handler: handler}
		defer httpServer.Close()
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "err", err)
			}
		}()
		logger.Info("internal HTTP server started", "url", baseURL)
	} else {
		logger.Info("using external API server", "url", externalURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a Stack Quest API answers at baseURL.
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
