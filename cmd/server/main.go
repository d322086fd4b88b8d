// Package main is the entry point of the application
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/chess-rooms/internal/auth"
	"github.com/tecu23/chess-rooms/pkg/config"
	"github.com/tecu23/chess-rooms/pkg/events"
	"github.com/tecu23/chess-rooms/pkg/manager"
	"github.com/tecu23/chess-rooms/pkg/repository"
	"github.com/tecu23/chess-rooms/pkg/server"
)

// App encapsulates global dependencies
type application struct {
	Auth      *auth.APIKeyAuth
	Logger    *zap.Logger
	Config    config.Config
	Publisher *events.Publisher
	Hub       *server.Hub
	Manager   *manager.Manager
	Server    *http.Server

	upgrader websocket.Upgrader

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "", "server port (overrides PORT)")
	flag.Parse()

	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}

	// Initialize event publisher
	publisher := events.NewPublisher()
	publisher.SubscribeAll(auditEvents(logger))

	// Initialize repository
	repository := repository.NewInMemoryRepository(logger)

	hub := server.NewHub(publisher, logger)

	// Initialize game manager
	gm := manager.NewManager(repository, hub, publisher, logger, manager.Options{
		Allowance:    cfg.AllowanceSeconds(),
		TickInterval: cfg.TickInterval,
		MaxGames:     cfg.MaxGames,
		Clock:        clockwork.NewRealClock(),
	})

	app := &application{
		Auth:      auth.NewAPIKeyAuth(cfg.APIKeys),
		Logger:    logger,
		Config:    cfg,
		Hub:       hub,
		Manager:   gm,
		Publisher: publisher,
		StartTime: time.Now(),
	}
	app.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,

		CheckOrigin: func(r *http.Request) bool {
			return cfg.AllowsOrigin(r.Header.Get("Origin"))
		},
	}

	go app.Hub.Run(gm)

	err = app.serve()
	if err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// auditEvents logs every lifecycle event at debug level
func auditEvents(logger *zap.Logger) events.Handler {
	audit := logger.Named("audit")
	return func(event events.Event) {
		audit.Debug("event",
			zap.String("type", string(event.Type)),
			zap.String("game_id", event.GameID),
			zap.Any("payload", event.Payload),
		)
	}
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	// Shut down hub, which stops every running game clock
	if app.Hub != nil {
		app.Hub.Shutdown()
	}

	app.Logger.Info("All components shut down successfully")
}
