package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"mini-mc-server/internal/command"
	"mini-mc-server/internal/command/builtin"
	"mini-mc-server/internal/config"
	"mini-mc-server/internal/events"
	"mini-mc-server/internal/inventory"
	"mini-mc-server/internal/logging"
	"mini-mc-server/internal/metrics"
	"mini-mc-server/internal/net/ws"
	"mini-mc-server/internal/session"

	"github.com/fatih/color"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to the YAML config file. Defaults are used when empty.")
	addr       = flag.String("addr", "", "Listen address, overriding the config file.")
	dev        = flag.Bool("dev", false, "Human-readable development logging.")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Name:        "mini-mc-server",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	m := metrics.New()

	managerOpts := []session.ManagerOption{
		session.WithBrewTicks(cfg.Session.BrewTicks),
		session.WithMaxSessions(cfg.Session.MaxSessions),
		session.WithOperators(cfg.IsOperator),
		session.WithObserver(m),
		session.WithLogger(logger.Named("session")),
		session.WithWindowOptions(inventory.WithObserver(m)),
	}

	var auditDone chan error
	if cfg.Audit.Enabled {
		writer := events.NewKafkaWriter(cfg.Audit.Brokers, cfg.Audit.Topic, cfg.Audit.BatchTimeout)
		publisher := events.NewPublisher(writer,
			events.WithQueueSize(cfg.Audit.QueueSize),
			events.WithObserver(m),
			events.WithLogger(logger.Named("audit")))
		managerOpts = append(managerOpts, session.WithListenerFactory(func(s *session.Session) inventory.Listener {
			return publisher.ListenerFor(s.Player.Name)
		}))
		auditDone = make(chan error, 1)
		go func() { auditDone <- publisher.Run(ctx) }()
		logger.Info("audit trail enabled", zap.Strings("brokers", cfg.Audit.Brokers), zap.String("topic", cfg.Audit.Topic))
	}

	sessions := session.NewManager(managerOpts...)
	commands := command.NewRegistry(
		command.WithPlayers(sessions.PlayerNames),
		command.WithLogger(logger.Named("command")))
	if err := builtin.Register(commands, sessions); err != nil {
		logger.Fatal("register commands", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(sessions, commands, ws.HandlerConfig{
		QueueSize:      cfg.Transport.QueueSize,
		WriteTimeout:   cfg.Transport.WriteTimeout,
		ReadLimit:      cfg.Transport.ReadLimit,
		AllowedOrigins: cfg.Transport.AllowedOrigins,
		Observer:       m,
		Logger:         logger.Named("ws"),
	}))
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, m.Handler())
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	closer.Bind(func() {
		logger.Info("shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		cancel()
		sessions.CloseAll()
		if auditDone != nil {
			if err := <-auditDone; err != nil {
				logger.Warn("audit writer close", zap.Error(err))
			}
		}
		_ = logger.Sync()
	})

	go func() {
		if err := sessions.Run(ctx, cfg.Session.TickInterval); err != nil {
			logger.Error("tick loop", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", zap.Error(err))
			closer.Close()
		}
	}()

	closer.Hold()
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dev {
		cfg.Log.Development = true
	}
	return cfg, cfg.Validate()
}

func printBanner(cfg *config.Config) {
	title := color.New(color.FgHiGreen, color.Bold)
	title.Println("mini-mc-server")
	fmt.Printf("  listen   %s\n", color.CyanString(cfg.Server.Addr))
	fmt.Printf("  tick     %s\n", color.CyanString(cfg.Session.TickInterval.String()))
	audit := color.YellowString("off")
	if cfg.Audit.Enabled {
		audit = color.GreenString(cfg.Audit.Topic)
	}
	fmt.Printf("  audit    %s\n", audit)
}
