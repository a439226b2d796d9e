package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/artisanedge/internal/config"
	"github.com/iliyamo/artisanedge/internal/database"
	"github.com/iliyamo/artisanedge/internal/events"
	"github.com/iliyamo/artisanedge/internal/handler"
	"github.com/iliyamo/artisanedge/internal/kv"
	"github.com/iliyamo/artisanedge/internal/logger"
	"github.com/iliyamo/artisanedge/internal/middleware"
	"github.com/iliyamo/artisanedge/internal/router"
	"github.com/iliyamo/artisanedge/internal/session"
	"github.com/iliyamo/artisanedge/internal/view"
)

func main() {
	cfg, dotenv, err := config.Load()
	log := logger.New(cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !dotenv {
		log.Debug().Msg("no .env file, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.KVBackend).Msg("open session backend")
	}
	defer b.close()

	var pub events.Publisher = events.Nop{}
	if cfg.EventsEnabled {
		pub = events.NewAMQPPublisher(cfg.AMQPURL, log)
	}
	if cfg.AuditConsumerEnabled {
		c := &events.AuditConsumer{URL: cfg.AMQPURL, Dir: cfg.AuditLogDir, Log: log.With().Str("component", "audit").Logger()}
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	sessions := &session.Factory{Base: b.store, Options: []session.Option{
		session.WithPrefix(cfg.StorePrefix),
		session.WithCredentials(session.CredentialsFor(cfg.PasswordMode, cfg.BcryptCost)),
		session.WithPublisher(pub),
		session.WithLogger(log.With().Str("component", "session").Logger()),
		session.WithPaths(cfg.SignInPath, cfg.HomePath),
	}}
	if cfg.PasswordMode == "plain" {
		log.Warn().Msg("passwords are stored and compared in plaintext; set PASSWORD_MODE=bcrypt outside demos")
	}

	limiterRedis := b.rdb
	if limiterRedis == nil && cfg.RateLimit.Enabled && cfg.KVBackend != config.BackendMemory {
		limiterRedis = config.NewRedisClient(cfg.Redis)
		if limiterRedis != nil {
			defer limiterRedis.Close()
		}
	}
	if cfg.RateLimit.Enabled && limiterRedis == nil {
		log.Info().Msg("rate limiting disabled: no redis")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover(), middleware.RequestLog(log))

	paths := view.Paths{SignIn: cfg.SignInPath, SignUp: cfg.SignUpPath, Home: cfg.HomePath, SignOut: "/v1/auth/logout"}
	router.RegisterRoutes(e, handler.Health{Backend: cfg.KVBackend, Check: b.ping})
	router.RegisterAuth(e, router.Options{
		Sessions:     sessions,
		OriginSecret: cfg.OriginSecret,
		OriginTTL:    cfg.OriginTTL,
		Limiter:      middleware.RateLimit(cfg.RateLimit, limiterRedis, log),
	}, handler.NewAuthHandler(paths), handler.NewPageHandler())

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("backend", cfg.KVBackend).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

type backend struct {
	store kv.Store
	rdb   *redis.Client
	db    *sql.DB
}

func openBackend(cfg config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.KVBackend {
	case config.BackendRedis:
		rdb := config.NewRedisClient(cfg.Redis)
		if rdb == nil {
			return nil, errors.New("redis unreachable at " + cfg.Redis.Addr)
		}
		return &backend{store: kv.NewRedis(rdb), rdb: rdb}, nil
	case config.BackendMySQL:
		db, err := database.Open(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &backend{store: kv.NewMySQL(db), db: db}, nil
	default:
		log.Warn().Msg("memory backend: sessions are lost on restart")
		return &backend{store: kv.NewMemory()}, nil
	}
}

func (b *backend) ping(ctx context.Context) error {
	switch {
	case b.rdb != nil:
		return b.rdb.Ping(ctx).Err()
	case b.db != nil:
		return b.db.PingContext(ctx)
	}
	return nil
}

func (b *backend) close() {
	if b.rdb != nil {
		_ = b.rdb.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
