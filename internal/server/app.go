// Package server wires configuration, storage backends and services together
// and runs the HTTP and gRPC transports until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/dbx"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/server/auth"
	"github.com/dmitrijs2005/todoauth/internal/server/config"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoauth/internal/server/services"
	"github.com/dmitrijs2005/todoauth/internal/server/tokenstore"
	"github.com/dmitrijs2005/todoauth/internal/timex"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/todoauth/internal/server/grpc"
	hs "github.com/dmitrijs2005/todoauth/internal/server/httpapi"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   redis.UniversalClient
	account *services.AccountService
}

// openPostgres is a seam for tests.
var openPostgres = dbx.OpenPostgres

// NewApp validates c, opens the configured storage and builds the services.
// Logs go to stdout as JSON.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	app := &App{config: c, logger: logger}

	rm, tx, err := app.openStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	secret := []byte(c.SecretKey)
	key, err := auth.NewSigningKey(secret)
	common.WipeByteArray(secret)
	if err != nil {
		app.Close()
		return nil, err
	}

	clock := timex.SystemClock{}
	codec := auth.NewCodec(key, clock, c.AccessTokenValidityDuration)
	store := tokenstore.New(rm.RefreshTokens(app.db), clock, c.RefreshTokenValidityMonths, tx)

	us := services.NewUserService(app.db, rm, logger)
	ts := services.NewTokenService(codec, store, us, clock, c.RotationGracePeriod, logger)
	app.account = services.NewAccountService(us, ts, codec, logger)

	logger.Info(ctx, "App configured", "config", c)

	return app, nil
}

// openStorage returns the repository manager for the configured refresh
// store. The TxRunner is nil for stores whose single operations are atomic.
func (app *App) openStorage(ctx context.Context) (repomanager.RepositoryManager, tokenstore.TxRunner, error) {
	switch app.config.RefreshStore {
	case config.StoreMemory:
		return repomanager.NewMemoryRepositoryManager(), nil, nil

	case config.StorePostgres:
		m, err := app.openPostgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		return m, repomanager.RefreshTokenTx(app.db, m), nil

	case config.StoreRedis:
		var base repomanager.RepositoryManager = repomanager.NewMemoryRepositoryManager()
		if app.config.DatabaseDSN != "" {
			m, err := app.openPostgres(ctx)
			if err != nil {
				return nil, nil, err
			}
			base = m
		}

		client := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping error: %w", err)
		}
		app.redis = client
		return repomanager.NewRedisRepositoryManager(base, client), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown refresh store %q", app.config.RefreshStore)
}

func (app *App) openPostgres(ctx context.Context) (*repomanager.PostgresRepositoryManager, error) {
	db, err := openPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return m, nil
}

// Close releases the database pool and the Redis client.
func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves both transports until ctx is cancelled, a termination signal
// arrives or either server fails. Storage is closed before returning.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.account, app.config.RequestTimeout)
	httpServer := hs.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.account, app.config.RequestTimeout)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	serve := func(run func(context.Context) error) {
		defer wg.Done()
		if err := run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			cancelFunc()
		}
	}

	wg.Add(2)
	go serve(grpcServer.Run)
	go serve(httpServer.Run)

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(errs...)
}
