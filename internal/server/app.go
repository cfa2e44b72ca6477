// Package server initializes and runs the gateway: it builds the user
// directory and contacts source selected by configuration, wires the
// signup/login service and serves the REST API until a shutdown signal.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/directory"
	"github.com/dmitrijs2005/authgate/internal/server/rest"
	"github.com/dmitrijs2005/authgate/internal/server/users"
)

// logOutput is where the JSON log stream goes; tests swap it.
var logOutput io.Writer = os.Stdout

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *rest.Server
	closers []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(logOutput, c.SlogLevel())
	app := &App{config: c, logger: logger}

	dir, err := app.buildDirectory(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("directory init error: %w", err)
	}

	contacts, err := app.buildContactsSource(ctx, dir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("contacts init error: %w", err)
	}

	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		app.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		app.Close()
		return nil, err
	}

	us := users.NewService(dir, hasher, tokens, logger)
	app.server = rest.NewServer(c.Address(), logger, us, tokens, contacts, c.CORSAllowedOrigins)

	return app, nil
}

func (app *App) buildDirectory(ctx context.Context) (directory.Directory, error) {
	switch app.config.Directory {
	case config.DirectorySheety:
		return directory.NewSheetyClient(app.config.DirectoryBaseURL, app.config.DirectoryToken, nil), nil
	case config.DirectoryPostgres:
		pg, err := directory.OpenPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pg)
		return pg, nil
	case config.DirectoryMemory:
		app.logger.Warn(ctx, "using in-memory directory, users are lost on restart")
		return directory.NewMemoryDirectory(nil), nil
	default:
		return nil, fmt.Errorf("unknown directory %q", app.config.Directory)
	}
}

func (app *App) buildContactsSource(ctx context.Context, dir directory.Directory) (directory.ContactsSource, error) {
	if app.config.ContactsSource == config.ContactsFromS3 {
		return directory.NewS3Contacts(ctx, directory.S3Options{
			Region:       app.config.S3Region,
			BaseEndpoint: app.config.S3BaseEndpoint,
			AccessKey:    app.config.S3AccessKey,
			SecretKey:    app.config.S3SecretKey,
			Bucket:       app.config.S3Bucket,
			Key:          app.config.S3Key,
		})
	}

	cs, ok := dir.(directory.ContactsSource)
	if !ok {
		return nil, fmt.Errorf("directory %q cannot serve contacts", app.config.Directory)
	}
	return cs, nil
}

// Close releases resources held by the directory backend.
func (app *App) Close() {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error(context.Background(), "close error", "error", err)
		}
	}
	app.closers = nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
	return err
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return runErr
}
