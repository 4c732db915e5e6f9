package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/Isra8Rubio/CocktailDockerizado/catalog"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// appLogger keeps the same printf-style surface the rest of the module
// logs with, tagged per component.
type appLogger struct {
	name string
}

func (l appLogger) Debug(format string, args ...any) { l.print("DBG", format, args...) }
func (l appLogger) Info(format string, args ...any)  { l.print("INF", format, args...) }
func (l appLogger) Warn(format string, args ...any)  { l.print("WRN", format, args...) }
func (l appLogger) Error(format string, args ...any) { l.print("ERR", format, args...) }

func (l appLogger) print(level, format string, args ...any) {
	if len(format) == 0 || format[len(format)-1] != '\n' {
		format += "\n"
	}
	fmt.Printf("["+level+"] "+l.name+" "+format, args...)
}

func runServer(ctx context.Context, cfg serverConfig) error {
	logger := appLogger{name: "server"}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := runMigrations(ctx, db, appLogger{name: "migrations"}); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	repo := auth.NewRepositoryManager(db)
	store := auth.NewCredentialProvider(db, repo).WithLogger(appLogger{name: "credentials"})

	var mailer auth.Mailer
	if cfg.SMTPAddr != "" {
		mailer = auth.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	} else {
		logger.Warn("smtp.addr not configured, reset emails will be logged instead of sent")
		mailer = auth.NewLogMailer(appLogger{name: "mailer"})
	}

	auther := auth.NewAuthenticator(store, repo, mailer, cfg).
		WithLogger(appLogger{name: "auth"})

	if renderer, err := auth.NewDjangoEmailRenderer(); err != nil {
		logger.Warn("falling back to default email renderer: %s", err)
	} else {
		auther.WithEmailRenderer(renderer)
	}

	httpAuth, err := auth.NewHTTPAuthenticator(auther, cfg)
	if err != nil {
		return fmt.Errorf("configuring http auth: %w", err)
	}
	httpAuth.WithLogger(appLogger{name: "http-auth"})

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:           "cocktail-server",
			EnablePrintRoutes: cfg.Debug,
			StrictRouting:     false,
		}))
	})

	auth.RegisterAuthRoutes(srv.Router(),
		auth.WithControllerLogger(appLogger{name: "accounts"}),
		auth.WithControllerRepo(repo),
		auth.WithControllerAuther(auther),
		auth.WithControllerHTTP(httpAuth),
		auth.WithControllerResetBaseURL(cfg.ResetBaseURL),
	)

	client := catalog.NewClient(catalog.DefaultBaseURL, catalog.WithLogger(appLogger{name: "catalog"}))
	cocktails := catalog.NewRandomCocktailsRepository(db)
	worker := catalog.NewRefreshWorker(client, cocktails).
		WithLogger(appLogger{name: "refresh"}).
		WithSpec(cfg.RefreshSpec)

	controller := catalog.NewController(client, cocktails, worker)
	catalog.RegisterRoutes(srv.Router(), controller, httpAuth.ProtectedRoute(nil), httpAuth.AdminRoute(nil))

	if err := worker.Start(ctx); err != nil {
		return fmt.Errorf("starting refresh worker: %w", err)
	}

	go func() {
		if err := srv.Serve(cfg.HTTPAddr); err != nil {
			logger.Error("http server stopped: %s", err)
		}
	}()
	logger.Info("listening on %s", cfg.HTTPAddr)

	waitExitSignal(ctx)

	logger.Info("shutting down")
	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func waitExitSignal(ctx context.Context) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigs:
	case <-ctx.Done():
	}
}
