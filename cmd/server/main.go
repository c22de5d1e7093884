package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/blackboxbots/bbb-assistant/internal/audit"
	"github.com/blackboxbots/bbb-assistant/internal/config"
	"github.com/blackboxbots/bbb-assistant/internal/gateway"
	"github.com/blackboxbots/bbb-assistant/internal/httpapi"
	"github.com/blackboxbots/bbb-assistant/internal/identity"
	"github.com/blackboxbots/bbb-assistant/internal/transcript"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	if cfg.WebhookURL == "" {
		log.Printf("warning: WEBHOOK_URL is not set; chat and email capture will fail until it is configured")
	}

	store, err := newIdentityStore(cfg)
	if err != nil {
		log.Fatalf("identity store: %v", err)
	}

	gw := gateway.NewClient(cfg.WebhookURL, cfg.WebhookAuthToken,
		time.Duration(cfg.WebhookTimeoutSec)*time.Second)

	ids := identity.NewService(store, gw)
	chats := transcript.NewManager(gw)

	var pub *audit.Publisher
	if cfg.RabbitURL != "" {
		pub, err = audit.NewPublisher(cfg.RabbitURL, cfg.AuditQueue)
		if err != nil {
			log.Printf("warning: audit publisher unavailable: %v", err)
			pub = nil
		} else {
			defer pub.Close()
			log.Printf("audit publisher connected queue=%s", cfg.AuditQueue)
		}
	}

	router := httpapi.NewRouter(cfg, ids, chats, pub)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("bbb-assistant listening on %s", cfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newIdentityStore(cfg config.Config) (identity.Store, error) {
	switch cfg.IdentityBackend {
	case "gorm":
		db, err := openIdentityDB(cfg.IdentityDSN)
		if err != nil {
			return nil, err
		}
		return identity.NewGormStore(db)
	default:
		return identity.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	}
}

// openIdentityDB picks the driver from the DSN shape: anything ending in .db
// or starting with file: is sqlite, the rest is mysql.
func openIdentityDB(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db") {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
