package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Dr-Payne25/GVisit/backup"
	"github.com/Dr-Payne25/GVisit/cliparse"
	"github.com/Dr-Payne25/GVisit/handlers"
	"github.com/Dr-Payne25/GVisit/middleware"
	"github.com/Dr-Payne25/GVisit/models"
	"github.com/Dr-Payne25/GVisit/router"
	"github.com/Dr-Payne25/GVisit/session"
	"github.com/Dr-Payne25/GVisit/store"
	"github.com/Dr-Payne25/GVisit/views"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	if cfg.SecretKeyGenerated {
		slog.Warn("SECRET_KEY not set; using a random key, remember-me cookies will not survive a restart")
	}
	if cfg.Password == "GVISIT" {
		slog.Warn("PASSWORD not set; using the default download password")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backups
	backupSvc, closeBackup, err := openBackup(ctx, cfg)
	if err != nil {
		slog.Error("backup setup failed", "error", err)
		os.Exit(1)
	}
	defer closeBackup()
	slog.Info("Backup configured", "backend", backupSvc.Name())

	// Storage
	st, err := openStore(ctx, cfg, backupSvc)
	if err != nil {
		slog.Error("store setup failed", "store", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("Store ready", "store", st.Kind())

	if err := os.MkdirAll(cfg.DownloadsDir, 0o755); err != nil {
		slog.Error("failed to create downloads dir", "error", err)
		os.Exit(1)
	}
	for _, id := range models.DownloadIDs {
		d := models.Downloads[id]
		if _, err := os.Stat(filepath.Join(cfg.DownloadsDir, d.FileName)); err != nil {
			slog.Warn("download missing", "ppt_id", id, "file", d.FileName)
		}
	}

	renderer, err := views.New()
	if err != nil {
		slog.Error("template parsing failed", "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager(session.NewMemoryStore(), st, session.Options{
		Secret:      cfg.SecretKey,
		TTL:         cfg.SessionTTL(),
		RememberTTL: cfg.RememberTTL(),
		Secure:      cfg.Production(),
	})
	go sessions.Janitor(ctx, 10*time.Minute)

	// Create router
	handler := router.NewRouter(handlers.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Views:    renderer,
		Backup:   backupSvc,
		Limiter:  middleware.NewLoginLimiter(cfg.LoginRate, cfg.SecretKey, cfg.TrustProxy),
	})

	// Create server
	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "env", cfg.Env)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

// setupLogging installs a text handler for development and JSON in production
func setupLogging(cfg cliparse.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Production() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// openBackup picks GCS when a bucket is set, a local directory when
// BACKUP_DIR is set, and otherwise leaves backups disabled
func openBackup(ctx context.Context, cfg cliparse.Config) (*backup.Service, func(), error) {
	noop := func() {}
	switch {
	case cfg.BackupBucket != "":
		gcs, err := backup.NewGCSBackend(ctx, cfg.BackupBucket, cfg.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return backup.NewService(gcs).WithTimeout(cfg.BackupTimeout), func() { gcs.Close() }, nil
	case cfg.BackupDir != "":
		dir, err := backup.NewDirBackend(cfg.BackupDir)
		if err != nil {
			return nil, noop, err
		}
		return backup.NewService(dir).WithTimeout(cfg.BackupTimeout), noop, nil
	default:
		return nil, noop, nil
	}
}

func openStore(ctx context.Context, cfg cliparse.Config, backupSvc *backup.Service) (store.Store, error) {
	if cfg.StoreType == models.StoreJSON {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return store.NewJSONStore(cfg.JournalPath(), cfg.UsersPath(), backupSvc), nil
	}
	// Create schema (tables)
	return store.OpenSQLStore(ctx, cfg.StoreType, cfg.DatabaseURL, backupSvc)
}
