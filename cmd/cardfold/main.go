package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conorfennell/cardfold/internal/app"
	"github.com/conorfennell/cardfold/internal/config"
	"github.com/conorfennell/cardfold/internal/importer"
	"github.com/conorfennell/cardfold/internal/library"
	"github.com/conorfennell/cardfold/internal/storage"
	"github.com/conorfennell/cardfold/internal/web"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("cardfold", pflag.ExitOnError)
	configPath := flags.String("config", "cardfold.yaml", "Path to the YAML config file")
	flags.String("db", "cardfold.db", "Path to the SQLite database file")
	flags.String("listen", "127.0.0.1:8484", "Address for the web UI")
	flags.String("repos", "repos", "Directory for git-hosted card sources")
	flags.String("level", "info", "Log level (debug, info, warn, error)")
	importPath := flags.String("import", "", "Import a markdown directory or git URL, then exit")
	importFolder := flags.String("folder", "", "Target folder name for --import (created if missing)")
	syncSources := flags.Bool("sync", false, "Re-import all remembered sources, then exit")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	slog.SetDefault(logger)

	db, err := storage.Open(cfg.DB)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.DB)

	folders := library.NewFolderService(db, logger)
	cards := library.NewCardService(db, logger)
	reviews := library.NewReviewService(db, logger)
	im := importer.New(db, cards, cfg.Repos, logger)

	ctx := context.Background()

	switch {
	case *importPath != "":
		if err := runImport(ctx, im, folders, *importPath, *importFolder); err != nil {
			logger.Error("import failed", "path", *importPath, "error", err)
			os.Exit(1)
		}
		return
	case *syncSources:
		res, err := im.SyncAll(ctx)
		if err != nil {
			logger.Error("sync failed", "error", err)
			os.Exit(1)
		}
		logger.Info("sync finished", "parsed", res.Parsed, "imported", res.Imported, "skipped", res.Skipped, "errors", len(res.Errors))
		return
	}

	ctrl := app.New(folders, cards, reviews, logger)
	if err := ctrl.RefreshFolders(ctx); err != nil {
		logger.Error("failed to load folders", "error", err)
		os.Exit(1)
	}

	server, err := web.NewServer(ctrl, logger)
	if err != nil {
		logger.Error("failed to set up web server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{Addr: cfg.Listen, Handler: server}
	go func() {
		logger.Info("serving web UI", "addr", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// runImport resolves the target folder by name, creating it when
// missing, and imports the source into it.
func runImport(ctx context.Context, im *importer.Importer, folders *library.FolderService, path, folderName string) error {
	if folderName == "" {
		return errors.New("--import requires --folder")
	}

	existing, err := folders.ListFolders(ctx)
	if err != nil {
		return err
	}
	var folderID int64
	for _, f := range existing {
		if f.Name == folderName {
			folderID = f.ID
			break
		}
	}
	if folderID == 0 {
		folder, err := folders.CreateFolder(ctx, folderName)
		if err != nil {
			return err
		}
		folderID = folder.ID
	}

	res, err := im.AddSource(ctx, path, folderID)
	if err != nil {
		return err
	}
	slog.Info("import finished", "folder", folderName, "parsed", res.Parsed, "imported", res.Imported, "skipped", res.Skipped, "errors", len(res.Errors))
	return nil
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
