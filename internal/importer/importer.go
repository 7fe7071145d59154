package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/cardfold/internal/cardhash"
	"github.com/conorfennell/cardfold/internal/gitsource"
	"github.com/conorfennell/cardfold/internal/library"
	"github.com/conorfennell/cardfold/internal/parser"
	"github.com/conorfennell/cardfold/internal/storage"
)

// Importer pulls Q:/A: markdown cards from remembered sources into
// folders, skipping cards whose normalized content already exists in
// the target folder.
type Importer struct {
	db       *storage.DB
	cards    *library.CardService
	logger   *slog.Logger
	reposDir string
}

// New creates an importer. reposDir is where git-hosted sources are
// checked out.
func New(db *storage.DB, cards *library.CardService, reposDir string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{db: db, cards: cards, logger: logger, reposDir: reposDir}
}

// Result summarizes one import run.
type Result struct {
	Parsed   int
	Imported int
	Skipped  int
	Errors   []error
}

// AddSource remembers a source path (local directory or git URL) for a
// folder and runs a first import. An already remembered path is
// re-imported rather than duplicated.
func (im *Importer) AddSource(ctx context.Context, path string, folderID int64) (Result, error) {
	src, err := im.db.FindSourceByPath(ctx, path)
	if err != nil {
		return Result{}, err
	}
	if src == nil {
		if _, err := im.db.InsertSource(ctx, path, folderID); err != nil {
			return Result{}, err
		}
		src, err = im.db.FindSourceByPath(ctx, path)
		if err != nil {
			return Result{}, err
		}
	}
	return im.importSource(ctx, src)
}

// SyncAll re-imports every remembered source.
func (im *Importer) SyncAll(ctx context.Context) (Result, error) {
	sources, err := im.db.GetAllSources(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(sources) == 0 {
		im.logger.Info("no sources configured")
		return Result{}, nil
	}

	var total Result
	for i := range sources {
		res, err := im.importSource(ctx, &sources[i])
		if err != nil {
			im.logger.Error("source import failed", "path", sources[i].Path, "error", err)
			total.Errors = append(total.Errors, err)
			continue
		}
		total.Parsed += res.Parsed
		total.Imported += res.Imported
		total.Skipped += res.Skipped
		total.Errors = append(total.Errors, res.Errors...)
	}
	return total, nil
}

func (im *Importer) importSource(ctx context.Context, src *storage.Source) (Result, error) {
	im.logger.Info("importing source", "id", src.ID, "path", src.Path, "folder_id", src.FolderID)

	dir := src.Path
	if gitsource.IsGitURL(src.Path) {
		localPath, err := gitURLToLocalPath(im.reposDir, src.Path)
		if err != nil {
			return Result{}, err
		}
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return Result{}, fmt.Errorf("failed to create repos directory: %w", err)
		}
		if err := gitsource.Sync(src.Path, localPath); err != nil {
			return Result{}, err
		}
		dir = localPath
	}

	res, err := im.importDir(ctx, dir, src.FolderID)
	if err != nil {
		return res, err
	}
	if err := im.db.UpdateSourceLastImported(ctx, src.ID); err != nil {
		im.logger.Warn("failed to stamp source", "source_id", src.ID, "error", err)
	}

	im.logger.Info("import complete",
		"path", src.Path,
		"parsed", res.Parsed,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)
	return res, nil
}

// importDir walks a directory of markdown files and files every new
// card under folderID. Cards already present in the folder (compared
// by normalized content hash) are skipped, so re-imports are safe.
func (im *Importer) importDir(ctx context.Context, dir string, folderID int64) (Result, error) {
	existing, err := im.cards.ListCards(ctx, folderID)
	if err != nil {
		return Result{}, err
	}
	seen := make(map[string]bool, len(existing))
	for _, card := range existing {
		seen[cardhash.Sum(card)] = true
	}

	var res Result
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		fileCards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			res.Errors = append(res.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		for _, card := range fileCards {
			res.Parsed++
			sum := cardhash.Sum(card)
			if seen[sum] {
				res.Skipped++
				continue
			}
			if _, err := im.cards.CreateCard(ctx, folderID, card.Front, card.Back); err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("inserting card from %s: %w", path, err))
				continue
			}
			seen[sum] = true
			res.Imported++
		}
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("walking %s: %w", dir, walkErr)
	}
	return res, nil
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-style git@host:user/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, hostAndUser[1], repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
