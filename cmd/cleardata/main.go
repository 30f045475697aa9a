// cleardata is the maintenance tool for bulk or targeted data deletion
// across both stores.
package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/nutrigenie-ai/nutrigenie/pkg/config"
	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
	"github.com/nutrigenie-ai/nutrigenie/pkg/vectordb"
)

type options struct {
	All    bool   `long:"all" description:"Delete all data for every user"`
	UserID string `long:"user" description:"Delete all data for one user id"`
	Email  string `long:"email" description:"Delete all data for the user with this email"`
}

func main() {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	selected := 0
	for _, on := range []bool{opts.All, opts.UserID != "", opts.Email != ""} {
		if on {
			selected++
		}
	}
	if selected != 1 {
		logger.Fatal("Pass exactly one of --all, --user, --email")
	}

	cfg, err := config.LoadConfig(false)
	if err != nil {
		logger.Fatal(errors.Wrap(err, "unable to load config"))
	}

	store, err := db.NewStore(logger, cfg.DBPath)
	if err != nil {
		logger.Fatal(errors.Wrap(err, "unable to open sqlite store"))
	}
	defer func() { _ = store.Close() }()

	// Deletion never needs embeddings, so the vector store opens with a
	// no-op embedding function.
	vectorStore, err := vectordb.NewStore(logger, cfg.VectorDBPath, func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embeddings disabled in cleardata")
	})
	if err != nil {
		logger.Fatal(errors.Wrap(err, "unable to open vector store"))
	}

	ctx := context.Background()

	switch {
	case opts.All:
		if err := store.ClearAll(ctx); err != nil {
			logger.Fatal(errors.Wrap(err, "failed to clear sqlite data"))
		}
		logger.Info("Cleared all structured data")
		logger.Warn("Vector data must be removed per user; delete the vector directory to wipe it entirely", "path", cfg.VectorDBPath)

	case opts.UserID != "":
		clearUser(ctx, logger, store, vectorStore, opts.UserID)

	case opts.Email != "":
		userID, err := store.FindUserIDByEmail(ctx, opts.Email)
		if err != nil {
			logger.Fatal(errors.Wrap(err, "failed to look up email"))
		}
		if userID == "" {
			logger.Fatal("No user with that email", "email", opts.Email)
		}
		clearUser(ctx, logger, store, vectorStore, userID)
	}
}

func clearUser(ctx context.Context, logger *log.Logger, store *db.Store, vectorStore *vectordb.Store, userID string) {
	if err := store.ClearUser(ctx, userID); err != nil {
		logger.Fatal(errors.Wrap(err, "failed to clear structured data"))
	}
	if err := vectorStore.DeleteUserData(ctx, userID); err != nil {
		logger.Fatal(errors.Wrap(err, "failed to clear vector data"))
	}
	logger.Info("Cleared user data", "user_id", userID)
}
