package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tapstampr/internal/config"
	libSvc "tapstampr/internal/domain/services/library"
	"tapstampr/internal/repository/storage"
	"tapstampr/internal/service/library"
)

// app holds what every subcommand needs once the root pre-run has opened storage
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *storage.Backend
	store   libSvc.FolderStore
}

func main() {
	var (
		a           = &app{}
		backendFlag string
		keyFlag     string
		userFlag    string
		verbose     bool
	)

	rootCmd := &cobra.Command{
		Use:           "folderctl",
		Short:         "Inspect and maintain the TapStampr folder library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend (memory, sqlite, postgres, mongo); overrides STORAGE_BACKEND")
	rootCmd.PersistentFlags().StringVar(&keyFlag, "key", "", "Base storage key; overrides STORAGE_KEY")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "Operate on this user's folders")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store activity to stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		a.cfg = config.Load()
		if backendFlag != "" {
			a.cfg.StorageBackend = backendFlag
		}
		if keyFlag != "" {
			a.cfg.StorageKey = keyFlag
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		backend, err := storage.Open(cmd.Context(), a.cfg, a.logger)
		if err != nil {
			return fmt.Errorf("open %s storage: %w", a.cfg.StorageBackend, err)
		}
		a.backend = backend

		ns := library.NewNamespaces(backend.KV, backend.TxManager, a.cfg.StorageKey, a.logger)
		a.store = ns.ForUser(userFlag)
		return nil
	}

	rootCmd.AddCommand(
		newSeedCmd(a),
		newExportCmd(a),
		newTreeCmd(a),
		newListCmd(a),
		newPathCmd(a),
		newMkdirCmd(a),
		newMoveCmd(a),
		newRemoveCmd(a),
		newClearCmd(a),
	)

	err := rootCmd.ExecuteContext(context.Background())
	if a.backend != nil {
		if cerr := a.backend.Close(); cerr != nil {
			a.logger.Warn("failed to close storage", "error", cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
