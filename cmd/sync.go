package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"comment-mirror/core/config"
	"comment-mirror/core/logger"
	"comment-mirror/core/storage"
	"comment-mirror/feature/activity"
	"comment-mirror/feature/comments/api"
	"comment-mirror/feature/comments/mirror"
	"comment-mirror/feature/comments/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var snapshotAfterRun bool

// syncCmd is the parent command for all reconciliation strategies.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local mirror against the upstream comment feed",
	Long: `Reconcile the local comment mirror against the upstream feed.

Strategies:
  backfill  scrape every catalog media not yet in the mirror
  gaps      point-fetch missing comment IDs inside the known range
  daily     re-sync recently active media with change detection
  user      mirror one author's comments to a separate file
  window    re-sync one media restricted to a time window`,
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Scrape every catalog media not yet in the mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRun("backfill", func(ctx context.Context, env *runEnv) (*sync.Report, error) {
			catalog, err := sync.LoadCatalog(env.cfg.Sync.CatalogPath)
			if err != nil {
				return nil, err
			}
			env.log.Info("Catalog loaded",
				zap.String("path", env.cfg.Sync.CatalogPath),
				zap.Int("media", len(catalog)),
			)
			return env.orch.Backfill(ctx, catalog)
		})
	},
}

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Point-fetch missing comment IDs inside the known range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRun("gapfill", func(ctx context.Context, env *runEnv) (*sync.Report, error) {
			return env.orch.GapFill(ctx)
		})
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Re-sync recently active media with change detection",
	Long: `Re-sync recently active media with field-level change detection.

When a Discord feed token is configured, the run is narrowed to media that
saw activity inside the feed window; otherwise every media with stored
comments is re-scanned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRun("daily", func(ctx context.Context, env *runEnv) (*sync.Report, error) {
			var active, deleted []int64
			if env.cfg.Activity.Token != "" {
				feed := activity.NewDiscord(env.cfg.Activity, env.log)
				act, err := feed.Scan(ctx)
				if err != nil {
					return nil, err
				}
				if len(act.MediaIDs) == 0 && len(act.DeletedCommentIDs) == 0 {
					env.log.Info("No activity inside the feed window")
					return &sync.Report{Mode: "daily"}, nil
				}
				active, deleted = act.MediaIDs, act.DeletedCommentIDs
			} else {
				env.log.Info("No feed token configured, re-scanning all known media")
			}
			return env.orch.Incremental(ctx, active, deleted)
		})
	},
}

var userOutPath string

var userCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Mirror one author's comments to a separate file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		return withRun("author", func(ctx context.Context, env *runEnv) (*sync.Report, error) {
			out := userOutPath
			if out == "" {
				out = filepath.Join(env.cfg.Mirror.ScopedDir, fmt.Sprintf("user_%d.csv", userID))
			}
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}
			return env.orch.SyncAuthor(ctx, userID, out)
		})
	},
}

var (
	windowMediaID int64
	windowFrom    string
	windowTo      string
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Re-sync one media restricted to a time window",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseWindowTime(windowFrom)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		to, err := parseWindowTime(windowTo)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		if !to.After(from) {
			return fmt.Errorf("--to must be after --from")
		}
		return withRun("window", func(ctx context.Context, env *runEnv) (*sync.Report, error) {
			return env.orch.SyncWindow(ctx, windowMediaID, from, to)
		})
	},
}

func init() {
	syncCmd.PersistentFlags().BoolVar(&snapshotAfterRun, "snapshot", false,
		"Upload the mirror to object storage after a successful run")

	userCmd.Flags().StringVar(&userOutPath, "out", "",
		"Output path for the author mirror (default: <scoped_dir>/user_<id>.csv)")

	windowCmd.Flags().Int64Var(&windowMediaID, "media", 0, "Media ID to re-sync")
	windowCmd.Flags().StringVar(&windowFrom, "from", "", "Window start (RFC3339 or YYYY-MM-DD)")
	windowCmd.Flags().StringVar(&windowTo, "to", "", "Window end (RFC3339 or YYYY-MM-DD)")
	_ = windowCmd.MarkFlagRequired("media")
	_ = windowCmd.MarkFlagRequired("from")
	_ = windowCmd.MarkFlagRequired("to")

	syncCmd.AddCommand(backfillCmd)
	syncCmd.AddCommand(gapsCmd)
	syncCmd.AddCommand(dailyCmd)
	syncCmd.AddCommand(userCmd)
	syncCmd.AddCommand(windowCmd)
	RootCmd.AddCommand(syncCmd)
}

// runEnv bundles everything a reconciliation run needs after setup.
type runEnv struct {
	cfg  *config.Config
	log  *zap.Logger
	orch *sync.Orchestrator
}

// withRun performs the shared lifecycle of every sync subcommand: load
// config, build the logger, authenticate upstream, lock the mirror, run
// the strategy, log the report, optionally snapshot. Auth and store
// failures abort before any fetching starts.
func withRun(mode string, run func(ctx context.Context, env *runEnv) (*sync.Report, error)) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()
	l = logger.WithRun(l, mode)

	client := api.NewClient(cfg.Api, l)
	if cfg.Api.AniListToken != "" {
		if err := client.VerifyToken(ctx); err != nil {
			return fmt.Errorf("anilist token rejected: %w", err)
		}
	}
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("upstream authentication failed: %w", err)
	}

	store, err := mirror.Open(cfg.Mirror.Path, l)
	if err != nil {
		return fmt.Errorf("failed to open mirror: %w", err)
	}
	defer store.Close()

	env := &runEnv{
		cfg:  cfg,
		log:  l,
		orch: sync.New(cfg.Sync, client, store, l),
	}

	report, err := run(ctx, env)
	if err != nil {
		return err
	}
	report.Log(l)

	if snapshotAfterRun {
		if err := uploadSnapshot(ctx, cfg, l, store.Path()); err != nil {
			return err
		}
	}
	return nil
}

func uploadSnapshot(ctx context.Context, cfg *config.Config, l *zap.Logger, path string) error {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	object := fmt.Sprintf("snapshots/%s/%s",
		time.Now().UTC().Format("2006-01-02"), filepath.Base(path))
	if err := storage.UploadFile(ctx, client, cfg.Storage.Bucket, object, path); err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	l.Info("Snapshot uploaded",
		zap.String("bucket", cfg.Storage.Bucket),
		zap.String("object", object),
	)
	return nil
}

func parseWindowTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
