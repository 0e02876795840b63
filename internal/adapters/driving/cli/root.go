// Package cli provides the readfold command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/readfold/readfold/internal/adapters/driven/config/file"
	"github.com/readfold/readfold/internal/adapters/driven/fetch"
	"github.com/readfold/readfold/internal/adapters/driven/omnivore"
	"github.com/readfold/readfold/internal/adapters/driven/siyuan"
	"github.com/readfold/readfold/internal/adapters/driven/storage/memory"
	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
	"github.com/readfold/readfold/internal/core/ports/driving"
	"github.com/readfold/readfold/internal/core/services"
	"github.com/readfold/readfold/internal/logger"
	"github.com/readfold/readfold/internal/render"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by initServices. Tests inject their own.
var (
	stateStore    driven.StateStore
	sourceClient  driven.SourceClient
	syncer        driving.Syncer
	syncScheduler *services.Scheduler
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "readfold",
	Short: "Sync saved reading items into a SiYuan notebook",
	Long: `readfold pulls saved articles and clipped messages from an
Omnivore-compatible reading service and files each one into a SiYuan
notebook: articles as standalone documents, clipped messages appended
into per-day bucket documents. Re-running sync never duplicates
content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if stateStore != nil {
			// Tests inject their own services.
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.readfold)")
}

// Execute runs the root command. The context cancels long-running
// commands such as sync --watch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// unconfiguredSource stands in for the source client until an endpoint
// and API key are configured. The sync engine fails fast before ever
// calling it; this only exists so wiring never needs a nil check.
type unconfiguredSource struct{}

var _ driven.SourceClient = unconfiguredSource{}

func (unconfiguredSource) Search(_ context.Context, _ driven.SearchRequest) (*domain.Page, error) {
	return nil, domain.ErrNotConfigured
}

// initServices builds the adapter stack and the sync engine.
func initServices() error {
	store, err := file.NewStateStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	stateStore = store

	settings := store.Settings()

	kernel := siyuan.NewClient(siyuan.Config{
		BaseURL: settings.SiyuanURL,
		Token:   settings.SiyuanToken,
	})
	docs := siyuan.NewDocumentStore(kernel)
	localiser := services.NewLocaliser(fetch.NewFetcher(), siyuan.NewUploader(kernel))

	var source driven.SourceClient = unconfiguredSource{}
	if settings.Configured() {
		client, err := omnivore.NewClient(omnivore.Config{
			Endpoint: settings.Endpoint,
			APIKey:   settings.APIKey,
		})
		if err != nil {
			return fmt.Errorf("create source client: %w", err)
		}
		source = client
	}
	sourceClient = source

	syncer = services.NewSyncEngine(source, docs, stateStore, localiser, newRenderer)
	syncScheduler = services.NewScheduler(syncer)
	return nil
}

func newRenderer(s domain.Settings) driven.Renderer {
	return render.New(s)
}

// dryRunSyncer builds a one-shot engine that renders and routes into an
// in-memory store, leaving the kernel and the persisted cursor untouched.
func dryRunSyncer() driving.Syncer {
	source := sourceClient
	if source == nil {
		source = unconfiguredSource{}
	}
	scratch := memory.NewStateStore()
	_ = scratch.SaveSettings(stateStore.Settings())
	_ = scratch.SaveSyncState(stateStore.SyncState())
	return services.NewSyncEngine(source, memory.NewDocumentStore(), scratch,
		services.NewLocaliser(nil, nil), newRenderer)
}
