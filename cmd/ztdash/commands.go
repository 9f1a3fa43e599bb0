package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ztdash/internal/config"
	"github.com/muurk/ztdash/internal/dashboard"
	"github.com/muurk/ztdash/internal/dispatch"
	"github.com/muurk/ztdash/internal/logging"
	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/refresh"
	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ui"
	"github.com/muurk/ztdash/internal/ztapi"
)

const (
	// centralTokenEnvVar supplies the Central API token when --central-token is not given.
	centralTokenEnvVar = "ZEROTIER_CENTRAL_TOKEN"
	logFileName        = "ztdash.log"
)

// Global flags
var (
	configDir     string
	authTokenPath string
	localURL      string
	centralURL    string
	centralToken  string
	interval      time.Duration
	logLevel      string
	logFile       string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "Configuration directory (default: OS config dir/ztdash)")
	flags.StringVar(&authTokenPath, "authtoken", "", "Path to the node's authtoken.secret")
	flags.StringVar(&localURL, "local-url", "", "Local node API URL (default: "+ztapi.DefaultLocalURL+")")
	flags.StringVar(&centralURL, "central-url", "", "ZeroTier Central API URL (default: "+ztapi.DefaultCentralURL+")")
	flags.StringVar(&centralToken, "central-token", "", "ZeroTier Central API token (or set "+centralTokenEnvVar+")")
	flags.DurationVar(&interval, "interval", config.DefaultRefreshInterval, "Refresh interval, overrides refresh_interval in config.yaml")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); logging is off when unset")
	flags.StringVar(&logFile, "log-file", "", "Log file (default: <config-dir>/"+logFileName+")")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(forgetCmd)
}

// app is everything the commands share after flags and files are read.
type app struct {
	cfgStore *config.Store
	loaded   *config.Loaded
	nodeURL  string
	central  *ztapi.CentralClient
	poller   *refresh.Poller
	mutator  *refresh.Mutator
	// warnings are reported to the operator but never stop the program.
	warnings []error
}

func setup() (*app, error) {
	dir := configDir
	if dir == "" {
		d, err := config.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	file := logFile
	if file == "" {
		file = filepath.Join(dir, logFileName)
	}
	if err := logging.Initialize(logging.Options{Level: logLevel, File: file}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfgStore := config.NewStore(dir, dashboard.ReservedKeys())
	loaded := cfgStore.Load()
	cfg := loaded.Config
	warnings := append([]error(nil), loaded.Warnings...)

	token, err := ztapi.ReadAuthToken(authTokenPath)
	if err != nil {
		logging.Warn("Node auth token unavailable", zap.Error(err))
		warnings = append(warnings, err)
	}

	nodeURL := firstNonEmpty(localURL, cfg.Local.URL, ztapi.DefaultLocalURL)
	local := ztapi.NewLocalClient(nodeURL, token)
	central := ztapi.NewCentralClient(
		firstNonEmpty(centralURL, cfg.Central.URL),
		firstNonEmpty(centralToken, os.Getenv(centralTokenEnvVar)),
		cfg.Central.RequestsPerSecond,
	)

	logging.Info("Configuration loaded",
		zap.String("dir", dir),
		zap.String("node", nodeURL),
		zap.Bool("central", central.Configured()),
		zap.Int("bookmarks", len(loaded.Settings.Bookmarks)),
		zap.Int("bindings", loaded.Bindings.Len()),
		zap.Int("warnings", len(warnings)),
	)

	return &app{
		cfgStore: cfgStore,
		loaded:   loaded,
		nodeURL:  nodeURL,
		central:  central,
		poller: &refresh.Poller{
			Node:      local,
			Directory: central,
			Counters:  netstats.SystemReader{},
			Timeout:   cfg.RequestTimeout,
		},
		mutator: &refresh.Mutator{
			Node:      local,
			Directory: central,
			Timeout:   cfg.RequestTimeout,
		},
		warnings: warnings,
	}, nil
}

// newStateStore builds the view model from the loaded bookmarks and filter.
func (a *app) newStateStore() *state.Store {
	store := state.NewStore(a.loaded.Settings.Bookmarks, state.WithNoticeTTL(a.loaded.Config.NoticeTTL))
	store.SetFilter(a.loaded.Settings.Filter)
	return store
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync()

	store := a.newStateStore()
	for _, w := range a.warnings {
		store.Notify(w)
	}

	var changes <-chan struct{}
	watcher, err := a.cfgStore.Watch()
	if err != nil {
		logging.Warn("Config watch disabled", zap.Error(err))
	} else {
		defer watcher.Close()
		changes = watcher.Changes()
	}

	cfg := a.loaded.Config
	return dashboard.Run(cmd.Context(), dashboard.Deps{
		Store:    store,
		Config:   a.cfgStore,
		Current:  cfg,
		Bindings: a.loaded.Bindings,
		Poller:   a.poller,
		Mutator:  a.mutator,
		Runner:   dispatch.NewRunner(cfg.Shell, cfg.PauseAfterCommand),
		Changes:  changes,
		Interval: intervalOverride(cmd),
	})
}

// listCmd prints the bookmarked networks once
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print bookmarked networks and their status",
	Long: `Poll the local node once and print every bookmarked network with its
status, interface, first address and interface byte totals.

The active filter from the dashboard is applied.`,
	Example: `  # List bookmarked networks
  ztdash list

  # Query a node listening on another port
  ztdash list --local-url http://127.0.0.1:9994`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync()

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Bookmarked networks", "ztdash list", []ui.Param{
		{Key: "Node", Value: a.nodeURL},
		{Key: "Config", Value: a.cfgStore.Dir()},
		{Key: "Filter", Value: a.loaded.Settings.Filter},
	})

	for _, w := range a.warnings {
		p.Println(ui.MutedStyle.Render("  warning: " + w.Error()))
	}

	snap, err := a.poller.Networks(cmd.Context())
	if err != nil {
		p.PrintError("Cannot reach the node", err, troubleshooting(err))
		return fmt.Errorf("poll failed: %w", err)
	}

	store := a.newStateStore()
	store.MergeNetworkSnapshot(snap)
	p.PrintNetworks(store.Visible())

	if unlisted := store.Unlisted(); len(unlisted) > 0 {
		p.Newline()
		p.Println(ui.MutedStyle.Render(fmt.Sprintf("  %d joined network(s) not bookmarked: press i in the dashboard to import", len(unlisted))))
	}
	return nil
}

// bookmarkCmd adds a network id to the bookmark list
var bookmarkCmd = &cobra.Command{
	Use:     "bookmark <network-id>",
	Short:   "Bookmark a network",
	Long:    `Add a 16-digit hex network id to the end of the bookmark list.`,
	Example: `  ztdash bookmark 8056c2e21c000001`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editBookmarks(cmd, args[0], true)
	},
}

// forgetCmd removes a network id from the bookmark list
var forgetCmd = &cobra.Command{
	Use:   "forget <network-id>",
	Short: "Remove a network from the bookmarks",
	Long: `Remove a network id from the bookmark list.

The node is not touched: a joined network stays joined.`,
	Example: `  ztdash forget 8056c2e21c000001`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editBookmarks(cmd, args[0], false)
	},
}

func editBookmarks(cmd *cobra.Command, id string, add bool) error {
	if !ztapi.IsNetworkID(id) {
		return fmt.Errorf("invalid network id %q: expected 16 hex digits", id)
	}

	a, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync()

	p := ui.NewPrinter(cmd.OutOrStdout())
	store := a.newStateStore()

	var changed bool
	var title string
	if add {
		changed = store.AddBookmark(id)
		title = "Bookmarked " + id
		if !changed {
			title = id + " is already bookmarked"
		}
	} else {
		changed = store.Forget(id)
		title = "Forgot " + id
		if !changed {
			title = id + " was not bookmarked"
		}
	}

	if changed {
		if err := a.cfgStore.SaveBookmarks(store.Bookmarks()); err != nil {
			p.PrintError("Cannot save bookmarks", err, []string{
				"Check that " + a.cfgStore.SettingsPath() + " is writable",
			})
			return err
		}
		logging.Info("Bookmarks saved", zap.String("network", id), zap.Bool("added", add))
	}

	p.PrintSuccess(title, []ui.Param{
		{Key: "Bookmarks", Value: fmt.Sprint(len(store.Bookmarks()))},
		{Key: "Settings", Value: a.cfgStore.SettingsPath()},
	})
	return nil
}

// troubleshooting returns hints for the common ways a poll fails.
func troubleshooting(err error) []string {
	var apiErr *ztapi.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	switch apiErr.Type {
	case ztapi.ErrTypeConnectionRefused:
		return []string{
			"Check that the zerotier-one service is running",
			"Use --local-url if the node listens on another address or port",
		}
	case ztapi.ErrTypeAuth:
		if apiErr.Backend == ztapi.BackendCentral {
			return []string{"Check the token given by --central-token or " + centralTokenEnvVar}
		}
		return []string{
			"authtoken.secret is usually readable by root only",
			"Copy it to ~/" + ztapi.UserTokenFile + " or point --authtoken at a readable copy",
		}
	case ztapi.ErrTypeTimeout, ztapi.ErrTypeNetwork:
		return []string{"The node did not answer in time: retry, or raise request_timeout in config.yaml"}
	default:
		return nil
	}
}

// intervalOverride returns --interval when it was given, or zero.
func intervalOverride(cmd *cobra.Command) time.Duration {
	if cmd.Flags().Changed("interval") {
		return interval
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
