// Package cli builds the cobra command trees behind the recipes and inventory
// binaries. Both share config loading, logging and API client setup.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/poku-e/kitchen/internal/apiclient"
	"github.com/poku-e/kitchen/internal/config"
	"github.com/poku-e/kitchen/internal/datasync"
	"github.com/poku-e/kitchen/internal/logging"
	"github.com/poku-e/kitchen/internal/tui"
	"github.com/poku-e/kitchen/internal/view"
)

// interactive marks commands that take over the terminal; their logs go to a file.
const interactive = "interactive"

// Options are wiring overrides, mostly for tests.
type Options struct {
	// HTTPClient replaces the client used for the backend and remote imports.
	HTTPClient *http.Client
}

// app is the state shared by every command of one binary.
type app struct {
	name string
	opts Options

	configPath string
	apiURL     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	api    *apiclient.Client
}

func newRoot(name string, opts Options, use, short, long string) (*cobra.Command, *app) {
	a := &app{name: name, opts: opts, logger: zap.NewNop()}
	root := &cobra.Command{
		Use:               use,
		Short:             short,
		Long:              long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Annotations:       map[string]string{interactive: "true"},
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(a.configCmd())
	return root, a
}

// setup loads config, builds the logger and the API client.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log, logging.Options{
		Verbose:     a.verbose,
		Interactive: cmd.Annotations[interactive] == "true",
		App:         a.name,
	})
	if err != nil {
		return err
	}
	a.logger = logger

	clientOpts := []apiclient.Option{apiclient.WithLogger(logger)}
	if a.opts.HTTPClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(a.opts.HTTPClient))
	}
	a.api, err = apiclient.New(cfg.API.BaseURL, cfg.GetTimeout(), clientOpts...)
	if err != nil {
		return err
	}
	logger.Debug("Configured backend",
		zap.String("base_url", a.api.BaseURL()),
		zap.Duration("timeout", cfg.GetTimeout()),
		zap.String("config", path))
	return nil
}

func (a *app) styles() tui.Styles {
	return tui.NewStyles(tui.ThemeFor(a.cfg.UI.Theme))
}

func (a *app) renderer() view.StockRenderer {
	ui := a.cfg.UI
	return view.NewStockRenderer(view.NewFormatter(ui.CurrencySuffix), decimal.NewFromFloat(ui.LowStockThreshold))
}

func (a *app) httpClient() *http.Client {
	if a.opts.HTTPClient != nil {
		return a.opts.HTTPClient
	}
	return &http.Client{Timeout: a.cfg.GetTimeout()}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.resolvedConfigPath())
		},
	})
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective config to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.resolvedConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := a.cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func (a *app) resolvedConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.DefaultPath()
}

// confirmer returns the deletion prompt for cmd: always yes with --yes,
// otherwise a [y/N] question on the command's stdin.
func confirmer(cmd *cobra.Command, yes bool) datasync.ConfirmFunc {
	if yes {
		return datasync.Confirmed
	}
	return func(prompt string) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// removed reports the outcome of a delete; a refusal is not an error.
func removed(cmd *cobra.Command, noun, id string, err error) error {
	switch {
	case errors.Is(err, datasync.ErrDeclined):
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", noun, id)
	return nil
}
