package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/buildinfo"
	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
)

type globalFlags struct {
	configPath string
	userID     string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Bulk import and review of business income and expenses",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&g.userID, "user", "", "user ID to act as (default user.id from config)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCommand(g),
		newTemplateCommand(),
		newImportCommand(g),
		newAddCommand(g),
		newListCommand(g),
		newDeleteCommand(g),
		newSummaryCommand(g),
		newExportCommand(g),
	)

	return rootCmd
}

// env is what every data command needs: config, a logger and the acting user.
type env struct {
	root   string
	cfg    *config.Config
	logger *log.Logger
	user   model.Principal
}

func (g *globalFlags) load(cmd *cobra.Command) (*env, error) {
	abs, err := filepath.Abs(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	root := filepath.Dir(abs)

	cfg, err := config.Load(abs)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.FromEnv(root)
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger, err := newLogger(cmd, level)
	if err != nil {
		return nil, err
	}

	userID := cfg.User.ID
	if g.userID != "" {
		userID = g.userID
	}

	return &env{root: root, cfg: cfg, logger: logger, user: model.Principal{UserID: userID}}, nil
}

func newLogger(cmd *cobra.Command, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		ReportTimestamp: true,
		Prefix:          "tally",
		Level:           lvl,
	}), nil
}

func (e *env) requireUser() error {
	if e.user.UserID == "" {
		return errors.New("no user: pass --user or set user.id in the config")
	}
	return nil
}

func (e *env) openLedger() (*ledger.Store, error) {
	store, err := ledger.Open(e.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", e.cfg.Database.Path, err)
	}
	return store, nil
}

// record appends to the audit log and, in a git workspace, snapshots it.
// Failures are logged but never fail the command; the data is already saved.
func (e *env) record(entry auditlog.Entry, message string) {
	entry.UserID = e.user.UserID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := auditlog.Append(e.cfg.Audit.Dir, []auditlog.Entry{entry}); err != nil {
		e.logger.Warn("failed to write audit log", "error", err)
		return
	}
	if !gitops.IsRepo(e.root) {
		return
	}
	author := gitops.DefaultAuthor
	if e.user.UserID != "" {
		author.Name = e.user.UserID
	}
	hash, err := gitops.Snapshot(e.root, message, author)
	if err != nil {
		e.logger.Warn("failed to snapshot workspace", "error", err)
		return
	}
	if hash != "" {
		e.logger.Debug("workspace snapshot", "commit", hash)
	}
}

// kindFlag binds --kind and resolves it to a profile.
type kindFlag struct {
	value string
}

func (k *kindFlag) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.value, "kind", string(model.KindExpense), "transaction kind (expense or income)")
}

func (k *kindFlag) profile() (categories.Profile, error) {
	kind, ok := model.ParseKind(k.value)
	if !ok {
		return categories.Profile{}, fmt.Errorf("invalid --kind %q (must be expense or income)", k.value)
	}
	return categories.ForKind(kind)
}
