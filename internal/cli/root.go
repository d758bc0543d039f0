// Package cli implements the talk-companion CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/talk-companion/internal/catalog"
	"github.com/rcliao/talk-companion/internal/companion"
	"github.com/rcliao/talk-companion/internal/config"
	"github.com/rcliao/talk-companion/internal/content"
	"github.com/rcliao/talk-companion/internal/logging"
	"github.com/rcliao/talk-companion/internal/store"
)

var (
	cfg config.Config

	dbPath      string
	catalogPath string
	contentDir  string
	contentURL  string
	formatFlag  string
	logLevel    string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "talk-companion",
	Short: "Unlock slide explanations with secret codes",
	Long: "A companion for a slide talk. Type the secret codes announced during the talk to " +
		"unlock explanations for the slides covered so far.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $TALK_COMPANION_DB or ~/.talk-companion/state.db)")
	RootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "Code catalog YAML (default: $TALK_COMPANION_CATALOG or built-in)")
	RootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "Site root holding content/ (default: $TALK_COMPANION_CONTENT or .)")
	RootCmd.PersistentFlags().StringVar(&contentURL, "content-url", "", "Base URL serving content/ (overrides --content)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default: $TALK_COMPANION_LOG_LEVEL or info)")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	if contentDir != "" {
		cfg.ContentDir = contentDir
	}
	if contentURL != "" {
		cfg.ContentURL = contentURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if formatFlag != "json" && formatFlag != "text" {
		return fmt.Errorf("invalid format %q (use json or text)", formatFlag)
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	cmd.SetContext(logging.WithLogger(cmd.Context(), &logger))
	return nil
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

func openSource() (content.Source, error) {
	if cfg.ContentURL != "" {
		return content.NewHTTPSource(cfg.ContentURL, nil)
	}
	return content.NewFSSource(os.DirFS(cfg.ContentDir)), nil
}

// openCompanion wires catalog, store and content into a loaded companion.
// The caller must close the returned store.
func openCompanion(cmd *cobra.Command) (*companion.Companion, *store.SQLiteStore, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	src, err := openSource()
	if err != nil {
		return nil, nil, err
	}
	s, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	c := companion.New(cat, s, src, *logging.FromContext(cmd.Context()))
	if err := c.Load(cmd.Context()); err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("load state: %w", err)
	}
	return c, s, nil
}

func textOutput() bool {
	return formatFlag == "text"
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
