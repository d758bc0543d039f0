package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/talk-companion/internal/logging"
	"github.com/rcliao/talk-companion/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the companion page and its JSON API",
		Long:  "Serve the site root (index page and content/ tree) together with the unlock API on --addr.",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: $TALK_COMPANION_ADDR or 127.0.0.1:8080)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Addr
	}

	c, s, err := openCompanion(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	var static http.Handler
	if cfg.ContentURL == "" {
		static = http.FileServer(http.Dir(cfg.ContentDir))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(c, static, *logging.FromContext(ctx))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		exitErr("serve", err)
	}
}
