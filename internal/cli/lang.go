package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/talk-companion/internal/i18n"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lang [locale]",
		Short: "Show or switch the display language",
		Long:  "Without an argument, list the supported languages. With one (en, ca, ca-ES...), switch to it.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runLang,
	}

	RootCmd.AddCommand(cmd)
}

func runLang(cmd *cobra.Command, args []string) {
	c, s, err := openCompanion(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	if len(args) == 0 {
		printJSON(cmd.OutOrStdout(), map[string]any{
			"active":    c.State().Language,
			"supported": i18n.Supported(),
		})
		return
	}

	loc, err := i18n.ParseLocale(args[0])
	if err != nil {
		exitErr("lang", err)
	}
	if err := c.SetLanguage(cmd.Context(), loc); err != nil {
		exitErr("lang", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"language":%q}`+"\n", loc)
}
