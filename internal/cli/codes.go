package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/talk-companion/internal/catalog"
)

func init() {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List the code catalog in unlock order (for the presenter)",
		Run:   runCodes,
	}

	cmd.Flags().Bool("check", false, "Only validate the catalog")

	RootCmd.AddCommand(cmd)
}

func runCodes(cmd *cobra.Command, args []string) {
	check, _ := cmd.Flags().GetBool("check")

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		exitErr("catalog", err)
	}

	w := cmd.OutOrStdout()
	if check {
		fmt.Fprintf(w, `{"ok":true,"codes":%d}`+"\n", len(cat))
		return
	}
	if textOutput() {
		for i, e := range cat {
			fmt.Fprintf(w, "%d\t%s\t%v\t%s\n", i+1, e.Code, e.Slides, e.Message)
		}
		return
	}
	printJSON(w, cat)
}
