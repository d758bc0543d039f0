package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "List slide explanations available for the unlocked slides",
		Run:   runLinks,
	}

	RootCmd.AddCommand(cmd)
}

func runLinks(cmd *cobra.Command, args []string) {
	c, s, err := openCompanion(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	w := cmd.OutOrStdout()
	if textOutput() {
		fmt.Fprintln(cmd.ErrOrStderr(), c.Strings().LoadingLinks)
	}

	links, _, err := c.Refresh(cmd.Context())
	if err != nil {
		exitErr("links", err)
	}

	if textOutput() {
		for _, l := range links {
			fmt.Fprintf(w, "%s\t%s\n", l.Label, l.Path)
		}
		return
	}
	printJSON(w, links)
}
