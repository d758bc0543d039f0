package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "open <slide>",
		Short: "Print the explanation for an unlocked slide",
		Args:  cobra.ExactArgs(1),
		Run:   runOpen,
	}

	RootCmd.AddCommand(cmd)
}

func runOpen(cmd *cobra.Command, args []string) {
	slide, err := strconv.Atoi(args[0])
	if err != nil || slide <= 0 {
		exitErr("open", fmt.Errorf("invalid slide %q", args[0]))
	}

	c, s, err := openCompanion(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	html, ok := c.Open(cmd.Context(), slide)
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), html)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), html)
}
