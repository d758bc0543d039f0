package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Lock all slides again",
		Run:   runForget,
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	RootCmd.AddCommand(cmd)
}

func runForget(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")

	c, s, err := openCompanion(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	if !yes {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", c.Strings().ForgetConfirm)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), `{"ok":false,"forgotten":false}`)
			return
		}
	}

	if err := c.Forget(cmd.Context()); err != nil {
		exitErr("forget", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true,"forgotten":true}`)
}
