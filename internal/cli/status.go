package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/talk-companion/internal/i18n"
	"github.com/rcliao/talk-companion/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show unlocked slides and the active language",
		Run:   runStatus,
	}

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	c, s, err := openCompanion(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	st := c.State()
	w := cmd.OutOrStdout()
	if !textOutput() {
		printJSON(w, struct {
			model.State
			Title string `json:"title"`
		}{st, c.Strings().AppTitle})
		return
	}

	fmt.Fprintln(w, i18n.For(st.Language).AppTitle)
	if len(st.UnlockedSlides) == 0 {
		fmt.Fprintln(w, "-")
		return
	}
	ids := make([]string, len(st.UnlockedSlides))
	for i, id := range st.UnlockedSlides {
		ids[i] = fmt.Sprint(id)
	}
	fmt.Fprintln(w, strings.Join(ids, " "))
}
