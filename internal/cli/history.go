package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/talk-companion/internal/model"
	"github.com/rcliao/talk-companion/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent submissions, newest first",
		Run:   runHistory,
	}

	cmd.Flags().String("kind", "", "Filter by kind: unlock, wrong, forget, language")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	if kind != "" && !model.ValidEventKinds[kind] {
		exitErr("history", fmt.Errorf("unknown kind %q", kind))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	events, err := s.History(cmd.Context(), store.HistoryParams{Kind: kind, Limit: limit})
	if err != nil {
		exitErr("history", err)
	}

	w := cmd.OutOrStdout()
	if textOutput() {
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%-8s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Kind, e.Code, e.Input)
		}
		return
	}
	if len(events) == 0 {
		fmt.Fprintln(w, "[]")
		return
	}
	printJSON(w, events)
}
