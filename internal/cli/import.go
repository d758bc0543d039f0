package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/talk-companion/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import state and history from JSON",
		Long:  "Import state and history from JSON on stdin. Expects the format produced by export. The current state is replaced.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		exitErr("read stdin", err)
	}

	var x store.Export
	if err := json.Unmarshal(data, &x); err != nil {
		exitErr("parse json", err)
	}
	if !x.State.Language.Valid() {
		exitErr("import", fmt.Errorf("unsupported language %q", x.State.Language))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), &x)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
}
