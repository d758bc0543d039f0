package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "unlock [code]",
		Short: "Enter a secret code",
		Long: "Enter a secret code. The code can be a positional arg or piped via stdin. " +
			"Each code unlocks its slides and those of every earlier code. One typo is forgiven.",
		Run: runUnlock,
	}

	RootCmd.AddCommand(cmd)
}

// unlockResult is the JSON shape printed by unlock.
type unlockResult struct {
	OK     bool   `json:"ok"`
	Result string `json:"result"`
	Code   string `json:"code,omitempty"`
	Notice string `json:"notice,omitempty"`
	Slides []int  `json:"slides,omitempty"`
}

func runUnlock(cmd *cobra.Command, args []string) {
	var input string
	if len(args) > 0 {
		input = strings.Join(args, " ")
	} else if in := cmd.InOrStdin(); piped(in) {
		b, err := io.ReadAll(in)
		if err != nil {
			exitErr("read stdin", err)
		}
		input = string(b)
	}

	c, s, err := openCompanion(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	out, err := c.Submit(cmd.Context(), input)
	if err != nil {
		exitErr("unlock", err)
	}

	w := cmd.OutOrStdout()
	res := unlockResult{
		OK:     out.Result.Matched(),
		Result: out.Result.String(),
		Notice: out.Notice,
		Slides: out.Slides,
	}
	if out.Entry != nil {
		res.Code = out.Entry.Code
	}

	if textOutput() {
		// blank input is ignored silently
		if out.Notice != "" {
			fmt.Fprintln(w, out.Notice)
		}
	} else {
		printJSON(w, res)
	}
}

// piped reports whether r can be read without waiting on a terminal.
func piped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}
