package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rcliao/talk-companion/internal/model"
	"github.com/rcliao/talk-companion/internal/store"
)

type testEnv struct {
	db      string
	content string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	site := filepath.Join(dir, "site")
	for _, p := range []string{"content/en/slide1.html", "content/en/slide4.html", "content/ca/slide2.html"} {
		full := filepath.Join(site, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("<p>"+p+"</p>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return testEnv{db: filepath.Join(dir, "state.db"), content: site}
}

// run executes the root command and returns stdout.
func (e testEnv) run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, _ := e.exec(t, stdin, args...)
	return out
}

// exec executes the root command and returns stdout and stderr.
func (e testEnv) exec(t *testing.T, stdin string, args ...string) (string, string) {
	t.Helper()
	resetFlags(RootCmd)
	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetIn(strings.NewReader(stdin))
	full := append([]string{"--db", e.db, "--content", e.content, "--format", "json", "--log-level", "error"}, args...)
	RootCmd.SetArgs(full)
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v (stderr: %s)", args, err, errOut.String())
	}
	return out.String(), errOut.String()
}

// resetFlags restores every flag to its default, since cobra keeps parsed
// values on the package-level command tree between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestUnlockCommand(t *testing.T) {
	env := newTestEnv(t)

	var res unlockResult
	if err := json.Unmarshal([]byte(env.run(t, "", "unlock", "gaia")), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.OK || res.Result != "exact" || res.Code != "GAIA" {
		t.Errorf("unexpected result %+v", res)
	}
	if len(res.Slides) != 5 || res.Slides[0] != 1 || res.Slides[4] != 5 {
		t.Errorf("expected slides 1-5, got %v", res.Slides)
	}

	json.Unmarshal([]byte(env.run(t, "", "unlock", "GALAXI")), &res)
	if res.Result != "fuzzy" || res.Code != "GALAXY" {
		t.Errorf("expected fuzzy GALAXY, got %+v", res)
	}

	res = unlockResult{}
	json.Unmarshal([]byte(env.run(t, "", "unlock", "nonsense")), &res)
	if res.OK || res.Result != "wrong" || res.Notice == "" {
		t.Errorf("expected wrong code notice, got %+v", res)
	}
}

func TestStatusLinksAndForget(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "", "unlock", "GAIA")

	var st model.State
	if err := json.Unmarshal([]byte(env.run(t, "", "status")), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(st.UnlockedSlides) != 5 {
		t.Errorf("expected 5 unlocked slides, got %v", st.UnlockedSlides)
	}

	var links []struct {
		Slide int    `json:"slide"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal([]byte(env.run(t, "", "links")), &links); err != nil {
		t.Fatalf("decode links: %v", err)
	}
	if len(links) != 2 || links[0].Slide != 1 || links[1].Slide != 4 {
		t.Errorf("expected links for slides 1 and 4, got %+v", links)
	}

	if got := env.run(t, "", "open", "4"); !strings.Contains(got, "slide4.html") {
		t.Errorf("expected slide 4 content, got %q", got)
	}

	// declined confirmation keeps the slides
	env.run(t, "n\n", "forget")
	json.Unmarshal([]byte(env.run(t, "", "status")), &st)
	if len(st.UnlockedSlides) != 5 {
		t.Errorf("declined forget must not clear, got %v", st.UnlockedSlides)
	}

	env.run(t, "y\n", "forget")
	st = model.State{}
	json.Unmarshal([]byte(env.run(t, "", "status")), &st)
	if len(st.UnlockedSlides) != 0 {
		t.Errorf("expected no unlocked slides, got %v", st.UnlockedSlides)
	}
}

func TestLangCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "", "unlock", "WELCOME")

	if got := env.run(t, "", "lang", "ca-ES"); !strings.Contains(got, `"language":"ca"`) {
		t.Errorf("unexpected lang output %q", got)
	}

	var links []struct {
		Slide int `json:"slide"`
	}
	json.Unmarshal([]byte(env.run(t, "", "links")), &links)
	if len(links) != 1 || links[0].Slide != 2 {
		t.Errorf("expected catalan link for slide 2, got %+v", links)
	}
}

func TestHistoryExportImport(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "", "unlock", "WELCOME")
	env.run(t, "", "unlock", "oops")

	var events []model.Event
	if err := json.Unmarshal([]byte(env.run(t, "", "history")), &events); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(events) != 2 || events[0].Kind != model.EventWrong {
		t.Errorf("unexpected history %+v", events)
	}

	exported := env.run(t, "", "export")
	var x store.Export
	if err := json.Unmarshal([]byte(exported), &x); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(x.Events) != 2 || len(x.State.UnlockedSlides) != 3 {
		t.Errorf("unexpected export %+v", x)
	}

	other := newTestEnv(t)
	if got := other.run(t, exported, "import"); !strings.Contains(got, `"imported":2`) {
		t.Errorf("unexpected import output %q", got)
	}
	var st model.State
	json.Unmarshal([]byte(other.run(t, "", "status")), &st)
	if len(st.UnlockedSlides) != 3 {
		t.Errorf("expected imported slides, got %v", st.UnlockedSlides)
	}
}

func TestCodesCommand(t *testing.T) {
	env := newTestEnv(t)
	var cat model.Catalog
	if err := json.Unmarshal([]byte(env.run(t, "", "codes")), &cat); err != nil {
		t.Fatalf("decode codes: %v", err)
	}
	if len(cat) != 10 || cat[0].Code != "WELCOME" {
		t.Errorf("unexpected catalog %+v", cat)
	}
}

func TestUnlockFromStdin(t *testing.T) {
	env := newTestEnv(t)

	var res unlockResult
	if err := json.Unmarshal([]byte(env.run(t, "gaia\n", "unlock")), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.OK || res.Code != "GAIA" {
		t.Errorf("expected GAIA from stdin, got %+v", res)
	}
}

func TestForgetYesDoesNotCarryOver(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "", "unlock", "GAIA")
	env.run(t, "", "forget", "--yes")
	env.run(t, "", "unlock", "GAIA")

	out := env.run(t, "n\n", "forget")
	if !strings.Contains(out, `"forgotten":false`) {
		t.Errorf("expected prompt to decline, got %s", out)
	}
}

func TestCommandsLogThroughConfiguredLogger(t *testing.T) {
	env := newTestEnv(t)
	s, err := store.NewSQLiteStore(env.db)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveState(t.Context(), model.State{UnlockedSlides: []int{1}, Language: "xx"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	_, stderr := env.exec(t, "", "--log-level", "warn", "status")
	if !strings.Contains(stderr, "Unsupported stored language") {
		t.Errorf("expected warning on stderr, got %q", stderr)
	}
}
