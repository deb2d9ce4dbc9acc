package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"algoprep/internal/judge"
	"algoprep/internal/platform/config"
	"algoprep/internal/playback"
	"algoprep/internal/render"
	"algoprep/internal/steps"
	"algoprep/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	stepsFile string
	apiURL    string
	problemID string
	title     string
	interval  time.Duration
	asJSON    bool
	language  string
	stdinFile string
)

func main() {
	config.Load()

	rootCmd := &cobra.Command{
		Use:   "prepctl",
		Short: "algorithm practice toolbox",
	}

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play a step sequence in the terminal",
		RunE:  playSteps,
	}
	playCmd.Flags().StringVar(&stepsFile, "file", "", "steps file (.json, .yaml)")
	playCmd.Flags().StringVar(&apiURL, "api", "", "server base url, e.g. http://localhost:8080")
	playCmd.Flags().StringVar(&problemID, "problem", "", "problem id to fetch from --api")
	playCmd.Flags().StringVar(&title, "title", "", "title shown above the player")
	playCmd.Flags().DurationVar(&interval, "interval", 0, "base step interval (default from PLAYBACK_BASE_INTERVAL)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "print every frame of a step sequence",
		RunE:  renderSteps,
	}
	renderCmd.Flags().StringVar(&stepsFile, "file", "", "steps file (.json, .yaml)")
	renderCmd.Flags().BoolVar(&asJSON, "json", false, "print frames as json")

	runCmd := &cobra.Command{
		Use:   "run [source]",
		Short: "execute a source file on the remote judge",
		Args:  cobra.ExactArgs(1),
		RunE:  runSource,
	}
	runCmd.Flags().StringVar(&language, "language", "javascript", "language slug")
	runCmd.Flags().StringVar(&stdinFile, "stdin", "", "file passed to the program as stdin")

	languagesCmd := &cobra.Command{
		Use:   "languages",
		Short: "list supported languages",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LANGUAGE\tJUDGE ID")
			for _, slug := range judge.Languages() {
				fmt.Fprintf(w, "%s\t%d\n", slug, judge.LanguageID(slug))
			}
			w.Flush()
		},
	}

	rootCmd.AddCommand(playCmd, renderCmd, runCmd, languagesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSequence(ctx context.Context) (steps.Sequence, string, error) {
	switch {
	case stepsFile != "":
		seq, err := steps.LoadFile(stepsFile)
		return seq, stepsFile, err
	case apiURL != "" && problemID != "":
		return fetchProblem(ctx, apiURL, problemID)
	default:
		return steps.Sequence{}, "", errors.New("either --file or --api with --problem is required")
	}
}

func fetchProblem(ctx context.Context, base, id string) (steps.Sequence, string, error) {
	endpoint := strings.TrimSuffix(base, "/") + "/api/v1/problems/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return steps.Sequence{}, "", errors.Wrap(err, "build request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return steps.Sequence{}, "", errors.Wrapf(err, "fetch problem %s", id)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return steps.Sequence{}, "", errors.Wrap(err, "read problem")
	}
	if resp.StatusCode != http.StatusOK {
		return steps.Sequence{}, "", errors.Newf("fetch problem %s: status %d: %s",
			id, resp.StatusCode, gjson.GetBytes(body, "error").String())
	}
	stepsJSON := gjson.GetBytes(body, "steps")
	if !stepsJSON.IsArray() {
		return steps.Sequence{}, "", errors.Newf("problem %s has no steps", id)
	}
	seq, err := steps.Decode([]byte(stepsJSON.Raw))
	return seq, gjson.GetBytes(body, "title").String(), err
}

func playSteps(cmd *cobra.Command, args []string) error {
	seq, name, err := loadSequence(cmd.Context())
	if err != nil {
		return err
	}
	if title != "" {
		name = title
	}
	base := interval
	if base <= 0 {
		base = config.AppConfig.PlaybackBaseInterval
	}

	player := tui.NewPlayer(name, seq, base, playback.WithMinInterval(config.AppConfig.PlaybackMinInterval))
	defer player.Close()

	p := tea.NewProgram(player)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func renderSteps(cmd *cobra.Command, args []string) error {
	seq, _, err := loadSequence(cmd.Context())
	if err != nil {
		return err
	}
	frames := render.Frames(seq.Steps())
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(frames)
	}
	for i, f := range frames {
		fmt.Printf("--- step %d/%d\n%s\n", i+1, len(frames), f.String())
	}
	return nil
}

func runSource(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "read %s", args[0])
	}
	var stdin string
	if stdinFile != "" {
		data, err := os.ReadFile(stdinFile)
		if err != nil {
			return errors.Wrapf(err, "read %s", stdinFile)
		}
		stdin = string(data)
	}

	cfg := config.AppConfig
	client := judge.NewClient(cfg.JudgeAPIURL, cfg.JudgeAPIHost, cfg.JudgeAPIKey, cfg.JudgeTimeout)
	outcome := client.Run(cmd.Context(), judge.Submission{
		SourceCode: string(src),
		LanguageID: judge.LanguageID(language),
		Stdin:      stdin,
	})
	fmt.Println(outcome.Display())
	if outcome.HasError() {
		return errors.Newf("run finished with %s", outcome.Kind)
	}
	return nil
}
