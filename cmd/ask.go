package cmd

import (
	"fmt"
	"strings"

	"charon/internal/agent"
	"charon/internal/llm"
	"charon/internal/outline"
	"charon/internal/outline/languages"
	"charon/internal/session"

	"github.com/spf13/cobra"
)

var (
	flagAskJSON  bool
	flagAskModel string
)

var askCmd = &cobra.Command{
	Use:   "ask <project> <task...>",
	Short: "Ask the file agent which files to change for a task",
	Long: `Ask locates the project, lets the model pick the most relevant source
files, reads them and recommends which files to modify and how.

The session is shown on stderr; the recommendation is written to stdout.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&flagAskJSON, "json", false, "print the full report as JSON")
	askCmd.Flags().StringVar(&flagAskModel, "model", "", "model to use (overrides files_agent.model.model_id)")
	rootCmd.AddCommand(askCmd)
}

func newFileAgent(a *app, tracker *session.Tracker) *agent.FileAgent {
	model := a.cfg.FilesAgent.Model.ModelID
	if flagAskModel != "" {
		model = flagAskModel
	}
	return agent.New(agent.Config{
		Root:     a.root(),
		Resolver: a.resolver,
		Chat:     llm.NewOllamaChat(a.cfg.LLM.OllamaURL, model),
		Outliner: outline.New(languages.Default()),
		Tracker:  tracker,
		Logger:   a.log,
	})
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tracker := session.NewTracker(cmd.ErrOrStderr(), session.StoreSink(a.store))

	project, task := args[0], strings.Join(args[1:], " ")
	rep, err := newFileAgent(a, tracker).Ask(cmd.Context(), project, task)
	a.record("agent", project, rep.Result)
	if err != nil {
		if !rep.Result.Success {
			return errNotResolved
		}
		return err
	}

	if flagAskJSON {
		return writeJSON(cmd.OutOrStdout(), rep)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(rep.Answer))
	return nil
}
