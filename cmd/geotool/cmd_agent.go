package main

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/resource-finder-geocode/internal/agent"
	"github.com/spf13/cobra"
	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/full"
)

func agentConfig(a *app) agent.Config {
	return agent.Config{
		APIKey: a.cfg.GoogleAPIKey,
		Model:  a.cfg.AgentModel,
	}
}

var askCmd = &cobra.Command{
	Use:     "ask MESSAGE...",
	Short:   "Ask the Emergency Resource Finder agent a single question",
	Example: `  geotool ask "Which shelters are near 1600 Amphitheatre Pkwy?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		assistant, err := agent.NewAssistant(cmd.Context(), agentConfig(a), a.tools, a.logger)
		if err != nil {
			return err
		}
		answer, err := assistant.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

var agentCmd = &cobra.Command{
	Use:   "agent [launcher args]",
	Short: "Run the agent through the ADK launcher (console, web, api)",
	Long: `
Hands the Emergency Resource Finder agent to the ADK launcher. Arguments are
passed through unchanged, for example:

  geotool agent console
  geotool agent web api webui
`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		root, err := agent.NewResourceFinder(cmd.Context(), agentConfig(a), a.tools)
		if err != nil {
			return err
		}

		l := full.NewLauncher()
		if err := l.Execute(cmd.Context(), &launcher.Config{AgentLoader: adkagent.NewSingleLoader(root)}, args); err != nil {
			return fmt.Errorf("run failed: %w\n\n%s", err, l.CommandLineSyntax())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd, agentCmd)
}
