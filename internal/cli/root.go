package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inkdeck/internal/config"
	"inkdeck/internal/format"
	"inkdeck/internal/remote"
	"inkdeck/internal/tui"
)

type App struct {
	Dir        string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "inkdeck",
		Short:        "Terminal authoring deck: ordered fragments, folders, drag to arrange",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive deck
  inkdeck

  # Scriptable commands
  inkdeck fragments list
  inkdeck fragments add --title "Opening scene" --kind note
  inkdeck folders create "Act I"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("INKDECK_DIR", ""), "Path to deck dir (overrides upward .inkdeck discovery)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newFragmentsCmd(app))
	cmd.AddCommand(newFoldersCmd(app))

	return cmd
}

func runTUI(app *App) error {
	settings := config.LoadSettings()
	dir, err := resolveDir(app, settings)
	if err != nil {
		return err
	}
	return tui.Run(dir, settings)
}

// resolveDir picks the deck dir: --dir flag, then the settings file's
// dataDir, then upward discovery.
func resolveDir(app *App, settings config.Settings) (string, error) {
	override := app.Dir
	if override == "" {
		override = settings.DataDir
	}
	return config.DefaultDataDir(override)
}

// openStore resolves the deck dir and returns a store bound to it.
func openStore(app *App) (remote.SQLiteStore, error) {
	dir, err := resolveDir(app, config.LoadSettings())
	if err != nil {
		return remote.SQLiteStore{}, err
	}
	st := remote.SQLiteStore{Dir: dir}
	return st, st.Ensure()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"data": v}, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
