package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rbarena/internal/render"
	"github.com/Sumatoshi-tech/rbarena/internal/script"
	"github.com/Sumatoshi-tech/rbarena/pkg/observability"
)

// ErrScriptFailed is returned when at least one step missed its expectation.
var ErrScriptFailed = errors.New("script failed")

// RunCommand holds the configuration for the run command.
type RunCommand struct {
	globals *Globals

	format    string
	plotPath  string
	noColor   bool
	showTree  bool
	hibernate bool
}

// NewRunCommand creates the run command.
func NewRunCommand(globals *Globals) *cobra.Command {
	rc := &RunCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "run [script.yaml]",
		Short: "Run a script of tree operations",
		Long: `Run the steps of a YAML script against a fresh tree and report each result.
Without a script file the built-in demo runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.format, "format", "", "Output format: table, plain, json (default from config)")
	cmd.Flags().StringVar(&rc.plotPath, "plot", "", "Write an HTML plot of the final tree to this file")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&rc.showTree, "show-tree", false, "Print the final tree after the report")
	cmd.Flags().BoolVar(&rc.hibernate, "hibernate", false, "Hibernate and boot the tree after the last step")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	scr, err := loadScript(args)
	if err != nil {
		return err
	}

	sess, err := rc.globals.open(cmd, observability.ModeRun)
	if err != nil {
		return err
	}
	defer sess.close()

	if cmd.Flags().Changed("format") {
		sess.cfg.Output.Format = rc.format

		if err := sess.cfg.Validate(); err != nil {
			return fmt.Errorf("run flags: %w", err)
		}
	}

	report, err := script.Run(cmd.Context(), scr, script.Options{
		Logger:    sess.providers.Logger,
		Tracer:    sess.providers.Tracer,
		Metrics:   sess.metrics,
		Capacity:  sess.cfg.Tree.Capacity,
		Hibernate: rc.hibernate || sess.cfg.Tree.Hibernate,
	})
	if err != nil {
		return err
	}

	if !rc.globals.Quiet {
		renderErr := render.Report(cmd.OutOrStdout(), report, render.Options{
			Format:   sess.cfg.Output.Format,
			Color:    sess.cfg.Output.Color && !rc.noColor,
			ShowTree: rc.showTree,
		})
		if renderErr != nil {
			return renderErr
		}
	}

	if rc.plotPath != "" {
		if plotErr := writePlot(rc.plotPath, report); plotErr != nil {
			return plotErr
		}

		sess.providers.Logger.Info("tree plot written", "path", rc.plotPath)
	}

	if report.Failures > 0 {
		return fmt.Errorf("%w: %d of %d steps", ErrScriptFailed, report.Failures, len(report.Steps))
	}

	return nil
}

func loadScript(args []string) (*script.Script, error) {
	if len(args) == 0 {
		return script.Default(), nil
	}

	return script.ParseFile(args[0])
}

func writePlot(path string, report *script.Report) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close plot file: %w", closeErr)
		}
	}()

	title := report.Name
	if title == "" {
		title = "rbarena"
	}

	return render.Plot(file, report.Tree().Shape(), title)
}
