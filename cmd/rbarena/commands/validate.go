package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rbarena/internal/script"
	"github.com/Sumatoshi-tech/rbarena/pkg/observability"
)

// ErrInvalidFiles is returned when any checked script fails to parse.
var ErrInvalidFiles = errors.New("invalid script files")

// ValidateCommand holds the configuration for the validate command.
type ValidateCommand struct {
	globals *Globals
	noColor bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(globals *Globals) *cobra.Command {
	vc := &ValidateCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "validate <script.yaml>...",
		Short: "Check script files against the script schema",
		Args:  cobra.MinimumNArgs(1),
		RunE:  vc.run,
	}

	cmd.Flags().BoolVar(&vc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (vc *ValidateCommand) run(cmd *cobra.Command, args []string) error {
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)

	if vc.noColor {
		good.DisableColor()
		bad.DisableColor()
	}

	sess, err := vc.globals.open(cmd, observability.ModeValidate)
	if err != nil {
		return err
	}
	defer sess.close()

	out := cmd.OutOrStdout()
	invalid := 0

	for _, path := range args {
		scr, err := script.ParseFile(path)
		if err != nil {
			invalid++

			sess.providers.Logger.Debug("script rejected", "path", path, "error", err)

			if vc.globals.Quiet {
				continue
			}

			bad.Fprintf(out, "%s: invalid\n", path)

			var schemaErr *script.SchemaError
			if errors.As(err, &schemaErr) {
				for _, problem := range schemaErr.Problems {
					fmt.Fprintf(out, "  - %s\n", problem)
				}
			} else {
				fmt.Fprintf(out, "  - %v\n", err)
			}

			continue
		}

		if !vc.globals.Quiet {
			good.Fprintf(out, "%s: ok (%d steps)\n", path, len(scr.Steps))
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidFiles, invalid, len(args))
	}

	return nil
}
