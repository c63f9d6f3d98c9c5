package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/mp-replay-go/replay"
)

var (
	validateVerbose bool
	validateQuiet   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate <replay> [replay2 ...]",
		Short: "Validate replay archives",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
	cmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "Quiet mode (errors only)")

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0

	for _, arg := range args {
		file := resolvePath(arg)
		if _, err := os.Stat(file); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: file not found\n", file)
			failed++
			continue
		}

		if validateVerbose {
			fmt.Fprintf(out, "Validating %s...\n", file)
		}

		var err error
		if validateQuiet {
			err = replay.ValidateFileQuiet(file)
		} else {
			err = replay.ValidateFile(file)
		}

		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", filepath.Base(file), err)
			failed++
		} else if !validateQuiet {
			fmt.Fprintf(out, "%s: valid\n", filepath.Base(file))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d replay files invalid", failed, len(args))
	}
	if !validateQuiet && len(args) > 1 {
		fmt.Fprintf(out, "\nAll %d replay files are valid!\n", len(args))
	}
	return nil
}
