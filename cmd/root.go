/*
Copyright © 2026 mkmn

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mkmn/cf/internal/clone"
	"github.com/mkmn/cf/version"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	archiveFlag     bool
	backupFlag      bool
	forceFlag       bool
	interactiveFlag bool
	recursiveFlag   bool
	recurseFlag     bool // hidden lower-case alias for -R
	preserveFlag    bool
	updateFlag      bool
	debugFlag       bool
)

var rootCmd = &cobra.Command{
	Use:   "cf [-a] [-b] [-f] [-i] [-R] [-p] [-u] [-d] <source> <target>",
	Short: "Copy files and directories using copy-on-write clones",
	Long: `cf copies files and directories using the copy-on-write clone
primitive of the underlying filesystem (clonefile on APFS, FICLONE on Btrfs
and XFS). Cloned files share data blocks with their source until either side
is modified, so copies complete nearly instantly and occupy no extra space.

Examples:
  cf file.txt copy.txt          Clone a single file
  cf -R src/ dst/               Clone a directory tree
  cf -a src/ dst/               Archive mode (recursive, preserve permissions)
  cf -b -f file.txt copy.txt    Overwrite, keeping the old copy at copy.txt~
  cf -u -R src/ dst/            Copy only files newer than their targets`,
	RunE:         runRoot,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	Version:      version.Version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVarP(&archiveFlag, "archive", "a", false, "archive mode (recursive and preserve permissions)")
	rootCmd.Flags().BoolVarP(&backupFlag, "backup", "b", false, "back up an existing target to <target>~ before overwriting")
	rootCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "overwrite existing targets")
	rootCmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "prompt before overwriting an existing target")
	rootCmd.Flags().BoolVarP(&recursiveFlag, "recursive", "R", false, "copy directories recursively")
	rootCmd.Flags().BoolVarP(&recurseFlag, "recurse", "r", false, "copy directories recursively")
	if err := rootCmd.Flags().MarkHidden("recurse"); err != nil {
		panic(err)
	}
	rootCmd.Flags().BoolVarP(&preserveFlag, "preserve", "p", false, "preserve file permission bits")
	rootCmd.Flags().BoolVarP(&updateFlag, "update", "u", false, "copy only when the source file is newer than the target")
	rootCmd.Flags().BoolVarP(&debugFlag, "debug", "d", false, "enable debug tracing and the action report")
}

func runRoot(cmd *cobra.Command, args []string) error {
	source, target := args[0], args[1]
	policy := buildPolicy()

	logger := logrus.New()
	logger.SetOutput(cmd.OutOrStdout())
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debugFlag {
		logger.SetLevel(logrus.DebugLevel)
	}

	engine := clone.New(logger)
	err := engine.Run(source, target, policy)

	if debugFlag {
		if renderErr := renderReport(cmd.OutOrStdout(), engine.Actions()); renderErr != nil {
			return renderErr
		}
	}

	var skip *clone.SkipError
	if errors.As(err, &skip) {
		// Declining an overwrite is an outcome, not a failure.
		fmt.Fprintf(cmd.OutOrStdout(), "Skipping %s\n", skip.Path)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully copied from %s to %s\n", source, target)
	return nil
}

// buildPolicy maps the parsed flags to a copy policy.
func buildPolicy() clone.Policy {
	policy := clone.Policy{
		Recursive:   recursiveFlag || recurseFlag,
		Backup:      backupFlag,
		Force:       forceFlag,
		Interactive: interactiveFlag,
		Preserve:    preserveFlag,
		Update:      updateFlag,
	}
	if archiveFlag {
		policy = policy.Archive()
	}
	return policy
}

// renderReport prints the per-file action report.
func renderReport(w io.Writer, actions []clone.Action) error {
	if len(actions) == 0 {
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ACTION", "PATH"}),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader:     tw.Off,
					ShowFooter:     tw.Off,
					BetweenRows:    tw.Off,
					BetweenColumns: tw.Off,
				},
				Lines: tw.Lines{
					ShowTop:        tw.Off,
					ShowBottom:     tw.Off,
					ShowHeaderLine: tw.Off,
					ShowFooterLine: tw.Off,
				},
			},
		}))

	for _, action := range actions {
		if err := table.Append([]string{string(action.Op), action.Path}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
