package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bob/internal/adapter/analyzer"
)

var detectScores bool

var detectCmd = &cobra.Command{
	Use:   "detect [file|-]",
	Short: "Detect the language of source code",
	Long: `Score source code against each language's signals and print the winner.
Code without any signal is reported as unknown.

Examples:
  bob detect script.txt
  echo 'fn main() { let mut x = 1; }' | bob detect --scores`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().BoolVar(&detectScores, "scores", false, "print the score of every language")
}

func runDetect(cmd *cobra.Command, args []string) error {
	code, _, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	a := analyzer.New()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, a.Detect(code))

	if detectScores {
		scores := a.DetectionScores(code)
		for _, lang := range analyzer.DefaultRules().DetectionOrder() {
			fmt.Fprintf(out, "  %-12s %d\n", lang, scores[lang])
		}
	}
	return nil
}
