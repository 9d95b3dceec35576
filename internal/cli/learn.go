package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bob/config"
	"bob/internal/adapter/git"
	"bob/internal/usecase"
)

var learnCmd = &cobra.Command{
	Use:   "learn <repo-url>",
	Short: "Clone a repository and analyze it",
	Long: `Clone a git repository into the repositories directory (once) and analyze
every source file in it. The results share the analysis store of the root
directory, so 'bob symbols' searches learned repositories too.

A token for private repositories is read from the environment variable named
by learn.token_env (GITHUB_TOKEN by default); a .env file is honored.

Examples:
  bob learn https://github.com/owner/repo.git`,
	Args: cobra.ExactArgs(1),
	RunE: runLearn,
}

func init() {
	rootCmd.AddCommand(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	reposDir := cfg.Learn.ReposDir
	if !filepath.IsAbs(reposDir) {
		reposDir = filepath.Join(GetRootDir(), reposDir)
	}

	var token string
	if cfg.Learn.TokenEnv != "" {
		token = os.Getenv(cfg.Learn.TokenEnv)
	}

	st, err := openStore(GetRootDir(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	scanUC, err := newScanUseCase(st, cfg)
	if err != nil {
		return err
	}

	learnUC := usecase.NewLearnUseCase(git.NewCloner(reposDir, token, cfg.Learn.Depth), scanUC)

	result, err := learnUC.Learn(cmd.Context(), args[0], newProgress("Learning"))
	if err != nil {
		return err
	}

	fmt.Printf("\nRepository: %s\n", result.RepoPath)
	printScanResult(result.ScanResult, config.StoreDBPath(GetRootDir()))
	return nil
}
