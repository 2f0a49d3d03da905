package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/swen746/repo-miner/internal/config"
	"github.com/swen746/repo-miner/internal/domain"
	"github.com/swen746/repo-miner/internal/gateway"
	"github.com/swen746/repo-miner/internal/storage"
	"github.com/swen746/repo-miner/internal/usecase"
)

var fetchIssuesCmd = &cobra.Command{
	Use:   "fetch-issues",
	Short: "Fetch issues and save to CSV",
	Long: `Fetches the issue history of a repository filtered by lifecycle state,
excludes pull requests, computes the open duration of closed issues and
writes the table to a CSV file.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		repo, _ := cmd.Flags().GetString("repo")
		state, _ := cmd.Flags().GetString("state")
		max, _ := cmd.Flags().GetInt("max")
		out, _ := cmd.Flags().GetString("out")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		source, err := gateway.NewGateway(cfg.GithubToken, cfg.APIBaseURL, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		miner := usecase.NewMiner(source, logger)

		issues, err := miner.FetchIssues(ctx, repo, state, max)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch issues for %s: %v\n", repo, err)
			os.Exit(1)
		}
		if err := storage.WriteIssues(out, issues); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write issues to %s: %v\n", out, err)
			os.Exit(1)
		}

		fmt.Printf("Saved %d issues to %s\n", len(issues), out)
	},
}

func init() {
	rootCmd.AddCommand(fetchIssuesCmd)
	fetchIssuesCmd.Flags().StringP("repo", "r", "", "Repository in owner/name format (required)")
	fetchIssuesCmd.Flags().String("state", domain.IssueStateAll, "Issue state filter: all, open or closed")
	fetchIssuesCmd.Flags().Int("max", 0, "Max number of issues to fetch (0 = no limit)")
	fetchIssuesCmd.Flags().StringP("out", "o", "", "Path to output issues CSV (required)")
	fetchIssuesCmd.MarkFlagRequired("repo")
	fetchIssuesCmd.MarkFlagRequired("out")
}
