package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/swen746/repo-miner/internal/config"
	"github.com/swen746/repo-miner/internal/gateway"
	"github.com/swen746/repo-miner/internal/storage"
	"github.com/swen746/repo-miner/internal/usecase"
)

var fetchCommitsCmd = &cobra.Command{
	Use:   "fetch-commits",
	Short: "Fetch commits and save to CSV",
	Long: `Fetches the commit history of a repository, normalizes each commit into a
flat record (sha, author, email, date, first message line) and writes the
table to a CSV file.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		repo, _ := cmd.Flags().GetString("repo")
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

		commits, err := miner.FetchCommits(ctx, repo, max)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch commits for %s: %v\n", repo, err)
			os.Exit(1)
		}
		if err := storage.WriteCommits(out, commits); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write commits to %s: %v\n", out, err)
			os.Exit(1)
		}

		fmt.Printf("Saved %d commits to %s\n", len(commits), out)
	},
}

func init() {
	rootCmd.AddCommand(fetchCommitsCmd)
	fetchCommitsCmd.Flags().StringP("repo", "r", "", "Repository in owner/name format (required)")
	fetchCommitsCmd.Flags().Int("max", 0, "Max number of commits to fetch (0 = no limit)")
	fetchCommitsCmd.Flags().StringP("out", "o", "", "Path to output commits CSV (required)")
	fetchCommitsCmd.MarkFlagRequired("repo")
	fetchCommitsCmd.MarkFlagRequired("out")
}
