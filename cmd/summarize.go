package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/swen746/repo-miner/internal/domain"
	"github.com/swen746/repo-miner/internal/storage"
	"github.com/swen746/repo-miner/internal/usecase"
	"golang.org/x/sync/errgroup"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize previously fetched commit and issue tables",
	Long: `Loads a commits CSV and an issues CSV (as written by fetch-commits and
fetch-issues) and prints aggregate statistics: top committers, issue close
rate and average open duration.`,
	Run: func(cmd *cobra.Command, args []string) {
		commitsPath, _ := cmd.Flags().GetString("commits")
		issuesPath, _ := cmd.Flags().GetString("issues")

		// The two tables are independent files; load them concurrently.
		var commits []domain.CommitRecord
		var issues []domain.IssueRecord
		var eg errgroup.Group
		eg.Go(func() error {
			var err error
			commits, err = storage.ReadCommits(commitsPath)
			return err
		})
		eg.Go(func() error {
			var err error
			issues, err = storage.ReadIssues(issuesPath)
			return err
		})
		if err := eg.Wait(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load tables: %v\n", err)
			os.Exit(1)
		}

		report := usecase.Summarize(commits, issues)
		fmt.Print(report)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().String("commits", "", "Path to the commits CSV (required)")
	summarizeCmd.Flags().String("issues", "", "Path to the issues CSV (required)")
	summarizeCmd.MarkFlagRequired("commits")
	summarizeCmd.MarkFlagRequired("issues")
}
