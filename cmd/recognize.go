package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akranjan/facemark/internal/attendance"
	"github.com/akranjan/facemark/internal/config"
	"github.com/akranjan/facemark/internal/frame"
	"github.com/akranjan/facemark/internal/recognizer"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image-path>",
	Short: "Mark attendance from a single captured frame",
	Long: `Submit one captured frame to the recognition service, report who was
marked present and who already had a mark today, and print the refreshed
attendance ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Backend.URL == "" {
		return errors.New("BACKEND_URL environment variable is required")
	}

	f, err := frame.FromFile(args[0])
	if err != nil {
		if errors.Is(err, frame.ErrMalformedFrame) {
			return fmt.Errorf("%s is not a valid image", args[0])
		}
		return err
	}

	client, err := recognizer.NewWithCapture(cfg.Backend.URL, captureDir)
	if err != nil {
		return fmt.Errorf("failed to create recognition client: %w", err)
	}

	ctx := context.Background()
	result, err := client.Recognize(ctx, f)
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	collector := attendance.NewCollector()
	reconciler := attendance.NewReconciler(client, collector)
	summary := reconciler.Apply(ctx, result)

	for _, n := range collector.Drain() {
		fmt.Printf("[%s] %s\n", n.Level, n.Message)
	}

	if summary.NoMatch {
		fmt.Println("No student found in this frame.")
	}
	printCandidates("Marked present", summary.NewlyRecognized)
	printCandidates("Already present today", summary.AlreadyPresent)

	ledger := reconciler.Ledger()
	fmt.Printf("\nToday's ledger (%d present):\n", len(ledger))
	for _, record := range ledger {
		fmt.Printf("  %-20s %-8s %s (score %.2f)\n",
			record.StudentName, record.RollNumber, record.Time, record.SimilarityScore)
	}
	return nil
}

func printCandidates(title string, candidates []recognizer.Candidate) {
	if len(candidates) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, c := range candidates {
		fmt.Printf("  %-20s %-8s score %.2f\n", c.Name, c.RollNumber, c.SimilarityScore)
	}
}
