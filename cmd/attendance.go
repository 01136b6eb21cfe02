package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akranjan/facemark/internal/config"
	"github.com/akranjan/facemark/internal/recognizer"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "List today's attendance records",
	RunE:  runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
}

func runAttendance(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Backend.URL == "" {
		return errors.New("BACKEND_URL environment variable is required")
	}

	client, err := recognizer.NewWithCapture(cfg.Backend.URL, captureDir)
	if err != nil {
		return fmt.Errorf("failed to create recognition client: %w", err)
	}

	records, err := client.ListAttendance(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records for today.")
		return nil
	}

	fmt.Printf("%-20s %-10s %-25s %s\n", "NAME", "ROLL", "TIME", "SCORE")
	for _, r := range records {
		fmt.Printf("%-20s %-10s %-25s %.2f\n",
			r.StudentName, r.RollNumber, r.Time, r.SimilarityScore)
	}
	fmt.Printf("\nTotal present: %d\n", len(records))
	return nil
}
