package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akranjan/facemark/internal/config"
	"github.com/akranjan/facemark/internal/names"
	"github.com/akranjan/facemark/internal/recognizer"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List registered students",
	Long: `List the students registered with the recognition service.
The --search filter matches names ignoring case and diacritics, and roll
numbers exactly.`,
	RunE: runStudents,
}

func init() {
	rootCmd.AddCommand(studentsCmd)
	studentsCmd.Flags().String("search", "", "Filter by name or roll number")
}

func runStudents(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Backend.URL == "" {
		return errors.New("BACKEND_URL environment variable is required")
	}

	client, err := recognizer.NewWithCapture(cfg.Backend.URL, captureDir)
	if err != nil {
		return fmt.Errorf("failed to create recognition client: %w", err)
	}

	students, err := client.ListStudents(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	if query := mustGetString(cmd, "search"); query != "" {
		filtered := students[:0]
		for _, s := range students {
			if names.Matches(s.Name, query) || s.RollNumber == query {
				filtered = append(filtered, s)
			}
		}
		students = filtered
	}

	if len(students) == 0 {
		fmt.Println("No students found.")
		return nil
	}

	fmt.Printf("%-20s %-10s %-10s %-10s %s\n", "NAME", "ROLL", "YEAR", "SESSION", "REGISTERED")
	for _, s := range students {
		fmt.Printf("%-20s %-10s %-10s %-10s %s\n",
			s.Name, s.RollNumber, s.Year, s.Session, s.RegistrationDate)
	}
	fmt.Printf("\nTotal: %d student(s)\n", len(students))
	return nil
}
