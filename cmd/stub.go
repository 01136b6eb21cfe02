package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akranjan/facemark/internal/config"
	"github.com/akranjan/facemark/internal/stub"
	"github.com/akranjan/facemark/internal/stub/postgres"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Start a development stub of the recognition service",
	Long: `Start a local double of the recognition service for development.
It implements the register, recognize, students and attendance endpoints
with a naive embedding matcher. Students and attendance live in memory
unless DATABASE_URL points at a PostgreSQL instance.`,
	RunE: runStub,
}

func init() {
	rootCmd.AddCommand(stubCmd)

	stubCmd.Flags().Int("port", 8000, "Port to listen on")
	stubCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	var store stub.Store
	if cfg.Database.URL != "" {
		fmt.Println("Connecting to PostgreSQL database...")
		pgStore, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		defer pgStore.Close()
		store = pgStore
		fmt.Println("Using PostgreSQL store")
	} else {
		store = stub.NewMemoryStore()
		fmt.Println("Using in-memory store (set DATABASE_URL for persistence)")
	}

	server := stub.NewServer(store, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting stub server: %w", err)
	}
	return nil
}
