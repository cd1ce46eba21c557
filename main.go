package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"troop-fundraiser/app"
)

var rootCmd = &cobra.Command{
	Use:           "troop-fundraiser",
	Short:         "Scout pack fundraiser storefront and admin dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var exportOrdersCmd = &cobra.Command{
	Use:   "export-orders",
	Short: "Write all orders, order items and the roster to an XLSX workbook",
	RunE:  runExportOrders,
}

var importScoutsCmd = &cobra.Command{
	Use:   "import-scouts",
	Short: "Create or update scouts from an XLSX roster",
	RunE:  runImportScouts,
}

func init() {
	exportOrdersCmd.Flags().String("out", "orders.xlsx", "output file")
	importScoutsCmd.Flags().String("file", "", "roster workbook (.xlsx)")
	importScoutsCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, exportOrdersCmd, importScoutsCmd)
}

func main() {
	loadEnv()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// loadEnv loads .env in development (ignores error if file doesn't exist).
// In production, variables should be set directly.
func loadEnv() {
	if os.Getenv("ENV") == "production" {
		return
	}
	// Use Overload to ensure .env values override system environment variables
	envPath := ".env"
	if err := godotenv.Overload(envPath); err != nil {
		log.Printf("Warning: .env file not found at %s, using system environment variables", envPath)
		return
	}
	log.Printf("Successfully loaded environment variables from %s (overriding system variables)", envPath)
}

func initApp(ctx context.Context) (*app.App, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	return app.Initialize(ctx, cfg)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	go application.PruneSessions(ctx)

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	addr := "0.0.0.0:" + application.Config.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", addr)
		log.Printf("Storefront: %s/?scout=<slug>", application.Config.BaseURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runExportOrders(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	application, err := initApp(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	data, err := application.Exports.ExportOrders(cmd.Context())
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Printf("✅ Orders exported to %s", out)
	return nil
}

func runImportScouts(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	application, err := initApp(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	result, err := application.Exports.ImportRoster(cmd.Context(), f)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		log.Printf("⚠️ %s", msg)
	}
	log.Printf("✅ Roster import: %d imported, %d skipped of %d rows", result.Imported, result.Skipped, result.Total)
	return nil
}
