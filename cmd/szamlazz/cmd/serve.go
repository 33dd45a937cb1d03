package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold/szamlazz-go/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP bridge server",
	Long: `Start an HTTP server that exposes the agent operations as JSON.

Endpoints:
  - POST   /api/v1/invoices                  - Create an invoice
  - GET    /api/v1/invoices/:number          - Fetch an invoice
  - POST   /api/v1/invoices/:number/cancel   - Cancel an invoice
  - DELETE /api/v1/proformas/:number         - Delete a proforma
  - POST   /api/v1/receipts                  - Create a receipt
  - GET    /api/v1/receipts/:number          - Fetch a receipt
  - POST   /api/v1/receipts/:number/cancel   - Cancel a receipt
  - GET    /api/v1/taxpayers/:taxid          - Query a tax payer
  - GET    /health                           - Health check`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}

	srv := server.NewServer(&server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}, client)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	return srv.Run()
}
