package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Online Shop API
// @version 1.0
// @description API for the online shop: accounts, products, orders and roles

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "onlineshop",
		Short:         "Online shop backend",
		Long:          "Online shop backend: accounts, products with images, orders and roles over a JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	return rootCmd
}
