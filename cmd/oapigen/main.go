package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixie-sh/oapigen/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "oapigen",
		Short:   "oapigen - OpenAPI to Go client/server generator",
		Long:    "oapigen analyzes an OpenAPI 3.0 document and generates statically typed Go request/response types, an HTTP client and a server dispatch function.",
		Version: version.Info(),
	}

	rootCmd.SetVersionTemplate("oapigen version {{.Version}}\n")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("oapigen version %s\n", version.Info())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
