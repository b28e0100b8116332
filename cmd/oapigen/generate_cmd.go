package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/dustin/go-humanize"
	"github.com/pixie-sh/errors-go"
	"github.com/spf13/cobra"

	"github.com/pixie-sh/oapigen/internal/analyze"
	"github.com/pixie-sh/oapigen/internal/codegen"
	"github.com/pixie-sh/oapigen/internal/genconfig"
	"github.com/pixie-sh/oapigen/internal/history"
	"github.com/pixie-sh/oapigen/internal/spec"
)

// generateCmd returns the cobra command that turns an OpenAPI document into
// generated Go types, client and server source.
func generateCmd() *cobra.Command {
	var (
		outputDir   string
		packageName string
		baseURL     string
		force       bool
		useHistory  bool
		verbose     bool
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "generate <spec-path>",
		Short: "Generate Go types, client and server code from an OpenAPI document",
		Long: `Generate analyzes an OpenAPI 3.0 document and writes three Go source
files: types.go (request/response and schema types), client.go (a typed
HTTP client), and server.go (a dispatch function over a Handlers
interface).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(generateOptions{
				specPath:    args[0],
				outputDir:   outputDir,
				packageName: packageName,
				baseURL:     baseURL,
				force:       force,
				useHistory:  useHistory,
				verbose:     verbose,
				strict:      strict,
			})
		},
	}

	cfg, _ := genconfig.Load()

	cmd.Flags().StringVarP(&outputDir, "output", "o", cfg.OutputDir, "Directory to write generated files into")
	cmd.Flags().StringVar(&packageName, "package", cfg.PackageName, "Package name for generated files")
	cmd.Flags().StringVar(&baseURL, "base-url", cfg.BaseURL, "Default base URL baked into the generated HTTP client")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite the output directory even if the spec is unchanged since the last run")
	cmd.Flags().BoolVar(&useHistory, "history", cfg.HistoryEnabled, "Record this run in the local generation-history ledger")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject schemas using JSON Schema keywords this generator doesn't model")

	return cmd
}

type generateOptions struct {
	specPath    string
	outputDir   string
	packageName string
	baseURL     string
	force       bool
	useHistory  bool
	verbose     bool
	strict      bool
}

func runGenerate(opts generateOptions) error {
	data, err := os.ReadFile(opts.specPath)
	if err != nil {
		return errors.Wrap(err, "failed to read spec file %s", opts.specPath)
	}

	specHash := hashSpec(data)

	var store *history.Store
	if opts.useHistory {
		dbPath := filepath.Join(opts.outputDir, ".oapigen", "history.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return errors.Wrap(err, "failed to create history directory")
		}
		store, err = history.Open(dbPath)
		if err != nil {
			return errors.Wrap(err, "failed to open generation history")
		}
		defer func() {
			if cerr := store.Close(); cerr != nil && opts.verbose {
				fmt.Fprintf(os.Stderr, "warning: failed to close history store: %v\n", cerr)
			}
		}()

		if !opts.force {
			if last, found, err := store.LastRun(specHash); err != nil {
				return errors.Wrap(err, "failed to check generation history")
			} else if found {
				fmt.Printf("spec unchanged since last run at %s; nothing to do (use --force to regenerate)\n", last.CreatedAt.Format("2006-01-02 15:04:05"))
				return nil
			}
		}
	}

	if opts.verbose {
		fmt.Printf("analyzing %s\n", opts.specPath)
	}

	result, err := analyze.New().Run(data, spec.Config{StrictFields: opts.strict})
	if err != nil {
		return errors.Wrap(err, "failed to analyze spec")
	}

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory %s", opts.outputDir)
	}

	written, err := writeGeneratedFiles(result, opts)
	if err != nil {
		return err
	}

	if store != nil {
		run := history.Run{
			SpecHash:    specHash,
			ClientPath:  written.clientPath,
			ServerPath:  written.serverPath,
			ClientBytes: written.clientBytes,
			ServerBytes: written.serverBytes,
		}
		recorded, err := store.RecordRun(run)
		if err != nil {
			return errors.Wrap(err, "failed to record generation run")
		}
		if opts.verbose {
			fmt.Printf("recorded generation run %s\n", recorded.RunID)
		}
	}

	fmt.Printf("wrote %s (%s), %s (%s), %s (%s)\n",
		written.typesPath, humanize.Bytes(uint64(written.typesBytes)),
		written.clientPath, humanize.Bytes(uint64(written.clientBytes)),
		written.serverPath, humanize.Bytes(uint64(written.serverBytes)),
	)

	return nil
}

type writtenFiles struct {
	typesPath   string
	clientPath  string
	serverPath  string
	typesBytes  int
	clientBytes int
	serverBytes int
}

func writeGeneratedFiles(result *analyze.AnalysisResult, opts generateOptions) (writtenFiles, error) {
	var out writtenFiles

	files := []struct {
		name string
		file func() ([]byte, error)
	}{
		{"types.go", func() ([]byte, error) { return renderFile(codegen.WriteTypes(result, opts.packageName)) }},
		{"client.go", func() ([]byte, error) { return renderFile(codegen.WriteClient(result, opts.packageName, opts.baseURL)) }},
		{"server.go", func() ([]byte, error) { return renderFile(codegen.WriteServer(result, opts.packageName)) }},
	}

	for _, f := range files {
		content, err := f.file()
		if err != nil {
			return out, errors.Wrap(err, "failed to render %s", f.name)
		}

		path := filepath.Join(opts.outputDir, f.name)
		if err := os.WriteFile(path, content, 0644); err != nil {
			return out, errors.Wrap(err, "failed to write %s", path)
		}

		switch f.name {
		case "types.go":
			out.typesPath, out.typesBytes = path, len(content)
		case "client.go":
			out.clientPath, out.clientBytes = path, len(content)
		case "server.go":
			out.serverPath, out.serverBytes = path, len(content)
		}
	}

	return out, nil
}

func renderFile(f *jen.File) ([]byte, error) {
	var buf strings.Builder
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func hashSpec(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
