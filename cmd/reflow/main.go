package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/reflow/internal/logging"
	"github.com/tsawler/reflow/pipeline"
	"github.com/tsawler/reflow/source"
)

var version = "0.1.0"

// cliConfig is the YAML configuration file shape
type cliConfig struct {
	Logging struct {
		Style string `yaml:"style"`
		Level string `yaml:"level"`
	} `yaml:"logging"`

	PageMarkers bool `yaml:"page_markers"`

	Remediation struct {
		Threshold   float64 `yaml:"threshold"`
		MaxRetries  int     `yaml:"max_retries"`
		MinCoverage float64 `yaml:"min_coverage"`
	} `yaml:"remediation"`

	Workers int `yaml:"workers"`
}

func loadConfig(path string) (*cliConfig, error) {
	cfg := &cliConfig{}
	cfg.Remediation.Threshold = 70
	cfg.Remediation.MaxRetries = 2
	cfg.Remediation.MinCoverage = 0.70
	cfg.Workers = 4

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "reflow",
		Short: "Reading-order text reconstruction for parsed documents",
		Long: `Reflow turns positioned tokens from an upstream PDF parser into
deterministic structured plain text: column-aware reading order,
header/footer suppression, table extraction, footnote matching, and
anti-hallucination verification with quality scoring.`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <tokens.json> [more.json...]",
		Short: "Extract text from token dumps",
		Long: `Extract reconstructed text from one or more JSON token dumps.

A single input prints text to stdout unless --output is given. Multiple
inputs run through the worker pool and each writes <name>.txt (and with
--artifact, <name>.artifact.json) into the output directory.

Example:
  reflow extract tokens.json
  reflow extract --output out/ --artifact batch/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			output, _ := cmd.Flags().GetString("output")
			writeArtifact, _ := cmd.Flags().GetBool("artifact")
			markers, _ := cmd.Flags().GetBool("markers")
			noRemediation, _ := cmd.Flags().GetBool("no-remediation")

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(&logging.Config{
				Style: logging.Style(cfg.Logging.Style),
				Level: cfg.Logging.Level,
			})
			defer logger.Sync()

			pipeCfg := pipeline.DefaultConfig()
			pipeCfg.PageMarkers = cfg.PageMarkers || markers

			docs := make([]*pipeline.Document, 0, len(args))
			for _, path := range args {
				doc, err := source.LoadDump(path)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}

			remediation := pipeline.RemediationConfig{
				Threshold:   cfg.Remediation.Threshold,
				MaxRetries:  cfg.Remediation.MaxRetries,
				MinCoverage: cfg.Remediation.MinCoverage,
			}
			if noRemediation {
				remediation.MaxRetries = 0
				remediation.Threshold = 0
				remediation.MinCoverage = 0
			}

			pool := pipeline.NewPoolWithConfig(pipeCfg,
				pipeline.PoolConfig{Workers: cfg.Workers}, remediation, logger)
			items, err := pool.Process(cmd.Context(), docs)
			if err != nil {
				return err
			}

			if len(items) == 1 && output == "" {
				item := items[0]
				if item.Err != nil {
					return item.Err
				}
				fmt.Println(item.Result.Text)
				return nil
			}

			if output == "" {
				output = "."
			}
			if err := os.MkdirAll(output, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			failed := 0
			for _, item := range items {
				if item.Err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", item.Document.Name, item.Err)
					failed++
					continue
				}
				base := strings.TrimSuffix(item.Document.Name, filepath.Ext(item.Document.Name))
				textPath := filepath.Join(output, base+".txt")
				if err := os.WriteFile(textPath, []byte(item.Result.Text), 0644); err != nil {
					return err
				}
				if writeArtifact {
					artifact := pipeline.BuildArtifact(item.Document, item.Result)
					artifactPath := filepath.Join(output, base+".artifact.json")
					if err := pipeline.WriteArtifact(artifactPath, artifact); err != nil {
						return err
					}
				}
				fmt.Printf("%s: grade %s, coverage %.0f%%, attempt %d\n",
					item.Document.Name,
					item.Result.Quality.Grade,
					item.Result.Verification.Coverage*100,
					item.Result.Attempt)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "output directory (default stdout for a single input)")
	cmd.Flags().Bool("artifact", false, "write a JSON artifact next to each text file")
	cmd.Flags().Bool("markers", false, "insert [page N] boundary markers")
	cmd.Flags().Bool("no-remediation", false, "accept the first attempt regardless of score")
	return cmd
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <tokens.json>",
		Short: "Run extraction and report verification details",
		Long: `Run the full pipeline on one token dump and print the verification
and quality reports as JSON, without writing any text output.

Example:
  reflow inspect tokens.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(&logging.Config{
				Style: logging.Style(cfg.Logging.Style),
				Level: cfg.Logging.Level,
			})
			defer logger.Sync()

			doc, err := source.LoadDump(args[0])
			if err != nil {
				return err
			}

			controller := pipeline.NewControllerWithConfig(
				pipeline.DefaultConfig(),
				pipeline.RemediationConfig{
					Threshold:   cfg.Remediation.Threshold,
					MaxRetries:  cfg.Remediation.MaxRetries,
					MinCoverage: cfg.Remediation.MinCoverage,
				},
				logger)
			result, err := controller.Run(cmd.Context(), doc)
			if err != nil {
				return err
			}

			report := struct {
				Document     string                               `json:"document"`
				Attempt      int                                  `json:"attempt"`
				Verification any                                  `json:"verification"`
				Quality      any                                  `json:"quality"`
				Removals     map[string]int                       `json:"removals_by_reason"`
				Warnings     []string                             `json:"warnings,omitempty"`
			}{
				Document:     doc.Name,
				Attempt:      result.Attempt,
				Verification: result.Verification,
				Quality:      result.Quality,
				Removals:     map[string]int{},
				Warnings:     result.Warnings,
			}
			for reason, n := range pipeline.RemovalSummary(result.Verification.Removals) {
				report.Removals[string(reason)] = n
			}

			out, err := sonic.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	return cmd
}
