package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-leak-audit/internal/audit"
	"github.com/kurihiro0119/github-leak-audit/internal/auth"
	"github.com/kurihiro0119/github-leak-audit/internal/config"
	"github.com/kurihiro0119/github-leak-audit/internal/report"
	"github.com/kurihiro0119/github-leak-audit/pkg/client"
)

var (
	cfgFile string
	verbose bool
	format  string
	output  string
	workers int

	reportFormat report.Format
)

var rootCmd = &cobra.Command{
	Use:   "leak-audit",
	Short: "GitHub organization leak monitor",
	Long: `A CLI tool for finding references to a GitHub organization in the
personal repositories of its members.

The organization members are enumerated, batched into as few search queries
as GitHub allows, and searched by code content and repository name.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Audit the organization and write a report",
	Long:  `Search the personal repositories of every organization member and write the leak report.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		f, err := report.ParseFormat(format)
		if err != nil {
			return err
		}
		reportFormat = f
		return nil
	},
	RunE: runAudit,
}

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print the search queries without running them",
	Args:  cobra.NoArgs,
	RunE:  runQueries,
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Ask a running API server to audit and print the report",
	Args:  cobra.NoArgs,
	RunE:  runRemote,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().StringVar(&format, "format", string(report.FormatHTML), "report format (html, json, table)")
	runCmd.Flags().StringVarP(&output, "output", "o", "", "report file, - for stdout (default REPORT_PATH or LeakReport.html, extension follows --format)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "queries searched in parallel (default SEARCH_WORKERS or 1)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(queriesCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configFiles() []string {
	if cfgFile == "" {
		return nil
	}
	return []string{cfgFile}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFiles()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if workers > 0 {
		cfg.SearchWorkers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newAuditor(ctx context.Context, cfg *config.Config) (*audit.Auditor, error) {
	tokens, err := auth.NewTokenProvider(cfg)
	if err != nil {
		return nil, err
	}
	return audit.NewFromConfig(ctx, cfg, tokens)
}

// reportPath picks the --output flag, or the configured path with the extension of the format
func reportPath(flagValue, configured string, f report.Format) string {
	if flagValue != "" {
		return flagValue
	}
	return strings.TrimSuffix(configured, filepath.Ext(configured)) + f.Extension()
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := reportPath(output, cfg.ReportPath, reportFormat)
	status := io.Writer(os.Stdout)
	if path == "-" {
		status = os.Stderr
	}

	ctx := context.Background()
	auditor, err := newAuditor(ctx, cfg)
	if err != nil {
		return err
	}
	auditor.OnProgress(func(query string, progress float64) {
		fmt.Fprintf(status, "\rProgress: %.1f%%", progress*100)
	})

	start := time.Now()
	fmt.Fprintf(status, "Auditing '%s' for references to %s...\n", cfg.OrgName, cfg.OrgNickname)
	rep, err := auditor.Run(ctx)
	fmt.Fprintln(status)
	if err != nil {
		return err
	}

	// a failed render must leave the previous report untouched
	var buf bytes.Buffer
	if err := report.Render(&buf, rep, reportFormat); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	size := buf.Len()
	if path == "-" {
		if _, err := buf.WriteTo(os.Stdout); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(status, "Found %s potential leaks across %s members in %s\n",
		humanize.Comma(int64(rep.Count)), humanize.Comma(int64(rep.MemberCount)), time.Since(start).Round(time.Second))
	if len(rep.AbandonedQueries) > 0 {
		fmt.Fprintf(status, "Warning: %d queries were abandoned after repeated rate limiting\n", len(rep.AbandonedQueries))
	}
	if path != "-" {
		fmt.Fprintf(status, "Report written to %s (%s)\n", path, humanize.Bytes(uint64(size)))
	}
	fmt.Fprintln(status, "Done.")
	return nil
}

func runQueries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	auditor, err := newAuditor(ctx, cfg)
	if err != nil {
		return err
	}

	members, err := auditor.Members(ctx)
	if err != nil {
		return err
	}
	for _, q := range auditor.Queries(members) {
		fmt.Println(q)
	}
	return nil
}

func runRemote(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFiles()...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	c := client.NewClient(cfg.APIEndpoint)
	ctx := context.Background()
	if err := c.HealthCheck(ctx); err != nil {
		return fmt.Errorf("API server at %s is not available: %w", cfg.APIEndpoint, err)
	}

	rep, err := c.RunAudit(ctx)
	if err != nil {
		return err
	}
	return report.RenderTable(os.Stdout, rep)
}
