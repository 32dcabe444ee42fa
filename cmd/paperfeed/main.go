package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mbecher/paperfeed/internal/config"
	"github.com/mbecher/paperfeed/internal/database"
	"github.com/mbecher/paperfeed/internal/pipeline"
	"github.com/mbecher/paperfeed/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "paperfeed",
	Short:   "Personalized daily arXiv digests",
	Long:    "Paperfeed fetches recent arXiv papers, ranks them against your research profile, and composes a daily digest.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("paperfeed", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/paperfeed/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set your categories, keywords, and research description.")
		return nil
	},
}

// --- run command ---

var (
	runDays int
	runMode string
	runTopN int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, rank, and compose today's digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runMode != "" {
			if runMode != config.ModeKeyword && runMode != config.ModeLLM {
				return fmt.Errorf("invalid mode %q (want %q or %q)", runMode, config.ModeKeyword, config.ModeLLM)
			}
			cfg.Ranking.Mode = runMode
		}
		if runTopN > 0 {
			cfg.Ranking.TopN = runTopN
		}
		daysBack := cfg.Arxiv.Days
		if runDays > 0 {
			daysBack = runDays
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		periodID := database.GetToday()
		fmt.Printf("Building digest for %s (%s mode, %d day window).\n",
			periodID, cfg.Ranking.Mode, daysBack)

		pipe := pipeline.New(cfg, db)
		result := pipe.Run(context.Background(), periodID, daysBack)

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		for _, step := range result.Steps {
			if step.Err != nil {
				return fmt.Errorf("pipeline failed at %q: %w", step.Name, step.Err)
			}
		}

		fmt.Println("\nDigest ready! Run 'paperfeed serve' to view it.")
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runDays, "days", 0, "Override lookback window (days)")
	runCmd.Flags().StringVar(&runMode, "mode", "", "Override ranking mode (keyword or llm)")
	runCmd.Flags().IntVar(&runTopN, "top-n", 0, "Override number of papers sent for LLM scoring")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and configuration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		papers, err := db.CountPapers()
		if err != nil {
			return err
		}
		scores, err := db.CountLLMScores()
		if err != nil {
			return err
		}
		digests, err := db.CountDigests()
		if err != nil {
			return err
		}

		fmt.Printf("Today: %s\n\n", database.GetToday())
		fmt.Println("Profile:")
		fmt.Printf("  Categories: %d\n", len(cfg.Arxiv.Categories))
		fmt.Printf("  Keywords: %d\n", len(cfg.Keywords()))
		fmt.Printf("  Ranking mode: %s\n", cfg.Ranking.Mode)
		fmt.Println("\nDatabase:")
		fmt.Printf("  Papers: %d\n", papers)
		fmt.Printf("  Cached LLM scores: %d\n", scores)
		fmt.Printf("  Digests: %d\n", digests)
		return nil
	},
}

// --- cache command ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the LLM score cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached LLM scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearLLMScores()
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d cached score(s).\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(filepath.Join(dataDir, "paperfeed.db"))
}
