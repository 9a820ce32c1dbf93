// Command cli queries the Bundesanzeiger pipeline from the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bundesanzeiger/pkg/core/app"
	"bundesanzeiger/pkg/core/config"
	"bundesanzeiger/pkg/core/intent"
	"bundesanzeiger/pkg/core/utils"
)

var asJSON bool

func main() {
	godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BANZ")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "banz",
		Short:         "Query German statutory filings from the Bundesanzeiger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a summary")
	root.PersistentFlags().String("provider", "", "LLM provider override (gemini, openrouter)")
	root.PersistentFlags().String("db", "", "path of the SQLite cache file")
	v.BindPFlag("provider", root.PersistentFlags().Lookup("provider"))
	v.BindPFlag("db", root.PersistentFlags().Lookup("db"))

	search := &cobra.Command{
		Use:   "search <company name>",
		Short: "List the disclosed filings of a company",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd, v)
			if err != nil {
				return err
			}
			defer application.Close()

			result := application.Pipeline.Search(cmd.Context(), strings.Join(args, " "))
			if asJSON {
				return printJSON(result)
			}
			fmt.Println(utils.FormatSearchResult(result))
			return nil
		},
	}

	analyze := &cobra.Command{
		Use:   "analyze <company name>",
		Short: "Extract financial figures from the newest filing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd, v)
			if err != nil {
				return err
			}
			defer application.Close()

			result := application.Pipeline.Analyze(cmd.Context(), strings.Join(args, " "))
			if asJSON {
				return printJSON(result)
			}
			fmt.Println(utils.FormatAnalyzeResult(result))
			return nil
		},
	}

	ask := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a free-form question about a German company",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := intent.NewParser(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer parser.Close()

			parsed, err := parser.Parse(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "resolved company: %s\n", parsed.CompanyName)

			application, err := buildApp(cmd, v)
			if err != nil {
				return err
			}
			defer application.Close()

			result := application.Pipeline.Analyze(cmd.Context(), parsed.CompanyName)
			if asJSON {
				return printJSON(result)
			}
			fmt.Println(utils.FormatAnalyzeResult(result))
			return nil
		},
	}

	root.AddCommand(search, analyze, ask)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildApp(cmd *cobra.Command, v *viper.Viper) (*app.App, error) {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := config.Load()
	if provider := v.GetString("provider"); provider != "" {
		cfg.AIProvider = provider
	}
	if db := v.GetString("db"); db != "" {
		cfg.DBPath = db
	}
	return app.New(cmd.Context(), cfg, log)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
