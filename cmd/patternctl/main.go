package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"patternhub/internal/catalog"
	"patternhub/internal/store"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=X.Y.Z"
	Version = "0.0.0-dev"

	patternsFile string
)

var rootCmd = &cobra.Command{
	Use:   "patternctl",
	Short: "PatternHub - Browse and render functional-effects patterns",
	Long: `patternctl works directly against a pattern catalog file, without a running server.

Commands:
  list                       List all patterns in the catalog
  search <query>             Search patterns by text, category, difficulty
  show <id>                  Show a single pattern with its examples
  generate <id>              Render a snippet from a pattern
  export <id>                Export a pattern as a PATTERN.md file
  import <pattern.md>        Parse a PATTERN.md file into a catalog entry
  validate                   Validate the catalog file

Examples:
  patternctl list
  patternctl search retry --category error-handling --limit 5
  patternctl show retry-with-backoff
  patternctl generate retry-with-backoff --name fetchUser --module-type commonjs
  patternctl validate --file ./data/patterns.json`,
	Version: Version,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all patterns in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(patternsFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		snap := st.Snapshot()

		fmt.Printf("📋 Catalog %s (%d patterns)\n\n", snap.Version, len(snap.Patterns))
		for _, p := range snap.Patterns {
			fmt.Printf("  %-32s %-20s %-12s %s\n", p.ID, p.Category, p.Difficulty, p.Title)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search patterns by text, category, and difficulty",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(patternsFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		category, _ := cmd.Flags().GetString("category")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		limit, _ := cmd.Flags().GetInt("limit")

		q := catalog.Query{Category: category, Difficulty: difficulty}
		if len(args) > 0 {
			q.Text = args[0]
		}
		if cmd.Flags().Changed("limit") {
			q.Limit = &limit
		}

		results := catalog.Search(st.Patterns(), q)
		if len(results) == 0 {
			fmt.Println("No patterns matched")
			return nil
		}

		fmt.Printf("🔍 %d pattern(s) matched:\n\n", len(results))
		for _, p := range results {
			fmt.Printf("  %-32s %-20s %-12s %s\n", p.ID, p.Category, p.Difficulty, p.Title)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single pattern with its examples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(patternsFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		p, ok := catalog.GetByID(st.Patterns(), args[0])
		if !ok {
			return fmt.Errorf("pattern %q not found", args[0])
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			out, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("# %s (%s)\n\n", p.Title, p.ID)
		fmt.Printf("%s\n\n", p.Description)
		fmt.Printf("Category: %s | Difficulty: %s\n", p.Category, p.Difficulty)
		if len(p.Tags) > 0 {
			fmt.Printf("Tags: %v\n", p.Tags)
		}
		if len(p.UseCases) > 0 {
			fmt.Println("\nUse cases:")
			for _, uc := range p.UseCases {
				fmt.Printf("  - %s\n", uc)
			}
		}
		for i, ex := range p.Examples {
			marker := ""
			if ex.Primary {
				marker = " (primary)"
			}
			fmt.Printf("\nExample %d [%s]%s:\n%s\n", i+1, ex.Language, marker, ex.Code)
		}
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <id>",
	Short: "Render a snippet from a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(patternsFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		p, ok := catalog.GetByID(st.Patterns(), args[0])
		if !ok {
			return fmt.Errorf("pattern %q not found", args[0])
		}

		name, _ := cmd.Flags().GetString("name")
		input, _ := cmd.Flags().GetString("input")
		moduleType, _ := cmd.Flags().GetString("module-type")
		effectVersion, _ := cmd.Flags().GetString("effect-version")

		snippet, err := catalog.Generate(p, catalog.Options{
			Name:          name,
			Input:         input,
			ModuleType:    moduleType,
			EffectVersion: effectVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to generate snippet: %w", err)
		}

		fmt.Println(snippet)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a pattern as a PATTERN.md file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(patternsFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		p, ok := catalog.GetByID(st.Patterns(), args[0])
		if !ok {
			return fmt.Errorf("pattern %q not found", args[0])
		}

		content := catalog.FormatPatternMD(p)
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			fmt.Print(content)
			return nil
		}

		if err := os.WriteFile(output, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Printf("📄 Exported %s to %s\n", p.ID, output)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <pattern.md>",
	Short: "Parse a PATTERN.md file and print it as a catalog JSON entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		p, err := catalog.ParsePatternMD(string(raw))
		if err != nil {
			return fmt.Errorf("invalid pattern file: %w", err)
		}

		out, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the catalog file",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(patternsFile)
		if err != nil {
			fmt.Printf("❌ Catalog invalid: %v\n", err)
			os.Exit(1)
		}
		snap := st.Snapshot()
		fmt.Printf("✅ Catalog valid: %d patterns (version %s)\n", len(snap.Patterns), snap.Version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&patternsFile, "file", "f", "./data/patterns.json", "Path to the pattern catalog file")

	searchCmd.Flags().String("category", "", "Filter by category")
	searchCmd.Flags().String("difficulty", "", "Filter by difficulty")
	searchCmd.Flags().Int("limit", 10, "Maximum number of results")

	showCmd.Flags().Bool("json", false, "Print the pattern as JSON")

	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")

	generateCmd.Flags().String("name", "", "Substitute the NAME placeholder")
	generateCmd.Flags().String("input", "", "Substitute the INPUT placeholder")
	generateCmd.Flags().String("module-type", "", "Module style: esm or commonjs")
	generateCmd.Flags().String("effect-version", "", "Pin an effect library version in the snippet header")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
