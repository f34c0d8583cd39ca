package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"mloc-go/internal/app"
	"mloc-go/internal/catalog"
	"mloc-go/internal/config"
	"mloc-go/internal/mdb"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Search", "CatalogUpdate").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// openDatabase fetches and decodes the database at ref. Truncation is not
// fatal: a warning goes to stderr and the partial results are returned.
func openDatabase(a *app.App, cmd *cobra.Command, ref string) (*mdb.Database, error) {
	db, err := a.OpenDatabase(cmd.Context(), ref)
	if err != nil {
		var te *mdb.TruncatedError
		if errors.As(err, &te) && db != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", ref, te)
			return db, nil
		}
		return nil, err
	}
	return db, nil
}

// resultWriter returns stdout, or the named file when outPath is non-empty.
func resultWriter(outPath string) (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

var rootCmd = &cobra.Command{
	Use:   "mloc",
	Short: "Read, search and catalog mlocate database files",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new host ID
		hostID := uuid.New().String()

		// Create config with defaults
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:   %s\n", cfg.HostID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Catalog:   %s\n", cfg.Catalog.Type)
		fmt.Printf("Scan Root: %s\n", cfg.Scan.Root)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list DB",
	Short: "List all paths in a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		outPath, _ := cmd.Flags().GetString("output")

		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		db, err := openDatabase(a, cmd, args[0])
		if err != nil {
			return err
		}

		w, closeFn, err := resultWriter(outPath)
		if err != nil {
			return err
		}

		n := db.Index.Len()
		if limit > 0 && limit < n {
			n = limit
		}
		for i := 0; i < n; i++ {
			fmt.Fprintln(w, db.Index.At(i).Path)
		}
		return closeFn()
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search DB PATTERN",
	Short: "Search paths in a database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := mdb.SearchOptions{}
		opts.IgnoreCase, _ = cmd.Flags().GetBool("ignore-case")
		opts.Glob, _ = cmd.Flags().GetBool("glob")
		opts.Regex, _ = cmd.Flags().GetBool("regex")
		opts.Basename, _ = cmd.Flags().GetBool("basename")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		countOnly, _ := cmd.Flags().GetBool("count")
		outPath, _ := cmd.Flags().GetString("output")

		a, err := newApp("Search")
		if err != nil {
			return err
		}
		defer a.Close()

		db, err := openDatabase(a, cmd, args[0])
		if err != nil {
			return err
		}

		results, err := mdb.Search(db.Index, args[1], opts)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if countOnly {
			fmt.Println(len(results))
			return nil
		}

		w, closeFn, err := resultWriter(outPath)
		if err != nil {
			return err
		}
		for _, rec := range results {
			fmt.Fprintln(w, rec.Path)
		}
		return closeFn()
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats DB",
	Short: "Show database statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Stats")
		if err != nil {
			return err
		}
		defer a.Close()

		db, err := openDatabase(a, cmd, args[0])
		if err != nil {
			return err
		}

		st := db.Stats()
		fmt.Printf("Database:    %s\n", args[0])
		fmt.Printf("Version:     %d\n", st.Version)
		fmt.Printf("Root:        %s\n", st.Root)
		fmt.Printf("Command:     %s\n", st.Command)
		fmt.Printf("Visibility:  %t\n", st.RequireVisibility)
		fmt.Printf("Entries:     %d\n", st.Total)
		fmt.Printf("Directories: %d\n", st.Directories)
		fmt.Printf("Files:       %d\n", st.Files)
		if st.Partial {
			fmt.Printf("Partial:     truncated at byte %d\n", st.TruncatedAt)
		}
		return nil
	},
}

// catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local file catalog",
}

var catalogUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Scan the filesystem and rebuild the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")

		a, err := newApp("CatalogUpdate")
		if err != nil {
			return err
		}
		defer a.Close()

		// Progress output only when stderr is a terminal.
		var progress func(total int)
		if term.IsTerminal(int(os.Stderr.Fd())) {
			progress = func(total int) {
				fmt.Fprintf(os.Stderr, "\rscanned %d entries", total)
			}
		}

		scan, err := a.UpdateCatalog(cmd.Context(), root, progress)
		if progress != nil {
			fmt.Fprintln(os.Stderr)
		}
		if err != nil {
			return fmt.Errorf("catalog update failed: %w", err)
		}

		duration := ""
		if scan.FinishedAt.Valid {
			duration = scan.FinishedAt.Time.Sub(scan.StartedAt).Truncate(time.Millisecond).String()
		}
		fmt.Printf("Cataloged %d file(s), %d director(ies) under %s in %s\n",
			scan.FileCount, scan.DirCount, scan.Root, duration)
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search PATTERN",
	Short: "Search the local file catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := catalog.SearchOptions{}
		opts.IgnoreCase, _ = cmd.Flags().GetBool("ignore-case")
		opts.Regex, _ = cmd.Flags().GetBool("regex")
		opts.Basename, _ = cmd.Flags().GetBool("basename")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		countOnly, _ := cmd.Flags().GetBool("count")

		a, err := newApp("CatalogSearch")
		if err != nil {
			return err
		}
		defer a.Close()

		store, err := a.Catalog()
		if err != nil {
			return err
		}

		results, err := store.Search(args[0], opts)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if countOnly {
			fmt.Println(len(results))
			return nil
		}

		for _, path := range results {
			fmt.Println(path)
		}
		return nil
	},
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CatalogStats")
		if err != nil {
			return err
		}
		defer a.Close()

		store, err := a.Catalog()
		if err != nil {
			return err
		}

		st, err := store.Stats()
		if err != nil {
			return fmt.Errorf("reading catalog stats: %w", err)
		}

		fmt.Printf("Store:       %s (%d bytes)\n", st.StorePath, st.StoreSize)
		fmt.Printf("Entries:     %d\n", st.Total)
		fmt.Printf("Directories: %d\n", st.Directories)
		fmt.Printf("Files:       %d\n", st.Files)
		fmt.Printf("Total Size:  %d bytes\n", st.TotalSize)
		if st.LastScan != nil {
			fmt.Printf("Last Scan:   %s (root %s)\n",
				st.LastScan.StartedAt.Format("2006-01-02 15:04:05"), st.LastScan.Root)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntP("limit", "l", 0, "Maximum number of paths to print (0 = all)")
	listCmd.Flags().StringP("output", "o", "", "Write results to FILE instead of stdout")

	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolP("ignore-case", "i", false, "Case-insensitive matching")
	searchCmd.Flags().BoolP("glob", "g", false, "Treat PATTERN as a glob")
	searchCmd.Flags().BoolP("regex", "r", false, "Treat PATTERN as a regular expression")
	searchCmd.Flags().BoolP("basename", "b", false, "Match against basenames only")
	searchCmd.Flags().IntP("limit", "l", 0, "Maximum number of matches (0 = unbounded)")
	searchCmd.Flags().BoolP("count", "c", false, "Print only the number of matches")
	searchCmd.Flags().StringP("output", "o", "", "Write results to FILE instead of stdout")

	rootCmd.AddCommand(statsCmd)

	// catalog subcommands
	catalogCmd.AddCommand(catalogUpdateCmd)
	catalogUpdateCmd.Flags().String("root", "", "Scan root (overrides configured root)")

	catalogCmd.AddCommand(catalogSearchCmd)
	catalogSearchCmd.Flags().BoolP("ignore-case", "i", false, "Case-insensitive matching")
	catalogSearchCmd.Flags().BoolP("regex", "r", false, "Treat PATTERN as a regular expression")
	catalogSearchCmd.Flags().BoolP("basename", "b", false, "Match against basenames only")
	catalogSearchCmd.Flags().IntP("limit", "l", 0, "Maximum number of matches (0 = unbounded)")
	catalogSearchCmd.Flags().BoolP("count", "c", false, "Print only the number of matches")

	catalogCmd.AddCommand(catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}
