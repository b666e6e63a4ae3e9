/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/transhub/internal/store"
)

const defaultMemoryPath = "./data/transhub.db"

var cacheDBPath string

// withMemory opens the database named by --db, then the memory setting,
// then the default path, and runs fn against it.
func withMemory(fn func(ctx context.Context, db *store.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		path := cacheDBPath
		if path == "" {
			path = defaultMemoryPath
			if cfg, err := loadConfig(); err == nil && cfg.Memory != "" {
				path = cfg.Memory
			}
		}

		db, err := openStore(path)
		if err != nil {
			return err
		}
		defer db.Close()

		return fn(cmd.Context(), db, args)
	}
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the translation memory",
	Long: `List, inspect, invalidate and clear the SQLite translation memory.

Translations are remembered only when --memory (or TRANSHUB_MEMORY) is set.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all translation memory entries",
	RunE: withMemory(func(ctx context.Context, db *store.Store, _ []string) error {
		entries, err := db.ListMemory(ctx)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No entries in translation memory.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPAIR\tMODEL\tUSED\tLAST USED\tINVALID\tTEXT")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s-%s\t%s\t%d\t%s\t%v\t%s\n",
				e.ID, e.SourceLang, e.TargetLang, e.Model, e.UsageCount,
				e.LastUsed.Format("2006-01-02 15:04"), e.Invalidated, snippet(e.SourceText, 40))
		}
		return w.Flush()
	}),
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation memory statistics",
	RunE: withMemory(func(ctx context.Context, db *store.Store, _ []string) error {
		stats, err := db.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		fmt.Printf("Entries:     %d (%d active, %d invalidated)\n",
			stats.TotalEntries, stats.ActiveEntries, stats.InvalidEntries)
		fmt.Printf("Total usage: %d\n", stats.TotalUsage)
		return nil
	}),
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <id>",
	Short: "Mark an entry as wrong so it is translated again next time",
	Args:  cobra.ExactArgs(1),
	RunE: withMemory(func(ctx context.Context, db *store.Store, args []string) error {
		if err := db.InvalidateMemory(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to invalidate entry: %w", err)
		}
		fmt.Printf("Invalidated entry: %s\n", args[0])
		return nil
	}),
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a translation memory entry",
	Args:  cobra.ExactArgs(1),
	RunE: withMemory(func(ctx context.Context, db *store.Store, args []string) error {
		if err := db.DeleteMemory(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		fmt.Printf("Deleted entry: %s\n", args[0])
		return nil
	}),
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from translation memory",
	RunE: withMemory(func(ctx context.Context, db *store.Store, _ []string) error {
		n, err := db.ClearMemory(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear translation memory: %w", err)
		}
		fmt.Printf("Cleared %d entries from translation memory.\n", n)
		return nil
	}),
}

// snippet flattens s to one line of at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.PersistentFlags().StringVar(&cacheDBPath, "db", "", "Database path (default: the memory setting, then "+defaultMemoryPath+")")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
