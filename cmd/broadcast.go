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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valpere/transhub/internal/broadcast"
	"github.com/valpere/transhub/internal/config"
	"github.com/valpere/transhub/internal/gateway"
	"github.com/valpere/transhub/internal/language"
)

var (
	bcInputFile string
	bcSource    string
	bcTargets   []string
	bcBasename  string
	bcOutputDir string
)

var broadcastCmd = &cobra.Command{
	Use:   "broadcast [text...]",
	Short: "Translate one message into many languages",
	Long: `Translate a message into every selected language, one after another, and
write the original plus all translations to <basename>.txt.

A language that fails is reported and marked in the file; the others are
still translated. Requires the full variant.`,
	Example: `  transhub broadcast -t es,fr,ht,vi -i notice.txt --basename town-hall`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Variant != config.VariantFull {
			return fmt.Errorf("broadcast requires the %s variant", config.VariantFull)
		}

		text, err := readInput(bcInputFile, args)
		if err != nil {
			return err
		}

		gw, db, err := buildGateway(cfg)
		if err != nil {
			return err
		}
		defer gw.Close()
		if db != nil {
			defer db.Close()
		}

		b := broadcast.New(gw, gw.Registry())
		session, err := b.CollectProgress(context.Background(), text, bcSource, bcTargets, func(o broadcast.Outcome, total int) {
			if o.OK() {
				fmt.Fprintf(os.Stderr, "[%d/%d] %s ✓\n", o.Index+1, total, o.Target.Name)
				return
			}
			fmt.Fprintf(os.Stderr, "[%d/%d] %s ✗ %s\n", o.Index+1, total, o.Target.Name, gateway.Message(o.Err))
		})
		if err != nil {
			return fmt.Errorf("%s: %w", gateway.Message(err), err)
		}

		path := filepath.Join(bcOutputDir, broadcast.ExportFilename(bcBasename))
		if err := os.MkdirAll(bcOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(broadcast.Export(session)), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}

		fmt.Printf("Translated into %d/%d languages\n", len(session.Results)-session.Failed(), len(session.Results))
		fmt.Printf("Saved %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(broadcastCmd)

	broadcastCmd.Flags().StringVarP(&bcInputFile, "input", "i", "", "Input file with the message")
	broadcastCmd.Flags().StringVarP(&bcSource, "source", "s", language.AutoCode, "Source language code or name, or auto")
	broadcastCmd.Flags().StringSliceVarP(&bcTargets, "targets", "t", nil, "Target languages (comma-separated, required)")
	broadcastCmd.Flags().StringVar(&bcBasename, "basename", broadcast.DefaultBasename, "Export file name without .txt")
	broadcastCmd.Flags().StringVarP(&bcOutputDir, "output-dir", "o", ".", "Directory for the export file")

	broadcastCmd.MarkFlagRequired("targets")
}
