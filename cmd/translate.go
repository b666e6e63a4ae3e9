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

	"github.com/valpere/transhub/internal/gateway"
	"github.com/valpere/transhub/internal/language"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text into one language",
	Long: `Translate text from a source language into a target language.

Languages may be given by code (es) or display name ("Spanish").
Use --source auto to detect the source language.

Text is read from the arguments, from --input, or from stdin.`,
	Example: `  transhub translate -s en -t es "The meeting starts at 6pm"
  transhub translate --variant lite -t French -i notice.txt -o notice.fr.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		text, err := readInput(inputFile, args)
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

		res, err := gw.Translate(context.Background(), text, sourceLang, targetLang)
		if err != nil {
			return fmt.Errorf("%s: %w", gateway.Message(err), err)
		}

		if sourceLang == language.AutoCode {
			fmt.Fprintf(os.Stderr, "Detected source language: %s\n", res.SourceCode)
		}
		if res.Cached {
			fmt.Fprintf(os.Stderr, "Using translation memory\n")
		}
		if res.Warning != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", res.Warning)
		}

		if outputFile == "" {
			fmt.Println(res.Text)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile, []byte(res.Text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Successfully translated %s to %s\n", res.SourceCode, res.TargetCode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (stdout when empty)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", language.AutoCode, "Source language code or name, or auto")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code or name (required)")

	translateCmd.MarkFlagRequired("target")
}
