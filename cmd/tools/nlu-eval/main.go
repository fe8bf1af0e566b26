// cmd/tools/nlu-eval/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shopsense-voice/internal/common/logger"
	"shopsense-voice/internal/models"
	"shopsense-voice/internal/nlu"
	"shopsense-voice/internal/nlu/classifier"
	"shopsense-voice/internal/nlu/vocabulary"
)

var (
	vocabularyFile string
	verbose        bool
	jsonOutput     bool
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nlu-eval",
		Short:        "Replay voice transcripts through the command parser",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&vocabularyFile, "vocabulary", "", "vocabulary YAML file (default: built-in)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	root.AddCommand(newRunCmd(), newParseCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		corpusPath  string
		minAccuracy float64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a corpus and report accuracy per intent",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			corpus, err := LoadCorpus(corpusPath)
			if err != nil {
				return err
			}

			report := Evaluate(cmd.Context(), engine, corpus)
			if err := printReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Accuracy() < minAccuracy {
				return fmt.Errorf("accuracy %.3f below required %.3f", report.Accuracy(), minAccuracy)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "cmd/tools/nlu-eval/testdata/corpus.yaml", "corpus YAML file")
	cmd.Flags().Float64Var(&minAccuracy, "min-accuracy", 0, "fail when accuracy is below this ratio")
	return cmd
}

func newParseCmd() *cobra.Command {
	var corpusPath string
	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Explain how one transcript is parsed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			var products []models.Product
			if corpusPath != "" {
				corpus, err := LoadCorpus(corpusPath)
				if err != nil {
					return err
				}
				products = corpus.Catalog()
			}

			exp := engine.Explain(cmd.Context(), strings.Join(args, " "), products)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), exp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "prepared:   %s\n", exp.Prepared)
			fmt.Fprintf(out, "normalized: %s\n", exp.Normalized)
			fmt.Fprintf(out, "decision:   %s (%s, score %.2f)\n", exp.Decision.Intent, exp.Decision.Reason, exp.Decision.Score)
			fmt.Fprintf(out, "fragment:   %s\n", exp.Fragment)
			return writeJSON(out, exp.Command)
		},
	}
	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "", "take the catalog from this corpus file")
	return cmd
}

// newEngine builds an engine on the keyword backend so runs are offline and
// reproducible.
func newEngine() (*nlu.Engine, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.NewStructured(level, "console", "stderr")

	opts := nlu.DefaultOptions()
	if vocabularyFile != "" {
		v, err := vocabulary.LoadFile(vocabularyFile)
		if err != nil {
			return nil, err
		}
		opts.Vocabulary = v
	}
	return nlu.New(classifier.NewKeyword(), opts, log), nil
}

func printReport(w io.Writer, r Report) error {
	if jsonOutput {
		return writeJSON(w, r)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "FAIL %q\n", f.Case.Text)
		for _, m := range f.Mismatch {
			fmt.Fprintf(w, "     %s\n", m)
		}
	}
	for _, intent := range r.Intents() {
		s := r.ByIntent[intent]
		fmt.Fprintf(w, "%-18s %d/%d\n", intent, s.Passed, s.Total)
	}
	fmt.Fprintf(w, "accuracy: %.3f (%d/%d)\n", r.Accuracy(), r.Passed, r.Total)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
