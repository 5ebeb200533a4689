package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/veracitylab/veracity/pkg/veracity"
	"github.com/veracitylab/veracity/pkg/veracity/classify"
	"github.com/veracitylab/veracity/pkg/veracity/model"
	"github.com/veracitylab/veracity/pkg/veracity/store"
	"github.com/veracitylab/veracity/pkg/veracity/store/sqlite"
)

func main() {
	var (
		modelPath = flag.String("model", "", "Model bundle JSON file (required)")
		dbPath    = flag.String("db", "", "SQLite database for verdicts (optional)")
		text      = flag.String("text", "", "One-shot: classify this text and exit")
		filePath  = flag.String("file", "", "One-shot: classify this file and exit")
		asHTML    = flag.Bool("html", false, "Treat -file contents as HTML")
		source    = flag.String("source", "", "Source label recorded with each verdict")
	)
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("--model required")
	}

	ctx := context.Background()

	detector, cleanup, err := buildDetector(ctx, *modelPath, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	// One-shot mode
	if *text != "" || *filePath != "" {
		input := veracity.Input{Source: *source, Text: *text}
		if *filePath != "" {
			data, err := os.ReadFile(*filePath)
			if err != nil {
				log.Fatal("Failed to read input file:", err)
			}
			if *asHTML {
				input.HTML = string(data)
			} else {
				input.Text = string(data)
			}
		}

		verdict, err := detector.Classify(ctx, input)
		if err != nil {
			log.Fatal(err)
		}
		printVerdict(verdict)
		return
	}

	// Interactive mode
	bundle := detector.Bundle()
	fmt.Println("===========================================")
	fmt.Println("  Veracity CLI")
	fmt.Printf("  Model: %s %s\n", bundle.Name, bundle.Version)
	fmt.Println("===========================================")
	fmt.Println()

	for {
		var mode string
		menu := &survey.Select{
			Message: "Classify:",
			Options: []string{modePaste, modeFile, modeHTML, modeQuit},
		}
		// Ctrl+C ends the session.
		if err := survey.AskOne(menu, &mode); err != nil || mode == modeQuit {
			break
		}

		input, err := readInput(mode, *source)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		if input == nil {
			continue
		}

		verdict, err := detector.Classify(ctx, *input)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		printVerdict(verdict)
	}

	fmt.Println("\nGoodbye!")
}

const (
	modePaste = "Paste article text"
	modeFile  = "Classify a text file"
	modeHTML  = "Classify an HTML file"
	modeQuit  = "Quit"
)

// readInput collects one document for the chosen mode. nil input with nil
// error means the user entered nothing.
func readInput(mode, source string) (*veracity.Input, error) {
	switch mode {
	case modePaste:
		var text string
		if err := survey.AskOne(&survey.Multiline{Message: "Article text:"}, &text); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		return &veracity.Input{Source: source, Text: text}, nil

	case modeFile, modeHTML:
		var path string
		if err := survey.AskOne(&survey.Input{Message: "File path:"}, &path); err != nil {
			return nil, err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		in := &veracity.Input{Source: source}
		if mode == modeHTML {
			in.HTML = string(data)
		} else {
			in.Text = string(data)
		}
		return in, nil
	}
	return nil, nil
}

func printVerdict(v veracity.Verdict) {
	label := "genuine"
	if v.Label == classify.LabelFabricated {
		label = "FABRICATED"
	}

	fmt.Printf("\n--- Verdict %s ---\n", v.ID)
	if v.Title != "" {
		fmt.Printf("  Title:       %s\n", v.Title)
	}
	fmt.Printf("  Label:       %s\n", label)
	fmt.Printf("  Probability: %.4f fabricated\n", v.Probability)
	fmt.Printf("  Confidence:  %.4f\n", v.Confidence)
	fmt.Printf("  Tokens:      %d (%.0f%% vocabulary coverage)\n", v.TokenCount, v.Coverage*100)

	if len(v.TopTerms) > 0 {
		fmt.Println("\nTop terms:")
		for _, t := range v.TopTerms {
			fmt.Printf("  %-16s %+.4f\n", t.Term, t.Weight)
		}
	}
	fmt.Println()
}

func buildDetector(ctx context.Context, modelPath, dbPath string) (*veracity.Detector, func(), error) {
	bundle, err := model.LoadFile(modelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}

	var st store.Store
	if dbPath != "" {
		st, err = sqlite.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
	}

	detector, err := veracity.New(veracity.Options{
		Bundle: bundle,
		Store:  st,
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, fmt.Errorf("build detector: %w", err)
	}

	cleanup := func() {
		detector.Close()
	}

	return detector, cleanup, nil
}
