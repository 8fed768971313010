// cardprint - Print-ready card sheet generation.
//
// Usage:
//
//	cardprint -spec <path> [-o <prefix>] [options]
//	cardprint init
//	cardprint serve [--port 8080] -spec <path>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"

	"github.com/hevi0/cardprint/clients/server"
	"github.com/hevi0/cardprint/pkg/layout"
	"github.com/hevi0/cardprint/pkg/pngres"
	"github.com/hevi0/cardprint/pkg/sheet"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "serve":
		if err := server.RunServe(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: generate mode (all flags on root).
		if err := run(os.Args[1:]); err != nil {
			fatal(err)
		}
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("cardprint", flag.ExitOnError)

	var (
		specPath string
		prefix   string
		ppiFlag  string
		paper    string
	)

	fs.StringVar(&specPath, "spec", "", "Path to sheet spec JSON")
	fs.StringVar(&prefix, "o", "page", "Output filename prefix")
	fs.StringVar(&prefix, "output", "page", "Output filename prefix")
	fs.StringVar(&ppiFlag, "ppi", "", "Override resolution: 300, 600 or 1200")
	fs.StringVar(&paper, "paper", "", "Override paper size: US or A4")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	if specPath == "" {
		printUsage()
		return fmt.Errorf("spec file is required (-spec)")
	}

	spec, warnings, err := sheet.Load(specPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	// Command-line overrides win over spec values.
	if ppiFlag != "" {
		ppi, err := layout.ParsePPI(ppiFlag)
		if err != nil {
			return err
		}
		spec.PPI = int(ppi)
	}
	if paper != "" {
		if _, err := layout.ParsePaper(paper); err != nil {
			return err
		}
		spec.Paper = paper
	}

	renderer, err := sheet.NewRenderer(spec)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	pageCount := spec.PageCount()
	if pageCount == 0 {
		return fmt.Errorf("spec lists no cards")
	}

	fmt.Printf("Generating %d page(s) at %d PPI on %s paper\n", pageCount, spec.PPI, spec.Paper)
	bar := pb.StartNew(pageCount)

	for page := 0; page < pageCount; page++ {
		outPath := fmt.Sprintf("%s%02d.png", prefix, page+1)

		img, pageWarnings, err := renderer.RenderPage(page+1, spec.PageCards(page))
		if err != nil {
			return fmt.Errorf("render %s: %w", outPath, err)
		}
		for _, w := range pageWarnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}

		if err := sheet.SavePNG(img, outPath); err != nil {
			return err
		}

		// Stamp the written page with its physical resolution. A failed
		// stamp is a hard failure of the page.
		if err := pngres.UpdateResolutionInPlace(outPath, spec.PPI); err != nil {
			return fmt.Errorf("stamp %s (code %d): %w", outPath, pngres.ExitCode(err), err)
		}

		bar.Increment()
	}
	bar.Finish()

	fmt.Printf("Done: %s01.png .. %s%02d.png\n", prefix, prefix, pageCount)
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var specOut string
	fs.StringVar(&specOut, "spec", "sheet.json", "Output path for sample spec")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.WriteFile(specOut, []byte(sheet.ExampleJSON()), 0644); err != nil {
		return fmt.Errorf("write spec: %w", err)
	}

	fmt.Printf("Created: %s\n", specOut)
	fmt.Println("Run: cardprint -spec sheet.json -o page")
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`cardprint - 3x3 card sheets for print

USAGE:
    cardprint -spec <path> [-o <prefix>] [options]
    cardprint init [-spec <path>]
    cardprint serve [--port 8080] -spec <path>

GENERATE:
    -spec <path>           Sheet spec JSON (see 'cardprint init')
    -o, -output <prefix>   Output prefix; pages become <prefix>NN.png (default "page")
    -ppi <n>               Override resolution: 300, 600 or 1200
    -paper <size>          Override paper size: US or A4

    Every written page is stamped with a pHYs chunk so the PNG reports
    its physical print resolution.

PREVIEW:
    cardprint serve -spec sheet.json    Render pages and preview in a browser

EXAMPLES:
    cardprint init
    cardprint -spec sheet.json -o deck -ppi 600
    cardprint serve -spec sheet.json --port 9000
`)
}
