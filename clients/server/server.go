// Package server provides a local print-preview server for card sheets.
//
// It renders every page of a sheet spec into a temp directory (stamped
// with the spec's resolution, exactly as the CLI writes them) and serves
// the results for inspection in a browser before printing.
package server

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hevi0/cardprint/pkg/pngres"
	"github.com/hevi0/cardprint/pkg/sheet"
)

type srv struct {
	dir   string
	spec  *sheet.Spec
	pages []string
}

// RunServe renders the spec's pages and serves them on the given port
// until interrupted.
func RunServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var (
		port     string
		specPath string
	)
	fs.StringVar(&port, "port", "8080", "Port to listen on")
	fs.StringVar(&port, "p", "8080", "Port to listen on")
	fs.StringVar(&specPath, "spec", "", "Path to sheet spec JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if specPath == "" {
		return fmt.Errorf("spec file is required (-spec)")
	}

	spec, warnings, err := sheet.Load(specPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Printf("warning: %s", w)
	}

	tmpDir, err := os.MkdirTemp("", "cardprint-serve-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	s := &srv{dir: tmpDir, spec: spec}
	if err := s.renderPages(); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /pages/", http.StripPrefix("/pages/", http.FileServer(http.Dir(tmpDir))))

	addr := ":" + port
	log.Printf("cardprint preview at http://localhost%s", addr)
	return http.ListenAndServe(addr, mux)
}

// renderPages writes every page of the spec into the temp dir, stamped
// the same way the CLI stamps its output.
func (s *srv) renderPages() error {
	renderer, err := sheet.NewRenderer(s.spec)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	for page := 0; page < s.spec.PageCount(); page++ {
		name := fmt.Sprintf("page%02d.png", page+1)
		path := filepath.Join(s.dir, name)

		img, pageWarnings, err := renderer.RenderPage(page+1, s.spec.PageCards(page))
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		for _, w := range pageWarnings {
			log.Printf("warning: %s", w)
		}

		if err := sheet.SavePNG(img, path); err != nil {
			return err
		}
		if err := pngres.UpdateResolutionInPlace(path, s.spec.PPI); err != nil {
			return fmt.Errorf("stamp %s (code %d): %w", name, pngres.ExitCode(err), err)
		}

		s.pages = append(s.pages, name)
	}

	if len(s.pages) == 0 {
		return fmt.Errorf("spec lists no cards")
	}
	return nil
}

func (s *srv) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprintf(w, "<!doctype html><title>cardprint preview</title>")
	fmt.Fprintf(w, "<h1>%d page(s) - %d PPI, %s paper</h1>\n", len(s.pages), s.spec.PPI, s.spec.Paper)
	for _, name := range s.pages {
		fmt.Fprintf(w, `<p><a href="/pages/%s">%s</a><br><img src="/pages/%s" width="425" style="border:1px solid #ccc"></p>`+"\n",
			name, name, name)
	}
}
