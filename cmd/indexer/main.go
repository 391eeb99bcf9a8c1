package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/clinicore/claimgen/internal/adapters/search"
	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/infrastructure/clients/typesense"
	"github.com/clinicore/claimgen/pkg/config"
)

// sourceFiles maps reference files in the data directory to the snippet
// category they are indexed under. One snippet per non-empty line.
var sourceFiles = map[string]entities.SnippetCategory{
	"icd10.txt":       entities.SnippetCategoryDiagnosisCode,
	"cpt.txt":         entities.SnippetCategoryProcedureCode,
	"payer_rules.txt": entities.SnippetCategoryPayerRule,
}

func main() {
	var dataDir string
	flag.StringVar(&dataDir, "data", "data", "directory containing icd10.txt, cpt.txt, payer_rules.txt")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatalf("Failed to initialize Typesense client: %v", err)
	}

	adapter := search.NewKnowledgeAdapter(typesenseClient)
	if err := adapter.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to init knowledge schema: %v", err)
	}

	total := 0
	for file, category := range sourceFiles {
		count, err := indexFile(ctx, adapter, filepath.Join(dataDir, file), category)
		if err != nil {
			log.Fatalf("Failed to index %s: %v", file, err)
		}
		log.Printf("Indexed %d snippets from %s as %s", count, file, category)
		total += count
	}

	log.Printf("Indexing complete: %d snippets", total)
}

func indexFile(ctx context.Context, adapter *search.KnowledgeAdapter, path string, category entities.SnippetCategory) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		snippet := entities.KnowledgeSnippet{
			Content:  line,
			Category: category,
		}
		if err := adapter.Index(ctx, snippet); err != nil {
			return count, err
		}
		count++
	}

	return count, scanner.Err()
}
