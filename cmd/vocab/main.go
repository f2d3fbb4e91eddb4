// Command vocab works with the local word store offline: listing due words,
// exporting the full list, and importing a previously exported file.
//
// Usage:
//
//	vocab export [-o file]        write the export payload (default stdout)
//	vocab import <file>           merge an exported file, local data wins
//	vocab due                     list words currently due for review
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wordfall/wordfall/internal/adapter/jsonfile"
	"github.com/wordfall/wordfall/internal/app"
	"github.com/wordfall/wordfall/internal/config"
	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/service/review"
	"github.com/wordfall/wordfall/internal/service/vocab"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	local, err := jsonfile.Open(cfg.Store.Path, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	schedule := review.Schedule{
		Intervals:            cfg.SRS.Intervals,
		MasteredIntervalDays: cfg.SRS.MasteredIntervalDays,
	}
	vocabSvc := vocab.New(local, noExtras{}, schedule, cfg.Providers.TTSURL, nil, logger)
	reviewSvc := review.New(local, schedule, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "export":
		runExport(ctx, vocabSvc, os.Args[2:])
	case "import":
		runImport(ctx, vocabSvc, os.Args[2:])
	case "due":
		runDue(ctx, reviewSvc)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vocab <export|import|due> [args]")
	os.Exit(2)
}

func runExport(ctx context.Context, svc *vocab.Service, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args) //nolint:errcheck

	snap, err := svc.Export(ctx)
	if err != nil {
		log.Fatalf("export: %v", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Fatalf("export: %v", err)
	}

	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("exported %d words to %s\n", snap.WordCount, *out)
}

func runImport(ctx context.Context, svc *vocab.Service, args []string) {
	if len(args) != 1 {
		usage()
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	res, err := svc.Import(ctx, data)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	fmt.Printf("imported %d words, skipped %d already present\n", res.Imported, res.Skipped)
}

func runDue(ctx context.Context, svc *review.Service) {
	due, err := svc.DueWords(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("due: %v", err)
	}

	if len(due) == 0 {
		fmt.Println("nothing due")
		return
	}
	for _, rec := range due {
		fmt.Printf("%s\tlevel %d\tdue %s\n", rec.Key, rec.Level, rec.NextReviewAt.Format(time.RFC3339))
	}
}

// noExtras disables the enrichment source for offline use.
type noExtras struct{}

func (noExtras) Extras(context.Context, string, domain.ExtrasKind) (json.RawMessage, error) {
	return nil, nil
}
