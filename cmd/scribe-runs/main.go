// Command scribe-runs inspects the run database written by scribe-cli.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/cliniscribe/scribe/pkg/scribe/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "", "SQLite run database (required)")
	runID := flag.String("id", "", "Show the full output of one run")
	limit := flag.Int("limit", 20, "Maximum runs to list")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()
	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	if *runID != "" {
		r, ok, err := st.GetRun(ctx, *runID)
		if err != nil {
			log.Fatalf("get run: %v", err)
		}
		if !ok {
			log.Fatalf("run %s not found", *runID)
		}
		fmt.Println(r.ResultJSON)
		return
	}

	runs, err := st.ListRuns(ctx, *limit)
	if err != nil {
		log.Fatalf("list runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	for _, r := range runs {
		degraded := "-"
		if len(r.DegradedPhases) > 0 {
			degraded = strings.Join(r.DegradedPhases, ",")
		}
		fmt.Printf("%s  %s  dialogues=%d  degraded=%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.DialogueCount, degraded)
	}
}
