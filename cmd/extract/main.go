// Command extract reads a circuit-diagram SVG, infers its wiring graph and
// writes a markdown connection report. Optionally the graph is persisted
// into Neo4j.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/WessleyAI/wiretrace/engine/extract"
	"github.com/WessleyAI/wiretrace/engine/graph"
	"github.com/WessleyAI/wiretrace/engine/reconcile"
	"github.com/WessleyAI/wiretrace/engine/report"
	"github.com/WessleyAI/wiretrace/engine/resolve"
	"github.com/WessleyAI/wiretrace/engine/svg"
)

func main() {
	var (
		input      = flag.String("in", "", "input SVG file")
		output     = flag.String("out", "", "output file (default: input with .md or .json)")
		asJSON     = flag.Bool("json", false, "write the connection list as JSON instead of markdown")
		exclusions = flag.String("exclusions", "", "per-diagram exclusion config (JSON)")
		hub        = flag.String("junction-hub", "FL", "harness hub suffix used in junction naming")
		neo4jURL   = flag.String("neo4j", "", "Neo4j bolt URL (empty: skip persistence)")
		neo4jUser  = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass  = flag.String("neo4j-pass", "", "Neo4j password")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -in diagram.svg [-out report.md]")
		os.Exit(2)
	}
	if *output == "" {
		ext := ".md"
		if *asJSON {
			ext = ".json"
		}
		*output = strings.TrimSuffix(*input, filepath.Ext(*input)) + ext
	}

	ctx := context.Background()
	start := time.Now()

	f, err := os.Open(*input)
	if err != nil {
		log.Error("open input failed", "error", err)
		os.Exit(1)
	}
	doc, err := svg.Parse(f, svg.DefaultLayers())
	f.Close()
	if err != nil {
		log.Error("parse failed", "file", *input, "error", err)
		os.Exit(1)
	}
	log.Info("parsed diagram",
		"file", *input,
		"tokens", len(doc.Tokens),
		"polylines", len(doc.RoutingPolylines),
		"paths", len(doc.RoutingPaths),
		"ground_arrows", len(doc.GroundArrows))

	var excl *reconcile.Exclusions
	if *exclusions != "" {
		excl, err = reconcile.LoadExclusions(*exclusions)
		if err != nil {
			log.Error("load exclusions failed", "file", *exclusions, "error", err)
			os.Exit(1)
		}
	}

	cfg := resolve.DefaultConfig()
	cfg.JunctionHub = *hub

	connections, err := extract.Run(ctx, extract.Job{
		Doc:        doc,
		Config:     cfg,
		Exclusions: excl,
		Logger:     log,
	})
	if err != nil {
		log.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	out := []byte(report.Render(connections))
	if *asJSON {
		out, err = json.MarshalIndent(connections, "", "  ")
		if err != nil {
			log.Error("marshal connections failed", "error", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		log.Error("write report failed", "file", *output, "error", err)
		os.Exit(1)
	}
	log.Info("report written",
		"file", *output,
		"connections", len(connections),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if *neo4jURL == "" {
		return
	}
	driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
	if err != nil {
		log.Error("neo4j connect failed", "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Error("neo4j verify failed", "error", err)
		os.Exit(1)
	}

	diagram := filepath.Base(*input)
	if err := graph.New(driver).SaveDiagram(ctx, diagram, connections); err != nil {
		log.Error("neo4j save failed", "diagram", diagram, "error", err)
		os.Exit(1)
	}
	log.Info("graph persisted", "diagram", diagram, "connections", len(connections))
}
