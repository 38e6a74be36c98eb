package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"mindcanvas/domain/core/aggregates"
	"mindcanvas/domain/core/validators"
	"mindcanvas/domain/services/layout"
	"mindcanvas/domain/services/merge"
	"mindcanvas/domain/services/transform"
	"mindcanvas/infrastructure/di"
	"mindcanvas/infrastructure/persistence/schema"
)

func layoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "layout <file>",
		Short: "Re-lay out a canvas document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			direction, err := opts.resolveDirection(cfg)
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			outcome, err := readDocument(cmd, args[0], schema.NewMigrator(logger.Logger))
			if err != nil {
				return err
			}
			doc := outcome.Document
			result := layout.NewEngine(cfg.Layout.Options).Layout(doc.Nodes, doc.Edges, direction)
			doc.Nodes, doc.Edges = result.Nodes, result.Edges
			doc.Metadata.UpdatedAt = aggregates.Timestamp(opts.now())

			summary(cmd, "Laid out", doc, direction)
			return opts.writeDocument(cmd, doc)
		},
	}
}

func transformCmd(opts *options) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "transform <ai-graph.json>",
		Short: "Turn a generated concept graph into a laid-out canvas document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			direction, err := opts.resolveDirection(cfg)
			if err != nil {
				return err
			}

			graph, err := readConceptGraph(cmd, args[0])
			if err != nil {
				return err
			}
			if err := validators.NewConceptGraphValidator().Validate(graph, nil); err != nil {
				return err
			}

			result := transform.TransformAndLayout(layout.NewEngine(cfg.Layout.Options), *graph, direction)
			doc := aggregates.NewCanvasDocument(result.Nodes, result.Edges, title, opts.now())

			summary(cmd, "Transformed", doc, direction)
			return opts.writeDocument(cmd, doc)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}

func mergeCmd(opts *options) *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "merge <base.json> <incoming.json>",
		Short: "Merge a generated concept graph into a canvas document",
		Long: "Merge a generated concept graph into a canvas document and lay out the result.\n" +
			Subtle.Sprint("Edges in the incoming graph may reference nodes of the base document."),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			direction, err := opts.resolveDirection(cfg)
			if err != nil {
				return err
			}
			mergePolicy := cfg.MergePolicy()
			if policy != "" {
				if mergePolicy, err = merge.ParsePolicy(policy); err != nil {
					return fmt.Errorf("--policy: %w", err)
				}
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			base, err := readDocument(cmd, args[0], schema.NewMigrator(logger.Logger))
			if err != nil {
				return err
			}
			graph, err := readConceptGraph(cmd, args[1])
			if err != nil {
				return err
			}

			doc := base.Document
			existing := make(map[string]struct{}, len(doc.Nodes))
			for _, n := range doc.Nodes {
				existing[n.ID] = struct{}{}
			}
			if err := validators.NewConceptGraphValidator().Validate(graph, existing); err != nil {
				return err
			}

			nodes, edges := transform.Transform(*graph)
			merger := merge.NewMerger(layout.NewEngine(cfg.Layout.Options), merge.Options{Direction: direction, Policy: mergePolicy})
			result, report := merger.MergeWithReport(doc.Nodes, doc.Edges, nodes, edges)
			doc.Nodes, doc.Edges = result.Nodes, result.Edges
			doc.Metadata.UpdatedAt = aggregates.Timestamp(opts.now())

			stderr := cmd.ErrOrStderr()
			if len(report.NodeCollisions) > 0 {
				Warn.Fprintf(stderr, "Overwrote %d nodes: %s\n", len(report.NodeCollisions), strings.Join(report.NodeCollisions, ", "))
			}
			if len(report.EdgeCollisions) > 0 {
				Warn.Fprintf(stderr, "Overwrote %d edges: %s\n", len(report.EdgeCollisions), strings.Join(report.EdgeCollisions, ", "))
			}
			for _, from := range slices.Sorted(maps.Keys(report.Reassigned)) {
				Subtle.Fprintf(stderr, "Renamed %s to %s\n", from, report.Reassigned[from])
			}
			summary(cmd, "Merged into", doc, direction)
			return opts.writeDocument(cmd, doc)
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "", "id collision policy, overwrite or reassign (default from config)")
	return cmd
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <file>",
		Short: "Upgrade a canvas document to the current schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			migrator := schema.NewMigrator(logger.Logger)
			outcome, err := readDocument(cmd, args[0], migrator)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			from := outcome.FromVersion
			if from == "" {
				from = "unversioned"
			}
			fmt.Fprintf(stderr, "%s %s %s %s\n", args[0], Subtle.Sprint(from), Subtle.Sprint("->"), Brand.Sprint(migrator.CurrentVersion()))
			for _, step := range outcome.Steps {
				fmt.Fprintf(stderr, "  %s -> %s  %s\n", step.From, step.To, Subtle.Sprint(step.Description))
			}
			if outcome.Dropped > 0 {
				Warn.Fprintf(stderr, "Dropped %d unreadable entries\n", outcome.Dropped)
			}
			return opts.writeDocument(cmd, outcome.Document)
		},
	}
}

func generateCmd(opts *options) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate a concept map from a text file with the AI model",
		Long: "Generate a concept map from a text file with the AI model.\n" +
			Subtle.Sprint("Reads stdin when the file is '-'. Needs GEMINI_API_KEY or API_KEY."),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			direction, err := opts.resolveDirection(cfg)
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			data, err := readAll(cmd, args[0])
			if err != nil {
				return err
			}
			text := strings.TrimSpace(string(data))
			if text == "" {
				return fmt.Errorf("%s: no text to generate from", args[0])
			}

			generator, err := di.NewGenerator(cfg, logger.Logger)
			if err != nil {
				return err
			}
			Subtle.Fprintf(cmd.ErrOrStderr(), "Generating from %d characters...\n", len(text))
			graph, err := generator.Generate(cmd.Context(), text)
			if err != nil {
				return err
			}
			if err := validators.NewConceptGraphValidator().Validate(graph, nil); err != nil {
				return err
			}

			result := transform.TransformAndLayout(layout.NewEngine(cfg.Layout.Options), *graph, direction)
			doc := aggregates.NewCanvasDocument(result.Nodes, result.Edges, title, opts.now())

			summary(cmd, "Generated", doc, direction)
			return opts.writeDocument(cmd, doc)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}
