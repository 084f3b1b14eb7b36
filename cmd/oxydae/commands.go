package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-collada/engine/catalog"
	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func newInspectCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect [url...]",
		Short: "Print a summary of each document's scene",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := c.newLoader(cmd)
			defer func() { _ = l.Close() }()

			out := cmd.OutOrStdout()
			var failed int
			for _, res := range c.loadAll(cmd, l, args) {
				if res.Err != nil {
					fmt.Fprintf(out, "%s: %v\n", res.URL, res.Err)
					failed++
					continue
				}
				if asJSON {
					fmt.Fprintln(out, scene.JSON(res.Scene, 2))
					continue
				}
				printSummary(out, res.URL, res.Scene)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed to load", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full scene as JSON")
	return cmd
}

func newQueryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "query [url] [jsonpath]",
		Short: "Evaluate a JSONPath expression against a document's scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := c.newLoader(cmd)
			defer func() { _ = l.Close() }()

			s, err := l.LoadScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			results, err := scene.Query(s, args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintln(out, oj.JSON(r, &ojg.Options{Sort: true}))
			}
			return nil
		},
	}
}

func newIndexCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "index [url...]",
		Short: "Record document scenes in the SQLite catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Catalog == "" {
				return errors.New("no catalog configured: set --catalog or catalog in the config file")
			}
			cat, err := catalog.Open(c.cfg.Catalog)
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			l := c.newLoader(cmd)
			defer func() { _ = l.Close() }()

			out := cmd.OutOrStdout()
			var failed int
			for _, res := range c.loadAll(cmd, l, args) {
				if res.Err != nil {
					fmt.Fprintf(out, "%s: %v\n", res.URL, res.Err)
					failed++
					continue
				}
				if err := cat.Record(res.URL, res.Scene); err != nil {
					return fmt.Errorf("record %s: %w", res.URL, err)
				}
				fmt.Fprintf(out, "indexed %s\n", res.URL)
			}

			docs, err := cat.Documents()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d documents in %s\n", len(docs), c.cfg.Catalog)
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed to load", failed, len(args))
			}
			return nil
		},
	}
}

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [url...]",
		Short: "Check that each document loads into a scene",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := c.newLoader(cmd)
			defer func() { _ = l.Close() }()

			out := cmd.OutOrStdout()
			var failed int
			for _, res := range c.loadAll(cmd, l, args) {
				if res.Err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", res.URL, res.Err)
					failed++
					continue
				}
				fmt.Fprintf(out, "ok   %s\n", res.URL)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents are invalid", failed, len(args))
			}
			return nil
		},
	}
}

func printSummary(w io.Writer, url string, s scene.Scene) {
	meta := s.Metadata()
	fmt.Fprintf(w, "%s\n", url)
	if meta.Title != "" {
		fmt.Fprintf(w, "  title:     %s\n", meta.Title)
	}
	fmt.Fprintf(w, "  up axis:   %s\n", meta.UpAxis)
	fmt.Fprintf(w, "  unit:      %s (%g m)\n", meta.Unit.Name, meta.Unit.Meter)
	fmt.Fprintf(w, "  meshes:    %d\n", len(s.Meshes()))
	fmt.Fprintf(w, "  materials: %d\n", len(s.Materials()))
	fmt.Fprintf(w, "  images:    %d\n", len(s.Images()))
	fmt.Fprintf(w, "  nodes:     %d\n", s.NodeCount())
	s.Walk(func(n *model.Node, depth int) bool {
		label := n.ID
		if label == "" {
			label = n.Name
		}
		if label == "" {
			label = "(unnamed)"
		}
		fmt.Fprintf(w, "  %s- %s", strings.Repeat("  ", depth), label)
		for _, g := range n.Geometries {
			fmt.Fprintf(w, " [%s]", g.MeshID)
		}
		fmt.Fprintln(w)
		return true
	})
}
