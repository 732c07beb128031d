package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/intranet-directory/internal/api/dto"
	"github.com/spec-kit/intranet-directory/internal/domain"
	"github.com/spec-kit/intranet-directory/internal/orgchart"
)

type buildOptions struct {
	file    string
	rules   string
	summary bool
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the org chart from an employee file without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "employee JSON file (array or {\"employees\": [...]})")
	cmd.Flags().StringVar(&opts.rules, "rules", "", "YAML rules overriding the built-in classification")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print one line per person instead of JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runBuild(out io.Writer, opts *buildOptions) error {
	employees, err := readEmployees(opts.file)
	if err != nil {
		return err
	}
	rules, err := orgchart.LoadRules(opts.rules)
	if err != nil {
		return err
	}
	tree, err := orgchart.NewBuilder(rules).Build(employees)
	if err != nil {
		return err
	}
	if opts.summary {
		return writeSummary(out, tree)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

func readEmployees(path string) ([]domain.Employee, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read employees: %w", err)
	}
	employees, err := dto.DecodeImport(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return employees, nil
}

func writeSummary(out io.Writer, tree *orgchart.Tree) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tNAME\tTITLE\tMANAGER")
	tree.Walk(func(n, manager *orgchart.Node, role orgchart.Role) {
		managerName := "-"
		if manager != nil {
			managerName = manager.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", role, n.Name, n.Title, managerName)
	})
	fmt.Fprintf(w, "\t%d employees\t%d branches\t\n", tree.TotalEmployees, len(tree.Branches))
	return w.Flush()
}
