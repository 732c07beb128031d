package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

type directoryImporter interface {
	Import(ctx context.Context, employees []domain.Employee) (int64, error)
}

type orgRebuilder interface {
	Rebuild(ctx context.Context) (*domain.OrgSnapshot, error)
}

func newImportCmd() *cobra.Command {
	var (
		file    string
		rebuild bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the employee directory with the contents of a file",
		Long: "Replace the employee directory with the contents of a file.\n\n" +
			"The published org chart, and the copy cached in Redis, keep serving the\n" +
			"previous directory until the next rebuild. Pass --rebuild=false only when\n" +
			"\"orgctl rebuild\" or the API's rebuild endpoint runs afterwards.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			employees, err := readEmployees(file)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			return runImport(cmd.Context(), cmd.OutOrStdout(), s.directory, s.org, employees, rebuild)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "employee JSON file (array or {\"employees\": [...]})")
	cmd.Flags().BoolVar(&rebuild, "rebuild", true, "rebuild the org chart after importing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// runImport replaces the directory and, when rebuild is set, republishes the
// org chart so readers and the snapshot cache see the new rows.
func runImport(ctx context.Context, out io.Writer, directory directoryImporter, org orgRebuilder, employees []domain.Employee, rebuild bool) error {
	n, err := directory.Import(ctx, employees)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d employees\n", n)
	if !rebuild {
		fmt.Fprintln(out, "org chart not rebuilt; run \"orgctl rebuild\" to publish the new directory")
		return nil
	}
	return runRebuild(ctx, out, org)
}

func runRebuild(ctx context.Context, out io.Writer, org orgRebuilder) error {
	snap, err := org.Rebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "org chart rebuilt with %d employees\n", snap.TotalEmployees)
	return nil
}

func newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild and persist the org chart from the stored directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			return runRebuild(cmd.Context(), cmd.OutOrStdout(), s.org)
		},
	}
}
