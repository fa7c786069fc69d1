package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/rsilvagit/jobboard/internal/listing"
	"github.com/rsilvagit/jobboard/internal/metrics"
	"github.com/rsilvagit/jobboard/internal/model"
	"github.com/rsilvagit/jobboard/internal/output"
)

func buildImportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Scrape the configured job boards once and store new postings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if e.cfg.Importer.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, e.cfg.Importer.Timeout)
				defer cancel()
			}

			st, err := openStack(ctx, e, metrics.Nop())
			if err != nil {
				return err
			}
			defer st.Close()

			im, err := newImporter(e, st.svc)
			if err != nil {
				return err
			}
			res, err := im.Run(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, created %d, skipped %d, duplicates %d\n",
				res.Fetched, res.Created, res.Skipped, res.Duplicates)
			for _, name := range res.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: source %s failed\n", name)
			}
			return err
		},
	}
}

func buildFlushCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-cache",
		Short: "Drop every cached listing and job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.Redis.URL == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "redis.url not set: the server cache is in-process, use GET /api/admin/clear-cache instead")
				return nil
			}
			backend, err := openCache(cmd.Context(), e.cfg, e.log)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := backend.FlushAll(cmd.Context()); err != nil {
				return errors.Wrap(err, "cli: flush cache")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
}

func buildListCommand(e *env) *cobra.Command {
	var (
		page, limit int
		typ         string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one listing page as a table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStack(cmd.Context(), e, metrics.Nop())
			if err != nil {
				return err
			}
			defer st.Close()

			data, err := st.svc.List(cmd.Context(), listing.NewQuery(page, limit, typ))
			if err != nil {
				return err
			}
			var p model.Page
			if err := json.Unmarshal(data, &p); err != nil {
				return errors.Wrap(err, "cli: decode page")
			}
			return output.NewTablePrinter(cmd.OutOrStdout()).WritePage(p)
		},
	}
	cmd.Flags().IntVar(&page, "page", listing.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", listing.DefaultLimit, "jobs per page (max 50)")
	cmd.Flags().StringVar(&typ, "type", "", "job or internship")
	return cmd
}
