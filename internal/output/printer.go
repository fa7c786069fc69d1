package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rsilvagit/jobboard/internal/model"
)

// TablePrinter writes a listing page as an aligned table.
type TablePrinter struct {
	w io.Writer
}

func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{w: w}
}

func (p *TablePrinter) WritePage(page model.Page) error {
	if len(page.Jobs) == 0 {
		_, err := fmt.Fprintln(p.w, "No jobs found.")
		return err
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTITLE\tCOMPANY\tLOCATION\tSLUG")
	fmt.Fprintln(w, "----\t-----\t-------\t--------\t----")
	for _, j := range page.Jobs {
		loc := j.Location
		if j.IsWFH {
			loc += " (remote)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", j.Type, j.Title, j.Company, loc, j.Slug)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\nPage %d of %d, %d job(s) total.\n", page.Page, page.TotalPages, page.Total)
	return err
}
