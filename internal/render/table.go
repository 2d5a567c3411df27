package render

import (
	"fmt"
	"io"
	"time"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const timeLayout = "2006-01-02 15:04:05 MST"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func failureLine(f *pkg.CategoryFailure) string {
	return fmt.Sprintf("FAILED (%s): %s", f.Cause, f.Message)
}

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func renderTable(out io.Writer, page *Page) error {
	r := page.Report

	fmt.Fprintf(out, "Region: %s  Report: %s  Collected: %s\n\n", r.Region, r.ID, formatTime(r.CollectedAt))

	identity := newTable(out, "IAM user")
	if r.Identity.OK() {
		identity.AppendHeader(table.Row{"NAME", "ARN", "CREATED"})
		for _, id := range r.Identity.Items {
			identity.AppendRow(table.Row{id.Name, id.ARN, formatTime(id.CreatedAt)})
		}
	} else {
		identity.AppendRow(table.Row{failureLine(r.Identity.Failure)})
	}
	identity.Render()
	fmt.Fprintln(out)

	clusters := newTable(out, fmt.Sprintf("ECS clusters (%d in total)", r.Clusters.Len()))
	if r.Clusters.OK() {
		clusters.AppendHeader(table.Row{"NAME", "STATUS", "CONTAINERS", "SERVICES", "TASKS"})
		clusters.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
			{Number: 5, Align: text.AlignRight},
		})
		for _, c := range r.Clusters.Items {
			clusters.AppendRow(table.Row{c.Name, c.Status, c.RegisteredContainerCount, c.ActiveServiceCount, c.RunningTaskCount})
		}
	} else {
		clusters.AppendRow(table.Row{failureLine(r.Clusters.Failure)})
	}
	clusters.Render()
	fmt.Fprintln(out)

	buckets := newTable(out, fmt.Sprintf("S3 buckets (%d in total)", r.Buckets.Len()))
	if r.Buckets.OK() {
		buckets.AppendHeader(table.Row{"NAME", "CREATED"})
		for _, b := range r.Buckets.Items {
			buckets.AppendRow(table.Row{b.Name, formatTime(b.CreatedAt)})
		}
	} else {
		buckets.AppendRow(table.Row{failureLine(r.Buckets.Failure)})
	}
	buckets.Render()

	if len(page.Files) > 0 {
		fmt.Fprintln(out)
		files := newTable(out, fmt.Sprintf("Files in volume (%d in total)", len(page.Files)))
		files.AppendHeader(table.Row{"PATH", "MODIFIED", "SIZE", "DIR"})
		files.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
		for _, f := range page.Files {
			files.AppendRow(table.Row{f.Path, formatTime(f.ModTime), f.Size, f.IsDir})
		}
		files.Render()
	}

	return nil
}
