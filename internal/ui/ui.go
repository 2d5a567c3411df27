package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	awsclient "github.com/alexalbu001/envreport/internal/aws"
	"github.com/alexalbu001/envreport/pkg"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Collector produces a fresh report for a region.
type Collector interface {
	Collect(ctx context.Context, region string) (*pkg.EnvironmentReport, error)
}

// MetricsFunc returns the current utilization of the named cluster.
type MetricsFunc func(ctx context.Context, clusterName string) (*awsclient.ClusterMetrics, error)

type entryKind int

const (
	entryCluster entryKind = iota
	entryBucket
	entryFailure
)

type entry struct {
	kind    entryKind
	name    string
	text    string
	cluster pkg.ClusterSummary
}

type ReportUI struct {
	app         *tview.Application
	ctx         context.Context
	collector   Collector
	metrics     MetricsFunc
	region      string
	report      *pkg.EnvironmentReport
	entries     []entry
	filtered    []entry
	list        *tview.List
	searchInput *tview.InputField
	layout      *tview.Flex
	header      *tview.TextView
	logo        *tview.TextView
}

func NewReportUI(app *tview.Application, ctx context.Context, collector Collector, metrics MetricsFunc, report *pkg.EnvironmentReport) *ReportUI {
	r := &ReportUI{
		app:         app,
		ctx:         ctx,
		collector:   collector,
		metrics:     metrics,
		list:        tview.NewList().ShowSecondaryText(false),
		searchInput: tview.NewInputField().SetLabel("/ "),
		header:      tview.NewTextView().SetTextAlign(tview.AlignLeft).SetDynamicColors(true),
		logo:        tview.NewTextView().SetTextAlign(tview.AlignRight),
	}
	r.setReport(report)
	r.layout = r.createLayout()
	return r
}

// setReport replaces the displayed report and reapplies the current search.
func (r *ReportUI) setReport(report *pkg.EnvironmentReport) {
	r.report = report
	r.region = report.Region
	r.entries = buildEntries(report)
	r.filterEntries(r.searchInput.GetText())
}

func buildEntries(report *pkg.EnvironmentReport) []entry {
	var entries []entry

	if f := report.Clusters.Failure; f != nil {
		entries = append(entries, failureEntry(f))
	}
	for _, c := range report.Clusters.Items {
		entries = append(entries, entry{
			kind:    entryCluster,
			name:    c.Name,
			text:    clusterText(c),
			cluster: c,
		})
	}

	if f := report.Buckets.Failure; f != nil {
		entries = append(entries, failureEntry(f))
	}
	for _, b := range report.Buckets.Items {
		entries = append(entries, entry{
			kind: entryBucket,
			name: b.Name,
			text: fmt.Sprintf("[::b]bucket[::-]  %s (created %s)", b.Name, b.CreatedAt.UTC().Format(time.DateOnly)),
		})
	}

	return entries
}

func failureEntry(f *pkg.CategoryFailure) entry {
	return entry{
		kind: entryFailure,
		name: string(f.Category),
		text: fmt.Sprintf("[red]%s unavailable (%s): %s[-]", f.Category, f.Cause, f.Message),
	}
}

func clusterText(c pkg.ClusterSummary) string {
	statusColor := "[white]"
	switch strings.ToLower(c.Status) {
	case "active":
		statusColor = "[green]"
	case "provisioning", "deprovisioning":
		statusColor = "[yellow]"
	case "failed", "inactive":
		statusColor = "[red]"
	}
	return fmt.Sprintf("[::b]cluster[::-] %s (Containers: %d, Services: %d, Tasks: %d) - Status: %s%s[-]",
		c.Name, c.RegisteredContainerCount, c.ActiveServiceCount, c.RunningTaskCount, statusColor, c.Status)
}

func (r *ReportUI) updateList() {
	r.list.Clear()
	for _, e := range r.filtered {
		r.list.AddItem(e.text, "", 0, nil)
	}
	r.updateHeader()
}

func (r *ReportUI) updateHeader() {
	r.header.Clear()

	user := "[red]unavailable[-]"
	if id, ok := r.report.Identity.One(); ok {
		user = fmt.Sprintf("%s (created %s)", id.Name, id.CreatedAt.UTC().Format(time.DateOnly))
	} else if f := r.report.Identity.Failure; f != nil {
		user = fmt.Sprintf("[red]unavailable (%s)[-]", f.Cause)
	}

	fmt.Fprintf(r.header, "Region: [yellow]%s[-]\n", r.region)
	fmt.Fprintf(r.header, "IAM user: %s\n", user)
	fmt.Fprintf(r.header, "Total Clusters: %d\n", r.report.Clusters.Len())
	fmt.Fprintf(r.header, "Total Buckets: %d\n", r.report.Buckets.Len())
	fmt.Fprintf(r.header, "Collected: %s", r.report.CollectedAt.UTC().Format(time.DateTime))
}

func (r *ReportUI) filterEntries(query string) {
	if query == "" {
		r.filtered = r.entries
	} else {
		r.filtered = []entry{}
		for _, e := range r.entries {
			if strings.Contains(strings.ToLower(e.name), strings.ToLower(query)) {
				r.filtered = append(r.filtered, e)
			}
		}
	}
	r.updateList()
}

// selected returns the entry under the cursor.
func (r *ReportUI) selected() (entry, bool) {
	if r.list.GetItemCount() == 0 {
		return entry{}, false
	}
	i := r.list.GetCurrentItem()
	if i < 0 || i >= len(r.filtered) {
		return entry{}, false
	}
	return r.filtered[i], true
}

func (r *ReportUI) setupSearchInput() {
	r.searchInput.
		SetChangedFunc(func(text string) {
			r.filterEntries(text)
		}).
		SetFieldBackgroundColor(tcell.GetColor("#000000"))

	r.searchInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			r.searchInput.SetText("")
			r.filterEntries("")
			r.app.SetFocus(r.list)
			return nil
		case tcell.KeyEnter, tcell.KeyDown:
			if r.list.GetItemCount() > 0 {
				r.app.SetFocus(r.list)
			}
			return nil
		}
		return event
	})
}

func (r *ReportUI) setupListInputCapture() {
	r.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyRune:
			switch event.Rune() {
			case 'm': // Cluster utilization
				if e, ok := r.selected(); ok && e.kind == entryCluster {
					go r.showClusterMetrics(e.cluster)
				}
				return nil
			case 'r': // Collect again
				go r.refresh()
				return nil
			case 'q':
				r.app.Stop()
				return nil
			case '/': // Activate search
				r.app.SetFocus(r.searchInput)
				return nil
			}
		case tcell.KeyUp:
			if r.list.GetCurrentItem() == 0 {
				r.app.SetFocus(r.searchInput)
				return nil
			}
		}
		return event
	})
}

// metricsMessage fetches utilization for cluster and formats it for a modal.
func (r *ReportUI) metricsMessage(cluster pkg.ClusterSummary) string {
	if r.metrics == nil {
		return "Cluster metrics are not available."
	}
	m, err := r.metrics(r.ctx, cluster.Name)
	if err != nil {
		slog.Warn("failed to fetch cluster metrics", slog.String("cluster", cluster.Name), slog.String("error", err.Error()))
		return fmt.Sprintf("Failed to fetch metrics for %s: %v", cluster.Name, err)
	}
	return fmt.Sprintf("Cluster: %s\nCPU utilization: %.2f%%\nMemory utilization: %.2f%%",
		cluster.Name, m.CPUUtilization, m.MemoryUtilization)
}

func (r *ReportUI) showClusterMetrics(cluster pkg.ClusterSummary) {
	msg := r.metricsMessage(cluster)
	r.app.QueueUpdateDraw(func() {
		showMessage(r.app, msg, r.layout)
	})
}

// collect asks the collector for a new report of the current region.
func (r *ReportUI) collect() (*pkg.EnvironmentReport, error) {
	report, err := r.collector.Collect(r.ctx, r.region)
	if err != nil {
		return nil, fmt.Errorf("failed to collect report for %s: %w", r.region, err)
	}
	return report, nil
}

func (r *ReportUI) refresh() {
	report, err := r.collect()
	r.app.QueueUpdateDraw(func() {
		if err != nil {
			showMessage(r.app, err.Error(), r.layout)
			return
		}
		r.setReport(report)
	})
}

func (r *ReportUI) createLayout() *tview.Flex {
	legend := tview.NewTextView().
		SetText("[yellow]m[-] - Cluster metrics | [green]r[-] - Refresh | [#69359C]/[-] - Search | [red]q[-] - Quit").
		SetTextColor(tcell.ColorWhite).
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	listFrame := tview.NewFrame(r.list).
		SetBorders(0, 0, 0, 0, 0, 0)

	r.logo.SetText(`
                                        __
  ___  ____ _   __ _____ ___  ____  ____  _____/ /_
 / _ \/ __ \ | / // ___// _ \/ __ \/ __ \/ ___/ __/
/  __/ / / / |/ // /   /  __/ /_/ / /_/ / /  / /_
\___/_/ /_/|___//_/    \___/ .___/\____/_/   \__/
                          /_/
`).SetTextColor(tcell.ColorYellow)

	topBar := tview.NewFlex().
		AddItem(r.header, 0, 1, false).
		AddItem(r.logo, 0, 1, false)

	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topBar, 7, 1, false).
		AddItem(r.searchInput, 1, 1, false).
		AddItem(listFrame, 0, 1, true).
		AddItem(legend, 1, 1, false)
}

// DisplayReport sets up the report view as the root of app.
func DisplayReport(app *tview.Application, ctx context.Context, collector Collector, metrics MetricsFunc, report *pkg.EnvironmentReport) {
	reportUI := NewReportUI(app, ctx, collector, metrics, report)

	reportUI.setupSearchInput()
	reportUI.setupListInputCapture()

	app.SetRoot(reportUI.layout, true)
	app.SetFocus(reportUI.list)
}

// showMessage shows a modal with a message and an OK button that returns to the previous view.
func showMessage(app *tview.Application, message string, previousView tview.Primitive) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			app.SetRoot(previousView, true)
		})

	app.SetRoot(modal, false)
}
