package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hangxie/parquet-viewer/filter"
	"github.com/hangxie/parquet-viewer/model"
	"github.com/hangxie/parquet-viewer/summary"
)

// cellDisplayWidth caps how many characters of a single cell are rendered.
const cellDisplayWidth = 32

// ViewerApp is the TUI application for viewing a columnar dataset. All state
// mutation happens on the tview event loop; filter evaluation and summary
// computation run on background goroutines and hand results back through
// QueueUpdateDraw.
type ViewerApp struct {
	tviewApp *tview.Application
	state    *ViewState
	fileName string

	layout      *tview.Flex
	headerView  *tview.TextView
	modeLine    *tview.TextView
	content     *tview.Pages
	tableView   *tview.Table
	summaryView *tview.Table
	helpView    *tview.TextView
	bottomBar   *tview.Pages
	filterInput *tview.InputField
	statusLine  *tview.TextView

	// Background work bookkeeping. filterSeq tags each submitted filter so
	// only the most recent one may apply its result.
	filterSeq     uint64
	filterCancel  context.CancelFunc
	summaryCancel context.CancelFunc
	filtering     bool
	snapshot      *summary.Snapshot
}

// NewViewerApp creates a viewer over an already-loaded store.
func NewViewerApp(fileName string, store *model.Store) *ViewerApp {
	return &ViewerApp{
		tviewApp: tview.NewApplication(),
		state:    NewViewState(store),
		fileName: fileName,
	}
}

// Run builds the layout and blocks until the user quits.
func (app *ViewerApp) Run() error {
	app.createHeaderView()
	app.createModeLine()
	app.createContentViews()
	app.createBottomBar()

	headerHeight := app.getHeaderHeight()
	app.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(app.headerView, headerHeight, 0, false).
		AddItem(app.modeLine, 1, 0, false).
		AddItem(app.content, 0, 1, true).
		AddItem(app.bottomBar, 1, 0, false)

	app.layout.SetInputCapture(app.handleKey)

	// Derive the page size from the actual screen height before each draw so
	// resizes re-window the table immediately
	app.tviewApp.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		_, height := screen.Size()
		pageSize := height - headerHeight - 3 // mode line, table header, bottom bar
		if pageSize < 1 {
			pageSize = 1
		}
		if pageSize != app.state.PageSize() {
			app.state.SetPageSize(pageSize)
			app.refresh()
		}
		return false
	})

	app.refresh()
	return app.tviewApp.SetRoot(app.layout, true).Run()
}

func (app *ViewerApp) handleKey(event *tcell.EventKey) *tcell.EventKey {
	// The filter prompt owns the keyboard while it is open
	if app.tviewApp.GetFocus() == app.filterInput {
		return event
	}

	if event.Key() != tcell.KeyRune {
		return event
	}

	// Outside the table view the navigation runes go to the focused widget;
	// tview's tables and text views scroll themselves on these keys
	if app.state.Mode() != ModeTable {
		switch event.Rune() {
		case 'h', 'j', 'k', 'l', 'g', 'G':
			return event
		}
	}

	switch event.Rune() {
	case 'q':
		app.cancelBackground()
		app.tviewApp.Stop()
	case 't':
		app.switchMode(ModeTable)
	case 's':
		app.switchMode(ModeSummary)
	case '?':
		app.switchMode(ModeHelp)
	case '/':
		app.openFilterPrompt()
	case 'h':
		app.state.ScrollCol(-1)
		app.refresh()
	case 'l':
		app.state.ScrollCol(1)
		app.refresh()
	case 'j':
		app.state.ScrollRow(1)
		app.refresh()
	case 'k':
		app.state.ScrollRow(-1)
		app.refresh()
	case 'g':
		app.state.GoToTop()
		app.refresh()
	case 'G':
		app.state.GoToBottom()
		app.refresh()
	case 'c':
		app.copyVisiblePage()
	default:
		return event
	}
	return nil
}

func (app *ViewerApp) switchMode(mode ViewMode) {
	app.state.SwitchTo(mode)
	if mode == ModeSummary && app.snapshotStale() {
		app.recomputeSummary()
	}
	app.refresh()
}

// snapshotStale reports whether the cached summary no longer matches the
// active mask.
func (app *ViewerApp) snapshotStale() bool {
	return app.snapshot == nil || app.snapshot.Version != app.state.MaskVersion()
}

// Filter handling

func (app *ViewerApp) openFilterPrompt() {
	app.filterInput.SetText(app.state.FilterText())
	app.bottomBar.SwitchToPage("filter")
	app.tviewApp.SetFocus(app.filterInput)
}

func (app *ViewerApp) closeFilterPrompt() {
	app.bottomBar.SwitchToPage("status")
	app.tviewApp.SetFocus(app.layout)
}

// submitFilter compiles and evaluates filter text in the background. A newer
// submission supersedes any in-flight one; results are applied on the UI
// thread only if still current.
func (app *ViewerApp) submitFilter(text string) {
	if app.filterCancel != nil {
		app.filterCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	app.filterCancel = cancel
	app.filterSeq++
	seq := app.filterSeq
	app.filtering = true
	app.updateStatusLine()

	store := app.state.Store()
	go func() {
		defer cancel()

		pred, err := filter.Compile(store, text)
		var mask model.RowMask
		if err == nil {
			mask, err = pred.EvaluateAll(ctx)
		}
		if ctx.Err() != nil {
			return
		}

		app.tviewApp.QueueUpdateDraw(func() {
			if seq != app.filterSeq {
				return // superseded while we were computing
			}
			app.filtering = false
			if err != nil {
				app.state.SetFilterError(err)
				app.refresh()
				return
			}
			app.state.ApplyFilter(text, mask)
			if app.state.Mode() == ModeSummary {
				app.recomputeSummary()
			}
			app.refresh()
		})
	}()
}

// recomputeSummary kicks off a background summary pass over the active mask.
func (app *ViewerApp) recomputeSummary() {
	if app.summaryCancel != nil {
		app.summaryCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	app.summaryCancel = cancel

	store := app.state.Store()
	mask := app.state.Mask()
	version := app.state.MaskVersion()
	text := app.state.FilterText()

	go func() {
		defer cancel()

		snap, err := summary.Summarize(ctx, store, mask)
		if err != nil {
			return // cancelled or internal error; a newer pass will follow
		}
		snap.FilterText = text
		snap.Version = version

		app.tviewApp.QueueUpdateDraw(func() {
			if version != app.state.MaskVersion() {
				return
			}
			app.snapshot = snap
			if app.state.Mode() == ModeSummary {
				app.refresh()
			}
		})
	}()
}

func (app *ViewerApp) cancelBackground() {
	if app.filterCancel != nil {
		app.filterCancel()
	}
	if app.summaryCancel != nil {
		app.summaryCancel()
	}
}

// copyVisiblePage puts the currently visible table page on the system
// clipboard as tab-separated text.
func (app *ViewerApp) copyVisiblePage() {
	store := app.state.Store()
	cols := app.state.VisibleColumns()

	var sb strings.Builder
	for i, c := range cols {
		if i > 0 {
			sb.WriteByte('\t')
		}
		sb.WriteString(store.NameAt(c))
	}
	sb.WriteByte('\n')
	for _, row := range app.state.VisibleRows() {
		for i, c := range cols {
			if i > 0 {
				sb.WriteByte('\t')
			}
			v, err := store.CellAt(row, c)
			if err != nil {
				continue
			}
			sb.WriteString(v.Display())
		}
		sb.WriteByte('\n')
	}
	_ = clipboard.WriteAll(sb.String())
}

// View construction

func (app *ViewerApp) createHeaderView() {
	app.headerView = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	app.headerView.SetBorder(true).
		SetTitle(" File Info ").
		SetTitleAlign(tview.AlignLeft)

	store := app.state.Store()
	info := store.FileInfo()

	var header strings.Builder
	header.WriteString(fmt.Sprintf("[yellow]File:[-] %s  ", filepath.Base(app.fileName)))
	header.WriteString(fmt.Sprintf("[yellow]Rows:[-] %d  ", store.RowCount()))
	header.WriteString(fmt.Sprintf("[yellow]Columns:[-] %d", store.NumColumns()))

	header.WriteString("\n")
	header.WriteString(fmt.Sprintf("[yellow]Version:[-] %d  ", info.Version))
	header.WriteString(fmt.Sprintf("[yellow]Row Groups:[-] %d  ", info.NumRowGroups))
	if info.TotalCompressedSize > 0 && info.TotalUncompressedSize > 0 {
		header.WriteString(fmt.Sprintf("[yellow]Size:[-] %s → %s (%.2fx)  ",
			model.FormatBytes(info.TotalCompressedSize),
			model.FormatBytes(info.TotalUncompressedSize),
			info.CompressionRatio))
	}
	if info.CreatedBy != "" {
		header.WriteString(fmt.Sprintf("[yellow]Created By:[-] %s", info.CreatedBy))
	}

	app.headerView.SetText(header.String())
}

func (app *ViewerApp) getHeaderHeight() int {
	if app.headerView == nil {
		return 3
	}
	text := app.headerView.GetText(false)
	return strings.Count(text, "\n") + 1 + 2 // +2 for borders
}

func (app *ViewerApp) createModeLine() {
	app.modeLine = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
}

func (app *ViewerApp) updateModeLine() {
	entries := []struct {
		label string
		mode  ViewMode
	}{
		{"(t)able", ModeTable},
		{"(s)ummary", ModeSummary},
		{"(?)help", ModeHelp},
	}

	var sb strings.Builder
	sb.WriteByte(' ')
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("  ")
		}
		if e.mode == app.state.Mode() {
			sb.WriteString(fmt.Sprintf("[black:aqua]%s[-:-]", e.label))
		} else {
			sb.WriteString(fmt.Sprintf("[aqua]%s[-]", e.label))
		}
	}
	app.modeLine.SetText(sb.String())
}

func (app *ViewerApp) createContentViews() {
	app.tableView = tview.NewTable().
		SetBorders(false).
		SetSeparator(tview.Borders.Vertical).
		SetFixed(1, 1)

	app.summaryView = tview.NewTable().
		SetBorders(false).
		SetSeparator(tview.Borders.Vertical).
		SetFixed(1, 1)

	app.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	app.helpView.SetBorder(true).
		SetTitle(" Help ").
		SetTitleAlign(tview.AlignLeft)
	app.helpView.SetText(helpText())

	app.content = tview.NewPages().
		AddPage("table", app.tableView, true, true).
		AddPage("summary", app.summaryView, true, false).
		AddPage("help", app.helpView, true, false)
}

func (app *ViewerApp) createBottomBar() {
	app.statusLine = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	app.filterInput = tview.NewInputField().
		SetLabel(" /").
		SetFieldBackgroundColor(tcell.ColorDefault)
	app.filterInput.SetDoneFunc(func(key tcell.Key) {
		text := app.filterInput.GetText()
		app.closeFilterPrompt()
		if key == tcell.KeyEnter {
			app.submitFilter(text)
		}
	})

	app.bottomBar = tview.NewPages().
		AddPage("status", app.statusLine, true, true).
		AddPage("filter", app.filterInput, true, false)
}

// Rendering

// refresh redraws the active view and the chrome around it. It must run on
// the UI thread.
func (app *ViewerApp) refresh() {
	app.updateModeLine()
	app.updateStatusLine()

	switch app.state.Mode() {
	case ModeTable:
		app.fillTable()
		app.content.SwitchToPage("table")
	case ModeSummary:
		app.fillSummary()
		app.content.SwitchToPage("summary")
	case ModeHelp:
		app.content.SwitchToPage("help")
	}
}

func (app *ViewerApp) updateStatusLine() {
	var sb strings.Builder
	sb.WriteString(" [yellow]Keys:[-] q=quit, /=filter, h/l=columns, j/k=page, g/G=top/bottom, c=copy")
	sb.WriteString(fmt.Sprintf("  [yellow]Rows:[-] %d/%d",
		app.state.FilteredCount(), app.state.Store().RowCount()))
	if text := app.state.FilterText(); text != "" {
		sb.WriteString(fmt.Sprintf("  [yellow]Filter:[-] %s", text))
	}
	if app.filtering {
		sb.WriteString("  [aqua]filtering...[-]")
	}
	if err := app.state.FilterErr(); err != nil {
		sb.WriteString(fmt.Sprintf("  [red]%v[-]", err))
	}
	app.statusLine.SetText(sb.String())
}

// fillTable renders the current window of filtered rows. Only visible cells
// are touched; the rest of the dataset never reaches the render layer.
func (app *ViewerApp) fillTable() {
	app.tableView.Clear()

	store := app.state.Store()
	cols := app.state.VisibleColumns()

	// Header row: gutter plus column names from the current column offset
	gutter := tview.NewTableCell("#").
		SetTextColor(tcell.ColorYellow).
		SetAlign(tview.AlignRight).
		SetSelectable(false)
	app.tableView.SetCell(0, 0, gutter)
	for i, c := range cols {
		cell := tview.NewTableCell(store.NameAt(c)).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		app.tableView.SetCell(0, i+1, cell)
	}

	for r, row := range app.state.VisibleRows() {
		cell := tview.NewTableCell(strconv.Itoa(row)).
			SetTextColor(tcell.ColorAqua).
			SetAlign(tview.AlignRight)
		app.tableView.SetCell(r+1, 0, cell)

		for i, c := range cols {
			v, err := store.CellAt(row, c)
			if err != nil {
				continue
			}
			cell := tview.NewTableCell(model.TruncateForDisplay(v.Display(), cellDisplayWidth)).
				SetTextColor(tcell.ColorWhite).
				SetAlign(cellAlign(store.TypeAt(c)))
			app.tableView.SetCell(r+1, i+1, cell)
		}
	}
}

func cellAlign(t model.ColumnType) int {
	if t.IsNumeric() {
		return tview.AlignRight
	}
	return tview.AlignLeft
}

// fillSummary renders one row of aggregates per column. Aggregates that are
// undefined for a column render as "-".
func (app *ViewerApp) fillSummary() {
	app.summaryView.Clear()

	headers := []string{"Column", "Type", "Count", "Nulls", "Min", "Max", "Mean", "Distinct", "Top"}
	for i, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		app.summaryView.SetCell(0, i, cell)
	}

	if app.snapshotStale() {
		cell := tview.NewTableCell("computing...").
			SetTextColor(tcell.ColorAqua)
		app.summaryView.SetCell(1, 0, cell)
		return
	}

	for r, cs := range app.snapshot.Columns {
		fields := []string{
			cs.Name,
			cs.Type.String(),
			strconv.Itoa(cs.Count),
			strconv.Itoa(cs.Nulls),
			summaryValue(cs.Min, cs.HasMinMax),
			summaryValue(cs.Max, cs.HasMinMax),
			summaryMean(cs),
			summary.FormatDistinct(cs),
			summaryValue(cs.MostFrequent, cs.HasMostFrequent),
		}
		for i, f := range fields {
			cell := tview.NewTableCell(model.TruncateForDisplay(f, cellDisplayWidth)).
				SetTextColor(tcell.ColorWhite).
				SetAlign(tview.AlignLeft)
			app.summaryView.SetCell(r+1, i, cell)
		}
	}
}

func summaryValue(v model.Value, defined bool) string {
	if !defined {
		return "-"
	}
	return v.Display()
}

func summaryMean(cs summary.ColumnSummary) string {
	if !cs.HasMean {
		return "-"
	}
	return strconv.FormatFloat(cs.Mean, 'g', 6, 64)
}
