package tui

import (
	"sync"

	"github.com/ChristianF88/bitsort/output"
	"github.com/ChristianF88/bitsort/radix"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// App is an interactive viewer for the passes of one sort.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	summary   *tview.TextView
	passList  *tview.List
	detail    *tview.TextView
	statusBar *tview.TextView

	mu      sync.Mutex
	report  *output.JSONOutput
	passes  []radix.Pass
	current int
}

// NewApp builds the viewer. passes should come from a verbose recorder so the
// detail panel can show the vectors of each pass.
func NewApp(report *output.JSONOutput, passes []radix.Pass) *App {
	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		report: report,
		passes: passes,
	}
	a.setupUI()
	a.showPass(0)
	return a
}

func (a *App) setupUI() {
	a.summary = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.summary.SetBorder(true).SetTitle(" Summary ").SetTitleAlign(tview.AlignLeft)
	a.summary.SetText(SummaryText(a.report))

	a.passList = tview.NewList().ShowSecondaryText(false)
	a.passList.SetBorder(true).SetTitle(" Passes ").SetTitleAlign(tview.AlignLeft)
	for _, p := range a.passes {
		a.passList.AddItem(PassTitle(p), "", 0, nil)
	}
	a.passList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		a.showPass(index)
	})

	a.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	a.detail.SetBorder(true).SetTitle(" Pass Detail ").SetTitleAlign(tview.AlignLeft)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText(statusText(len(a.passes)))

	body := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.passList, 24, 0, true).
		AddItem(a.detail, 0, 1, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.summary, 8, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("passes", main, true, true)
	a.app.SetInputCapture(a.handleKey)
	a.app.SetRoot(a.pages, true).SetFocus(a.passList)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	case 'n', 'N', 'l':
		a.step(1)
		return nil
	case 'p', 'P', 'h':
		a.step(-1)
		return nil
	}
	switch event.Key() {
	case tcell.KeyEscape:
		a.app.Stop()
		return nil
	case tcell.KeyRight:
		a.step(1)
		return nil
	case tcell.KeyLeft:
		a.step(-1)
		return nil
	}
	return event
}

// step moves the selection by delta passes, clamped to the pass range.
func (a *App) step(delta int) {
	a.mu.Lock()
	next := a.current + delta
	a.mu.Unlock()
	if next < 0 || next >= len(a.passes) {
		return
	}
	a.passList.SetCurrentItem(next)
	a.showPass(next)
}

func (a *App) showPass(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.passes) {
		a.detail.SetText("[yellow]No passes: the input needs no sorting.[white]")
		return
	}
	a.current = index
	a.detail.SetText(PassText(a.passes[index]))
}

// Current returns the index of the displayed pass.
func (a *App) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// ShowError replaces the detail panel with an error message.
func (a *App) ShowError(message string) {
	a.app.QueueUpdateDraw(func() {
		a.detail.SetText("[red]Error:[white] " + tview.Escape(message) + "\n\n[yellow]Press 'q' to quit[white]")
		a.statusBar.SetText("[red]Sort failed![white] | Press 'q' to quit")
	})
}

// Run starts the TUI application and blocks until the user quits.
func (a *App) Run() error {
	return a.app.Run()
}
