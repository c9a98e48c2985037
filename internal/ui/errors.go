package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"warmtest/internal/domain"
)

// ErrorViewer displays run failures in an interactive TUI
type ErrorViewer struct {
	label string
}

// NewErrorViewer creates a new ErrorViewer for the run of label
func NewErrorViewer(label string) *ErrorViewer {
	return &ErrorViewer{label: label}
}

// View lists failures on the left and the selected one's details on the right
func (ev *ErrorViewer) View(failures []domain.Failure) error {
	if len(failures) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	resolved := make(map[int]bool)

	app := tview.NewApplication()
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	itemText := func(index int) string {
		f := failures[index]
		if resolved[index] {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, f.Test)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, f.Test)
	}
	for i := range failures {
		list.AddItem(itemText(i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(tview.NewFlex().
			AddItem(detailsView, 0, 1, false).
			AddItem(tview.NewBox(), 2, 0, false), 0, 1, false)

	body := tview.NewFlex().
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		open := 0
		for i := range failures {
			if !resolved[i] {
				open++
			}
		}
		headerView.SetText(fmt.Sprintf(" %s: %d failures, %d unresolved | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
			ev.label, len(failures), open))
	}
	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		statsView.SetText(formatFailureStats(failures[index]))
		detailsView.SetText(formatFailureDetails(failures[index]))
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if r := event.Rune(); r == 'r' || r == 'R' {
				index := list.GetCurrentItem()
				resolved[index] = !resolved[index]
				list.SetItemText(index, itemText(index), "")
				updateHeader()
				return nil
			}
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})
	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// formatFailureDetails formats a failure using tview color tags
func formatFailureDetails(f domain.Failure) string {
	var b strings.Builder
	mark := "✗"
	if f.Kind == domain.KindError {
		mark = "!"
	}
	fmt.Fprintf(&b, "[red]%s %s: %s[white]\n\n", mark, f.Kind, tview.Escape(f.Test))
	fmt.Fprintf(&b, "[cyan]Suite: %s[white]\n\n", tview.Escape(f.Suite))
	if f.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(f.Message))
	}
	return b.String()
}

// formatFailureStats formats the header line of a failure
func formatFailureStats(f domain.Failure) string {
	return fmt.Sprintf("[cyan]%d)[white] [yellow]%s[white]#[yellow]%s[white]\n",
		f.Index, tview.Escape(f.Suite), tview.Escape(f.Test))
}
