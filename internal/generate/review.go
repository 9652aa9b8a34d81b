package generate

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/gdamore/tcell/v2"
	"github.com/jakopako/pomgen/internal/types"
	"github.com/jakopako/pomgen/internal/utils"
	"github.com/rivo/tview"
)

type reviewItem struct {
	action   types.Action
	excluded bool
	distance float64
	color    tcell.Color
}

type reviewList []*reviewItem

func newReviewList(actions []types.Action) reviewList {
	rl := make(reviewList, 0, len(actions))
	for _, a := range actions {
		rl = append(rl, &reviewItem{action: a})
	}
	rl.setColors()
	return rl
}

// setColors computes a color for each item based on the accumulated
// distance between the locators of consecutive actions, so that actions
// on nearby elements get similar colors.
func (rl reviewList) setColors() {
	if len(rl) == 0 {
		return
	}
	for i, e := range rl {
		if i != 0 {
			e.distance = rl[i-1].distance + float64(levenshtein.ComputeDistance(rl[i-1].action.Locator, e.action.Locator))
		}
	}
	// scale to 1 and map to rgb
	maxDist := rl[len(rl)-1].distance * 1.2
	if maxDist == 0 {
		maxDist = 1
	}
	s := 0.73
	v := 0.96
	for _, e := range rl {
		h := e.distance / maxDist
		r, g, b := utils.HSVToRGB(h, s, v)
		e.color = tcell.NewRGBColor(r, g, b)
	}
}

// kept returns the actions that were not excluded.
func (rl reviewList) kept() []types.Action {
	actions := []types.Action{}
	for _, e := range rl {
		if !e.excluded {
			actions = append(actions, e.action)
		}
	}
	return actions
}

var reviewColumns = []string{"type", "value", "page", "locator"}

func (rl reviewList) cell(e *reviewItem, c int) string {
	switch c {
	case 1:
		return string(e.action.Kind)
	case 2:
		return utils.ShortenString(e.action.Value, 20)
	case 3:
		return utils.ShortenString(e.action.PageURL, 40)
	default:
		return utils.ShortenString(e.action.Locator, 60)
	}
}

// InteractiveReview shows the actions in a table in which single actions
// can be excluded from generation by selecting them.
func InteractiveReview(actions []types.Action) ([]types.Action, error) {
	rl := newReviewList(actions)
	if err := rl.showInteractiveTable(); err != nil {
		return nil, err
	}
	return rl.kept(), nil
}

// showInteractiveTable shows an interactive table for excluding actions
func (rl reviewList) showInteractiveTable() error {
	app := tview.NewApplication()
	table := tview.NewTable().SetBorders(true)
	cols, rows := len(reviewColumns)+1, len(rl)+1
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			switch {
			case r == 0 && c == 0:
				table.SetCell(r, c, tview.NewTableCell("").SetAlign(tview.AlignCenter))
			case r == 0:
				table.SetCell(r, c, tview.NewTableCell(reviewColumns[c-1]).
					SetTextColor(tcell.ColorBlue).
					SetAlign(tview.AlignCenter))
			case c == 0:
				table.SetCell(r, c, tview.NewTableCell(fmt.Sprintf("[%d] %s", r-1, rl[r-1].action.Name)).
					SetTextColor(tcell.ColorGreen).
					SetAlign(tview.AlignCenter))
			default:
				table.SetCell(r, c, tview.NewTableCell(rl.cell(rl[r-1], c)).
					SetTextColor(rl[r-1].color).
					SetAlign(tview.AlignCenter))
			}
		}
	}
	table.SetSelectable(true, false)
	table.Select(1, 1).SetFixed(1, 1).SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			app.Stop()
		}
		if key == tcell.KeyEnter {
			table.SetSelectable(true, false)
		}
	}).SetSelectedFunc(func(row int, column int) {
		if row < 1 {
			return
		}
		e := rl[row-1]
		e.excluded = !e.excluded
		if e.excluded {
			table.GetCell(row, 0).SetTextColor(tcell.ColorRed)
			for i := 1; i < cols; i++ {
				table.GetCell(row, i).SetTextColor(tcell.ColorGray)
			}
		} else {
			table.GetCell(row, 0).SetTextColor(tcell.ColorGreen)
			for i := 1; i < cols; i++ {
				table.GetCell(row, i).SetTextColor(e.color)
			}
		}
	})
	button := tview.NewButton("Hit Enter to generate code").SetSelectedFunc(func() {
		app.Stop()
	})

	grid := tview.NewGrid().SetRows(-11, -1).SetColumns(-1, -1, -1).SetBorders(false).
		AddItem(table, 0, 0, 1, 3, 0, 0, true).
		AddItem(button, 1, 1, 1, 1, 0, 0, false)
	grid.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab {
			if button.HasFocus() {
				app.SetFocus(table)
			} else {
				app.SetFocus(button)
			}
			return nil
		}
		return event
	})

	if err := app.SetRoot(grid, true).SetFocus(grid).Run(); err != nil {
		return err
	}
	return nil
}
