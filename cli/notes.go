package cli

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const notesHelp = "[n] new  [enter] open  [d] delete  [s] sort  [/] search  [u] switch account  [o] log out  [q] quit"

type notesPage struct {
	search *tview.InputField
	list   *tview.List
}

func (c *CLIApp) buildNotesPage() tview.Primitive {
	p := &c.browse

	p.search = tview.NewInputField()
	p.search.SetLabel("Search ")
	p.search.SetPlaceholder("title or text")
	p.search.SetFieldBackgroundColor(c.theme.Field)
	p.search.SetFieldTextColor(c.theme.Foreground)
	p.search.SetLabelColor(c.theme.Title)
	p.search.SetChangedFunc(func(text string) {
		c.query = text
		c.refreshNotes()
	})
	p.search.SetDoneFunc(func(tcell.Key) {
		c.app.SetFocus(p.list)
	})

	p.list = tview.NewList()
	p.list.SetBorder(true)
	p.list.SetTitleAlign(tview.AlignLeft)
	p.list.ShowSecondaryText(true)
	p.list.SetHighlightFullLine(true)
	ApplyThemeToList(p.list, c.theme)
	p.list.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		c.openNote(index)
	})
	p.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyDelete:
			c.confirmDelete()
			return nil
		case tcell.KeyRune:
		default:
			return event
		}

		switch event.Rune() {
		case 'n':
			c.newNote()
		case 'd':
			c.confirmDelete()
		case 's':
			c.cycleSort()
		case '/':
			c.app.SetFocus(p.search)
		case 'u':
			c.showSwitchAccount()
		case 'o':
			c.logout()
		case 'q':
			c.Stop()
		default:
			return event
		}
		return nil
	})

	help := tview.NewTextView()
	help.SetDynamicColors(true)
	help.SetText(c.theme.tags().Secondary + tview.Escape(notesHelp) + "[-]")

	left := tview.NewFlex()
	left.SetDirection(tview.FlexRow)
	left.AddItem(p.search, 1, 0, false)
	left.AddItem(p.list, 0, 1, true)
	left.AddItem(help, 1, 0, false)

	right := tview.NewFlex()
	right.SetDirection(tview.FlexRow)
	right.AddItem(c.statsView, 0, 1, false)
	right.AddItem(c.accountsView, 0, 1, false)
	right.AddItem(c.logView, 0, 1, false)

	layout := tview.NewFlex()
	layout.SetDirection(tview.FlexColumn)
	layout.AddItem(left, 0, 2, true)
	layout.AddItem(right, 0, 1, false)
	return layout
}

func (c *CLIApp) showNotes() {
	if !c.session.Valid() {
		c.showLogin()
		return
	}

	c.pages.SwitchToPage(pageNotes)
	c.refreshNotes()
	c.app.SetFocus(c.browse.list)
}

// refreshNotes reloads the session's notes with the current query and order
func (c *CLIApp) refreshNotes() {
	if !c.session.Valid() {
		return
	}

	notes, err := c.service.ListNotes(c.ctx, c.session, c.query, c.order)
	if err != nil {
		c.showError(err)
		return
	}

	list := c.browse.list
	current := list.GetCurrentItem()

	c.notes = notes
	list.Clear()
	now := time.Now()
	for _, note := range notes {
		list.AddItem(noteMainText(note), noteSecondaryText(note, now), 0, nil)
	}
	if current < len(notes) {
		list.SetCurrentItem(current)
	}

	list.SetTitle(fmt.Sprintf(" %s ·%s", tview.Escape(c.session.Username), notesTitle(len(notes), c.order)))
}

func (c *CLIApp) cycleSort() {
	c.order = c.order.Next()
	c.refreshNotes()
	c.showInfo("Sorted by " + c.order.Label())
}

func (c *CLIApp) confirmDelete() {
	index := c.browse.list.GetCurrentItem()
	if index < 0 || index >= len(c.notes) {
		return
	}
	note := c.notes[index]

	modal := tview.NewModal()
	modal.SetText(fmt.Sprintf("Delete %q?", noteMainText(note)))
	modal.AddButtons([]string{"Delete", "Cancel"})
	modal.SetDoneFunc(func(_ int, label string) {
		c.pages.RemovePage(pageConfirm)
		if label == "Delete" {
			if err := c.service.DeleteNote(c.ctx, c.session, note.ID); err != nil {
				c.showError(err)
			} else {
				c.showInfo("Note deleted")
			}
		}
		c.showNotes()
	})

	c.pages.AddPage(pageConfirm, modal, false, true)
	c.app.SetFocus(modal)
}
