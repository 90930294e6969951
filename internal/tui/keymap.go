package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the board key bindings.
type keyMap struct {
	quit         key.Binding
	reload       key.Binding
	toggleHelp   key.Binding
	focusLeft    key.Binding
	focusRight   key.Binding
	focusUp      key.Binding
	focusDown    key.Binding
	moveLeft     key.Binding
	moveRight    key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	addCard      key.Binding
	editCard     key.Binding
	cardInfo     key.Binding
	deleteCard   key.Binding
	addColumn    key.Binding
	editColumn   key.Binding
	deleteColumn key.Binding
	nextSprint   key.Binding
	prevSprint   key.Binding
	copyRef      key.Binding
	projects     key.Binding
	newProject   key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		focusLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		focusRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		focusUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		focusDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		moveLeft:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move card left")),
		moveRight:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move card right")),
		moveUp:       key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move card up")),
		moveDown:     key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move card down")),
		addCard:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new card")),
		editCard:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit card")),
		cardInfo:     key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "card info")),
		deleteCard:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete card")),
		addColumn:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new column")),
		editColumn:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit column")),
		deleteColumn: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete column")),
		nextSprint:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next sprint")),
		prevSprint:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "previous sprint")),
		copyRef:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy card ref")),
		projects:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "projects")),
		newProject:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new project")),
	}
}

// ShortHelp returns the bindings shown in the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addCard, k.editCard, k.moveLeft, k.moveRight, k.nextSprint, k.projects, k.toggleHelp, k.quit,
	}
}

// FullHelp returns every binding grouped for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.focusLeft, k.focusRight, k.focusUp, k.focusDown},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.addCard, k.editCard, k.cardInfo, k.deleteCard, k.copyRef},
		{k.addColumn, k.editColumn, k.deleteColumn},
		{k.nextSprint, k.prevSprint, k.projects, k.newProject, k.reload, k.toggleHelp, k.quit},
	}
}
