package ui

// Action is a grid command triggered by a key.
type Action string

const (
	ActionNone         Action = ""
	ActionSearch       Action = "search"
	ActionColumnLeft   Action = "column_left"
	ActionColumnRight  Action = "column_right"
	ActionSort         Action = "sort"
	ActionFilter       Action = "filter"
	ActionClearFilters Action = "clear_filters"
	ActionHide         Action = "hide"
	ActionShowAll      Action = "show_all"
	ActionNextPage     Action = "next_page"
	ActionPrevPage     Action = "prev_page"
	ActionFirstPage    Action = "first_page"
	ActionReload       Action = "reload"
	ActionChat         Action = "chat"
	ActionHelp         Action = "help"
	ActionQuit         Action = "quit"
)

// GridKeyBindings maps keys to actions while the grid has focus. Keys not
// listed here go to the table widget (row movement).
var GridKeyBindings = map[string]Action{
	"/":      ActionSearch,
	"left":   ActionColumnLeft,
	"right":  ActionColumnRight,
	"s":      ActionSort,
	"f":      ActionFilter,
	"x":      ActionClearFilters,
	"h":      ActionHide,
	"H":      ActionShowAll,
	"n":      ActionNextPage,
	"pgdown": ActionNextPage,
	"p":      ActionPrevPage,
	"pgup":   ActionPrevPage,
	"g":      ActionFirstPage,
	"r":      ActionReload,
	"tab":    ActionChat,
	"?":      ActionHelp,
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,
}

// actionForKey returns the grid action bound to key.
func actionForKey(key string) Action {
	return GridKeyBindings[key]
}

// helpRows lists the bindings shown in the help overlay, in display order.
func helpRows() [][]string {
	return [][]string{
		{"↑/↓", "move between rows"},
		{"←/→", "select column"},
		{"s", "sort by column (asc, desc, off)"},
		{"f", "filter selected column"},
		{"x", "clear all filters"},
		{"h/H", "hide column / show all"},
		{"n/p", "next / previous page"},
		{"g", "first page"},
		{"/", "natural-language search"},
		{"r", "reload the seed data"},
		{"tab", "open the assistant chat"},
		{"esc", "back to the grid"},
		{"?", "toggle help"},
		{"q", "quit"},
	}
}

// footerHints lists the short key hints rendered in the footer.
func footerHints() [][]string {
	return [][]string{
		{"?", "help"},
		{"/", "search"},
		{"s", "sort"},
		{"f", "filter"},
		{"tab", "chat"},
		{"q", "quit"},
	}
}
