package dashboard

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/muurk/ztdash/internal/config"
)

// mainKeyMap defines key bindings for the main network list
type mainKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Members    key.Binding
	Detail     key.Binding
	EditRules  key.Binding
	Join       key.Binding
	Leave      key.Binding
	JoinByID   key.Binding
	BookmarkID key.Binding
	Forget     key.Binding
	Import     key.Binding
	Filter     key.Binding
	Refresh    key.Binding
	Reload     key.Binding
	Dismiss    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k mainKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Members, k.Join, k.Leave, k.JoinByID, k.Filter, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k mainKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Members, k.Detail, k.EditRules},
		{k.Join, k.Leave, k.JoinByID, k.BookmarkID, k.Forget, k.Import},
		{k.Filter, k.Refresh, k.Reload, k.Dismiss, k.Help, k.Quit},
	}
}

// memberKeyMap defines key bindings for the member list
type memberKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Authorize   key.Binding
	Deauthorize key.Binding
	Rename      key.Binding
	Delete      key.Binding
	Detail      key.Binding
	EditRules   key.Binding
	Filter      key.Binding
	Refresh     key.Binding
	Dismiss     key.Binding
	Help        key.Binding
	Back        key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k memberKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Authorize, k.Deauthorize, k.Rename, k.Delete, k.Filter, k.Help, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k memberKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Detail, k.EditRules},
		{k.Authorize, k.Deauthorize, k.Rename, k.Delete},
		{k.Filter, k.Refresh, k.Dismiss, k.Help, k.Back},
	}
}

// detailKeyMap defines key bindings for the JSON detail screen
type detailKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Back key.Binding
}

func (k detailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back}
}

func (k detailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Back}}
}

func newMainKeyMap() mainKeyMap {
	return mainKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Members: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "members"),
		),
		Detail: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "json"),
		),
		EditRules: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit rules"),
		),
		Join: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "join"),
		),
		Leave: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "leave"),
		),
		JoinByID: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "join id"),
		),
		BookmarkID: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "bookmark id"),
		),
		Forget: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "forget"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import joined"),
		),
		Filter: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload config"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

func newMemberKeyMap() memberKeyMap {
	return memberKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Authorize: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "authorize"),
		),
		Deauthorize: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "deauthorize"),
		),
		Rename: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete"),
		),
		Detail: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "json"),
		),
		EditRules: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit rules"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/esc", "back"),
		),
	}
}

func newDetailKeyMap() detailKeyMap {
	return detailKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "pgup"),
			key.WithHelp("↑/pgup", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "pgdown"),
			key.WithHelp("↓/pgdn", "scroll down"),
		),
		Back: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/esc", "back"),
		),
	}
}

// ReservedKeys returns the built-in action keys of each binding scope.
// Command bindings may not reuse them.
func ReservedKeys() config.Reserved {
	return config.Reserved{
		config.ScopeNetwork: printableKeys(newMainKeyMap().FullHelp()),
		config.ScopeMember:  printableKeys(newMemberKeyMap().FullHelp()),
	}
}

func printableKeys(groups [][]key.Binding) []string {
	var out []string
	for _, group := range groups {
		for _, b := range group {
			for _, k := range b.Keys() {
				if len([]rune(k)) == 1 {
					out = append(out, k)
				}
			}
		}
	}
	return out
}
