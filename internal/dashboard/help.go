package dashboard

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given mode,
// providing context-aware help bar content.
func HelpBindings(mode Mode, searching bool) help.KeyMap {
	switch mode {
	case ModeLogin, ModeForm:
		return FormKeyMap()
	case ModeConfirm:
		return ConfirmKeyMap()
	case ModeError:
		return ErrorKeyMap()
	default:
		if searching {
			return SearchKeyMap()
		}
		return BrowseKeyMap()
	}
}
