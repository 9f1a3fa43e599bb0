// Package dashboard is the interactive full-screen view of bookmarked
// ZeroTier networks and their members.
//
// It is a single Bubble Tea program. Key presses, refresh ticks, poll
// results, action results and config-change signals are all messages
// handled one at a time by Model.Update, which is the only code that
// modifies the view model in internal/state. Network and member fetches
// run as tea.Cmd functions and report back by value.
//
// Screens:
//
//	main     bookmarked networks with status, interface, address and traffic
//	members  members of one network from ZeroTier Central
//	detail   raw JSON of a network or member
//	rules    waits for the rules of a network, then opens $EDITOR
//
// Operator command bindings from config.yaml are matched before the
// built-in keys of the screen and run with the terminal handed over; the
// dashboard redraws fully when they return.
package dashboard
