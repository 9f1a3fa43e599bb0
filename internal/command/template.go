// Package command resolves operator command templates against the
// current selection.
//
// A template is a shell command line with placeholders:
//
//	%i  interface name of the network (e.g. zt0)
//	%n  network id
//	%a  first assigned address (the member's in member context)
//	%m  member id
//	%N  member name
//	%%  a literal percent sign
//
// Substitution is literal and single-pass: a value containing "%n" is
// not expanded again. A placeholder without a current value becomes the
// empty string. Unrecognized sequences are left as written. The result is
// not quoted or validated; quoting is up to whoever writes the template.
package command

import "strings"

// Context is the selection a template is resolved against. It is either a
// NetworkContext or a MemberContext.
type Context interface {
	replacer() *strings.Replacer
}

// NetworkContext is a selected network.
type NetworkContext struct {
	Interface string
	NetworkID string
	Address   string
}

// MemberContext is a selected member of a network.
type MemberContext struct {
	Network    NetworkContext
	MemberID   string
	MemberName string
	Address    string
}

func (c NetworkContext) replacer() *strings.Replacer {
	return strings.NewReplacer(
		"%%", "%",
		"%i", c.Interface,
		"%n", c.NetworkID,
		"%a", c.Address,
		"%m", "",
		"%N", "",
	)
}

func (c MemberContext) replacer() *strings.Replacer {
	return strings.NewReplacer(
		"%%", "%",
		"%i", c.Network.Interface,
		"%n", c.Network.NetworkID,
		"%a", c.Address,
		"%m", c.MemberID,
		"%N", c.MemberName,
	)
}

// Resolve substitutes every placeholder in template.
func Resolve(template string, ctx Context) string {
	if ctx == nil {
		return template
	}
	return ctx.replacer().Replace(template)
}
