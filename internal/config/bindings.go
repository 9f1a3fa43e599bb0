package config

import (
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"
)

// Scope says which selection a binding's template is resolved against.
type Scope string

const (
	ScopeNetwork Scope = "network"
	ScopeMember  Scope = "member"
)

// Binding maps one key to a shell command template.
type Binding struct {
	Key      string
	Scope    Scope
	Template string
}

// Reserved lists the built-in action keys per scope. Bindings may not use them.
type Reserved map[Scope][]string

// Bindings is the validated, immutable set of command bindings.
// Reloading the config produces a new value; it is never edited in place.
type Bindings struct {
	byScope map[Scope]map[string]Binding
}

// Lookup returns the binding for key in scope.
func (b Bindings) Lookup(scope Scope, key string) (Binding, bool) {
	binding, ok := b.byScope[scope][key]
	return binding, ok
}

// List returns the bindings of a scope ordered by key.
func (b Bindings) List(scope Scope) []Binding {
	out := make([]Binding, 0, len(b.byScope[scope]))
	for _, binding := range b.byScope[scope] {
		out = append(out, binding)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len returns the total number of bindings across scopes.
func (b Bindings) Len() int {
	n := 0
	for _, m := range b.byScope {
		n += len(m)
	}
	return n
}

// BindingError reports a binding dropped at load time.
type BindingError struct {
	Scope  Scope
	Key    string
	Reason string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("%s binding %q ignored: %s", e.Scope, e.Key, e.Reason)
}

// ValidateBindings turns the raw maps of config.yaml into a Bindings set.
// Invalid entries are dropped and reported; valid ones are always kept.
func ValidateBindings(cmds Commands, reserved Reserved) (Bindings, []error) {
	out := Bindings{byScope: map[Scope]map[string]Binding{
		ScopeNetwork: {},
		ScopeMember:  {},
	}}
	var warnings []error

	add := func(scope Scope, raw map[string]string) {
		taken := make(map[string]bool, len(reserved[scope]))
		for _, k := range reserved[scope] {
			taken[k] = true
		}

		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			tmpl := raw[key]
			switch {
			case !isSingleKey(key):
				warnings = append(warnings, &BindingError{Scope: scope, Key: key, Reason: "key must be a single printable character"})
			case taken[key]:
				warnings = append(warnings, &BindingError{Scope: scope, Key: key, Reason: "collides with a built-in action key"})
			case tmpl == "":
				warnings = append(warnings, &BindingError{Scope: scope, Key: key, Reason: "empty command template"})
			default:
				out.byScope[scope][key] = Binding{Key: key, Scope: scope, Template: tmpl}
			}
		}
	}

	add(ScopeNetwork, cmds.Network)
	add(ScopeMember, cmds.Member)
	return out, warnings
}

func isSingleKey(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsPrint(r) && !unicode.IsSpace(r)
}
