package plug

import "github.com/spf13/pflag"

// ArgGroup is handed to ArgExtender plugins to add flags to one sub-command.
//
// Flag names are not deduplicated across plugins: defining a flag twice
// panics with pflag's "flag redefined" error.
type ArgGroup struct {
	command string
	flags   *pflag.FlagSet
}

// NewArgGroup wraps the flag set of the named sub-command.
func NewArgGroup(command string, flags *pflag.FlagSet) *ArgGroup {
	return &ArgGroup{command: command, flags: flags}
}

// Command returns the sub-command the group belongs to (e.g. "clone").
func (g *ArgGroup) Command() string { return g.command }

// Flags returns the flag set to define flags on.
func (g *ArgGroup) Flags() *pflag.FlagSet { return g.flags }

// Args is the parsed command line handed to ArgConsumer plugins.
// Getters return zero values for flags that are undefined or of another type,
// so a plugin never fails just because its flag was not supplied.
type Args struct {
	command string
	flags   *pflag.FlagSet
}

// NewArgs wraps a parsed flag set.
func NewArgs(command string, flags *pflag.FlagSet) Args {
	return Args{command: command, flags: flags}
}

// Command returns the sub-command that was invoked.
func (a Args) Command() string { return a.command }

// Defined reports whether a flag with this name exists on the command.
func (a Args) Defined(name string) bool {
	return a.flags != nil && a.flags.Lookup(name) != nil
}

// Changed reports whether the flag was set on the command line.
func (a Args) Changed(name string) bool {
	return a.Defined(name) && a.flags.Changed(name)
}

// String returns the value of a string flag.
func (a Args) String(name string) string {
	if !a.Defined(name) {
		return ""
	}
	v, err := a.flags.GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// StringSlice returns the value of a string slice flag.
func (a Args) StringSlice(name string) []string {
	if !a.Defined(name) {
		return nil
	}
	v, err := a.flags.GetStringSlice(name)
	if err != nil {
		return nil
	}
	return v
}

// Bool returns the value of a bool flag.
func (a Args) Bool(name string) bool {
	if !a.Defined(name) {
		return false
	}
	v, err := a.flags.GetBool(name)
	if err != nil {
		return false
	}
	return v
}

// Int returns the value of an int flag.
func (a Args) Int(name string) int {
	if !a.Defined(name) {
		return 0
	}
	v, err := a.flags.GetInt(name)
	if err != nil {
		return 0
	}
	return v
}
