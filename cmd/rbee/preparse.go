package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// preOptions are read before the command line is handed to cobra, because
// they decide which plugins exist and therefore which flags clone and check
// accept.
type preOptions struct {
	Plugins    []string // --plug/-p, replaces the configured list
	NoPlugins  bool     // --no-plugins
	ConfigFile string   // --config-file

	// Peeked, not consumed: cobra parses them again.
	Verbose   bool
	Quiet     bool
	Traceback bool
}

// preparse splits the preparser options off args. Options are recognized
// anywhere before "--"; everything else is returned in order.
func preparse(args []string) (preOptions, []string, error) {
	var pre preOptions

	fs := pflag.NewFlagSet("rbee", pflag.ContinueOnError)
	fs.StringArrayVarP(&pre.Plugins, "plug", "p", nil, "")
	fs.BoolVar(&pre.NoPlugins, "no-plugins", false, "")
	fs.StringVar(&pre.ConfigFile, "config-file", "", "")

	var consumed []string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}

		switch name, value, hasValue := splitFlag(arg); name {
		case "plug", "p", "config-file":
			if !hasValue {
				if i+1 >= len(args) {
					return pre, nil, fmt.Errorf("flag needs an argument: %s", arg)
				}
				i++
				value = args[i]
			}
			consumed = append(consumed, "--"+longName(name)+"="+value)
		case "no-plugins":
			consumed = append(consumed, arg)
		default:
			peek(&pre, name)
			rest = append(rest, arg)
		}
	}

	if err := fs.Parse(consumed); err != nil {
		return pre, nil, err
	}
	if pre.NoPlugins && len(pre.Plugins) > 0 {
		return pre, nil, fmt.Errorf("--plug and --no-plugins are mutually exclusive")
	}
	return pre, rest, nil
}

// splitFlag returns the flag name of arg without dashes, and its inline value.
// Non-flags and combined short flags other than -p yield an empty name.
func splitFlag(arg string) (name, value string, hasValue bool) {
	switch {
	case strings.HasPrefix(arg, "--"):
		name = arg[2:]
		if i := strings.IndexByte(name, '='); i >= 0 {
			return name[:i], name[i+1:], true
		}
		return name, "", false
	case strings.HasPrefix(arg, "-p") && len(arg) > 2:
		return "p", strings.TrimPrefix(arg[2:], "="), true
	case strings.HasPrefix(arg, "-") && len(arg) == 2:
		return arg[1:], "", false
	}
	return "", "", false
}

func longName(name string) string {
	if name == "p" {
		return "plug"
	}
	return name
}

func peek(pre *preOptions, name string) {
	switch name {
	case "verbose", "v":
		pre.Verbose = true
	case "quiet", "q":
		pre.Quiet = true
	case "traceback":
		pre.Traceback = true
	}
}
