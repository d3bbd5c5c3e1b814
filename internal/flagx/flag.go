// Package flagx lets several loaders share one command line: each picks out
// only the flags it owns and parses those with its own flag.FlagSet.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps the flags named in allowed, plus the value that follows
// each one as a separate argument. Both "-c file" and "-c=file" forms are
// recognised; everything else is dropped. The result is never nil.
func FilterArgs(args []string, allowed []string) []string {
	return filter(args, allowed, nil)
}

// FilterArgsWithBools is FilterArgs for flag sets that also define boolean
// flags. A boolean flag never consumes the next argument.
func FilterArgsWithBools(args []string, allowed []string, bools []string) []string {
	return filter(args, allowed, bools)
}

func filter(args []string, allowed []string, bools []string) []string {
	known := make(map[string]bool, len(allowed)+len(bools))
	for _, f := range allowed {
		known[f] = true
	}
	for _, f := range bools {
		known[f] = false
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := known[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		takesValue, ok := known[arg]
		if !ok {
			continue
		}
		out = append(out, arg)
		if takesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath returns the value of -c / -config from os.Args, or "" when
// neither is present. The last occurrence wins.
func ConfigPath() string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	return path
}

// SplitList splits a comma separated flag value, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Positional returns the arguments that are not flags. Flags named in
// valued consume the following argument; any other flag stands alone.
func Positional(args []string, valued []string) []string {
	takesValue := make(map[string]bool, len(valued))
	for _, f := range valued {
		takesValue[f] = true
	}

	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i+1:]...)
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			out = append(out, arg)
			continue
		}
		if !strings.Contains(arg, "=") && takesValue[arg] && i+1 < len(args) {
			i++
		}
	}
	return out
}
