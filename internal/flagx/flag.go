// Package flagx holds small helpers for parsing a subset of command-line
// flags without colliding with flags owned by other layers.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags,
// keeping flag values that follow as separate arguments.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// A token that starts with '-' is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// lookupString parses only the given aliases of one string flag from args.
// When several aliases are present the last one wins.
func lookupString(args []string, aliases ...string) string {
	var value string

	names := make([]string, 0, len(aliases))
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, a := range aliases {
		fs.StringVar(&value, a, "", "")
		names = append(names, "-"+a)
	}

	_ = fs.Parse(FilterArgs(args, names))
	return value
}

// JsonConfigFlags extracts the JSON config path given via -c or -config.
// It returns "" when neither flag is present.
func JsonConfigFlags(args []string) string {
	return lookupString(args, "c", "config")
}

// EnvFileFlags extracts the dotenv file path given via -env.
// It returns "" when the flag is absent.
func EnvFileFlags(args []string) string {
	return lookupString(args, "env")
}
