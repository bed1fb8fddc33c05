package flags

import (
	"strings"

	"github.com/urfave/cli"
)

func eachName(longName string, fn func(string)) {
	parts := strings.Split(longName, ",")
	for _, name := range parts {
		name = strings.Trim(name, " ")
		fn(name)
	}
}

// MarkRequired returns a copy of flags with the given string flags marked as
// required.
func MarkRequired(flagSet []cli.Flag, names ...string) []cli.Flag {
	updated := make([]cli.Flag, 0, len(flagSet))
	for _, f := range flagSet {
		if sf, ok := f.(cli.StringFlag); ok {
			for _, n := range names {
				if n == sf.GetName() {
					sf.Required = true
					f = sf
					break
				}
			}
		}
		updated = append(updated, f)
	}
	return updated
}
