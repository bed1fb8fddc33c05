package flags

import (
	"flag"
	"strings"

	"github.com/nspcc-dev/neotx/pkg/encoding/fixedn"
	"github.com/urfave/cli"
)

// Fixed8 is a GAS amount with flag.Value methods.
type Fixed8 struct {
	IsSet bool
	Value fixedn.Fixed8
}

// Fixed8Flag is a flag with GAS amount value, like "0.5".
type Fixed8Flag struct {
	Name  string
	Usage string
	Value Fixed8
}

var (
	_ flag.Value = (*Fixed8)(nil)
	_ cli.Flag   = Fixed8Flag{}
)

// String implements the fmt.Stringer interface.
func (a Fixed8) String() string {
	return a.Value.String()
}

// Set implements the flag.Value interface, negative amounts are not allowed.
func (a *Fixed8) Set(s string) error {
	f, err := fixedn.Fixed8FromString(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if f < 0 {
		return cli.NewExitError("negative GAS amount", 1)
	}
	a.Value = f
	a.IsSet = true
	return nil
}

// String returns a readable representation of this value
// (for usage defaults).
func (f Fixed8Flag) String() string {
	var names []string
	eachName(f.Name, func(name string) {
		names = append(names, getNameHelp(name))
	})

	return strings.Join(names, ", ") + "\t" + f.Usage
}

// GetName returns the name of the flag.
func (f Fixed8Flag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f Fixed8Flag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// Fixed8FromContext returns the amount given in the flag and whether it was
// set at all.
func Fixed8FromContext(ctx *cli.Context, name string) (fixedn.Fixed8, bool) {
	v, ok := ctx.Generic(name).(*Fixed8)
	if !ok || !v.IsSet {
		return 0, false
	}
	return v.Value, true
}
