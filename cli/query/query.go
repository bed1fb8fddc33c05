/*
Package query contains read-only commands, nothing is signed or sent.
*/
package query

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/nspcc-dev/neotx/cli/flags"
	"github.com/nspcc-dev/neotx/cli/options"
	"github.com/nspcc-dev/neotx/cli/wallet"
	"github.com/nspcc-dev/neotx/pkg/core/native/nativehashes"
	"github.com/nspcc-dev/neotx/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/urfave/cli"
)

// NewCommands returns 'query' command.
func NewCommands() []cli.Command {
	addrFlags := append([]cli.Flag{
		flags.AddressFlag{
			Name:  "address, a",
			Usage: "account address or script hash in LE",
		},
	}, options.Common...)
	return []cli.Command{{
		Name:  "query",
		Usage: "query network state",
		Subcommands: []cli.Command{
			{
				Name:      "balance",
				Usage:     "get NEP-17 token balances of the account",
				UsageText: "neotx query balance --address <address> [--token <token> ...] [-r endpoint]",
				Description: `Prints balances of the tokens given (NEO and GAS by default),
   all of them are requested with a single invocation.`,
				Action: queryBalance,
				Flags: append([]cli.Flag{
					cli.StringSliceFlag{
						Name:  "token, t",
						Usage: "token (NEO, GAS, contract hash in LE or address), can be repeated",
					},
				}, addrFlags...),
			},
			{
				Name:      "unclaimed",
				Usage:     "get the amount of GAS the account can claim",
				UsageText: "neotx query unclaimed --address <address> [-r endpoint]",
				Action:    queryUnclaimed,
				Flags:     addrFlags,
			},
			{
				Name:      "policy",
				Usage:     "get network fee settings",
				UsageText: "neotx query policy [--address <address>] [-r endpoint]",
				Description: `Prints fee per byte, execution fee factor and storage price. If the
   address is given, also checks whether it's blocked by the network.`,
				Action: queryPolicy,
				Flags: append([]cli.Flag{
					flags.AddressFlag{
						Name:  "address, a",
						Usage: "account address or script hash in LE",
					},
				}, options.Common...),
			},
			{
				Name:      "candidates",
				Usage:     "list NEO candidates",
				UsageText: "neotx query candidates [-r endpoint]",
				Action:    queryCandidates,
				Flags:     options.Common,
			},
		},
	}}
}

func getAddress(ctx *cli.Context) (util.Uint160, error) {
	if ctx.NArg() != 0 {
		return util.Uint160{}, cli.NewExitError("unexpected arguments", 1)
	}
	addr, ok := flags.AddressFromContext(ctx, "address")
	if !ok {
		return util.Uint160{}, cli.NewExitError("missing account address (--address)", 1)
	}
	return addr, nil
}

func queryBalance(ctx *cli.Context) error {
	addr, err := getAddress(ctx)
	if err != nil {
		return err
	}
	var tokens []util.Uint160
	for _, s := range ctx.StringSlice("token") {
		h, err := wallet.ParseToken(s)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		tokens = append(tokens, h)
	}
	if len(tokens) == 0 {
		tokens = []util.Uint160{nativehashes.Neo, nativehashes.Gas}
	}

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	env, exitErr := options.GetEnv(gctx, ctx)
	if exitErr != nil {
		return exitErr
	}
	defer env.Close()

	bals, err := env.Facade.GetBalances(addr, tokens...)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	buf := bytes.NewBuffer(nil)
	// Ignore the errors below because `Write` to buffer doesn't return error.
	tw := tabwriter.NewWriter(buf, 0, 4, 4, '\t', 0)
	for _, b := range bals {
		_, _ = tw.Write([]byte(tokenName(b.Hash) + ":\t" + b.String() + "\n"))
	}
	_ = tw.Flush()
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}

func queryUnclaimed(ctx *cli.Context) error {
	addr, err := getAddress(ctx)
	if err != nil {
		return err
	}

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	env, exitErr := options.GetEnv(gctx, ctx)
	if exitErr != nil {
		return exitErr
	}
	defer env.Close()

	amount, err := env.Facade.UnclaimedGas(addr)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, fixedn.ToString(amount, 8))
	return nil
}

func queryPolicy(ctx *cli.Context) error {
	if ctx.NArg() != 0 {
		return cli.NewExitError("unexpected arguments", 1)
	}
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	env, exitErr := options.GetEnv(gctx, ctx)
	if exitErr != nil {
		return exitErr
	}
	defer env.Close()

	p, err := env.Facade.GetPolicy()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	buf := bytes.NewBuffer(nil)
	tw := tabwriter.NewWriter(buf, 0, 4, 4, '\t', 0)
	_, _ = fmt.Fprintf(tw, "Fee per byte:\t%s GAS\n", fixedn.Fixed8(p.FeePerByte))
	_, _ = fmt.Fprintf(tw, "Execution fee factor:\t%d\n", p.ExecFeeFactor)
	_, _ = fmt.Fprintf(tw, "Storage price:\t%s GAS\n", fixedn.Fixed8(p.StoragePrice))
	if addr, ok := flags.AddressFromContext(ctx, "address"); ok {
		blocked, err := env.Facade.IsBlocked(addr)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		_, _ = fmt.Fprintf(tw, "Blocked:\t%t\n", blocked)
	}
	_ = tw.Flush()
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}

func queryCandidates(ctx *cli.Context) error {
	if ctx.NArg() != 0 {
		return cli.NewExitError("unexpected arguments", 1)
	}
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	env, exitErr := options.GetEnv(gctx, ctx)
	if exitErr != nil {
		return exitErr
	}
	defer env.Close()

	cands, err := env.Facade.GetCandidates()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	buf := bytes.NewBuffer(nil)
	tw := tabwriter.NewWriter(buf, 0, 4, 4, '\t', 0)
	_, _ = tw.Write([]byte("Key\tVotes\n"))
	for _, c := range cands {
		_, _ = tw.Write([]byte(c.PublicKey.StringCompressed() + "\t" + c.Votes.String() + "\n"))
	}
	_ = tw.Flush()
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}

func tokenName(h util.Uint160) string {
	switch h {
	case nativehashes.Neo:
		return "NEO"
	case nativehashes.Gas:
		return "GAS"
	default:
		return h.StringLE()
	}
}
