package wallet

import (
	"fmt"
	"strings"

	"github.com/nspcc-dev/neotx/cli/flags"
	"github.com/nspcc-dev/neotx/cli/options"
	"github.com/nspcc-dev/neotx/pkg/core/native/nativehashes"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/facade"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/wallet"
	"github.com/urfave/cli"
)

func newTransferCommand() cli.Command {
	transferFlags := append([]cli.Flag{
		cli.StringFlag{
			Name:  "token, t",
			Usage: "token to transfer (NEO, GAS, contract hash in LE or address)",
		},
		flags.AddressFlag{
			Name:  "to",
			Usage: "address to send tokens to",
		},
		cli.StringFlag{
			Name:  "amount",
			Usage: "amount of tokens to send, like 1.5 (token decimals are applied)",
		},
		cli.StringFlag{
			Name:  "data",
			Usage: "data passed to onNEP17Payment of the receiver, in [type:]value format",
		},
	}, txFlags...)
	return cli.Command{
		Name:      "transfer",
		Usage:     "transfer NEP-17 tokens",
		UsageText: "neotx wallet transfer --token <token> --to <address> --amount <amount> [--data <data>] [-k key -k key -m threshold] [--max-fee fee] [--force] [-r endpoint]",
		Action:    transferNEP17,
		Flags:     flags.MarkRequired(transferFlags, "token, t", "amount"),
	}
}

// ParseToken parses the token given as NEO, GAS, LE hash or address.
func ParseToken(s string) (util.Uint160, error) {
	switch strings.ToUpper(s) {
	case "NEO":
		return nativehashes.Neo, nil
	case "GAS":
		return nativehashes.Gas, nil
	}
	h, err := flags.ParseAddress(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid token %q: %w", s, err)
	}
	return h, nil
}

func transferNEP17(ctx *cli.Context) error {
	token, err := ParseToken(ctx.String("token"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	to, ok := flags.AddressFromContext(ctx, "to")
	if !ok {
		return cli.NewExitError("missing receiver address (--to)", 1)
	}
	var data any
	if d := ctx.String("data"); d != "" {
		p, err := smartcontract.NewParameterFromString(d)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("invalid data: %w", err), 1)
		}
		data = p.Value
	}
	amount := ctx.String("amount")
	return withAccount(ctx, func(env *options.Env, acc *wallet.Account) (*transaction.Transaction, error) {
		return env.Facade.MakeTransfer([]facade.Intent{{
			From:          acc,
			To:            to,
			Contract:      token,
			DecimalAmount: amount,
			Data:          data,
		}})
	})
}
