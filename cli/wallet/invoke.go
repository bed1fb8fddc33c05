package wallet

import (
	"fmt"

	"github.com/nspcc-dev/neotx/cli/flags"
	"github.com/nspcc-dev/neotx/cli/options"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/txbuilder"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/wallet"
	"github.com/urfave/cli"
)

func newInvokeCommand() cli.Command {
	return cli.Command{
		Name:      "invoke",
		Usage:     "invoke a contract method in a transaction",
		UsageText: "neotx wallet invoke [--assert] [-k key -k key -m threshold] [--max-fee fee] [--force] [-r endpoint] <contract> <method> [<param>...]",
		Description: `Sends a transaction calling the method of the contract given by
   its LE hash or address. Every parameter is given in [type:]value form,
   the type is inferred when omitted:

     int:42, bool:true, string:text, hash160:<address or LE hash>,
     hash256:<LE hash>, bytes:<hex>, key:<hex public key>,
     signature:<hex>, any:null

   Use '\:' for a colon inside a typeless value.`,
		Action: invoke,
		Flags: append([]cli.Flag{
			cli.BoolFlag{
				Name:  "assert",
				Usage: "add ASSERT after the call, the method must return a Boolean",
			},
		}, txFlags...),
	}
}

func invoke(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		return cli.NewExitError("contract and method are required", 1)
	}
	contract, err := flags.ParseAddress(args[0])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid contract: %w", err), 1)
	}
	params, err := smartcontract.ParseParameters(args[2:])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	call := txbuilder.ContractCall{
		Contract: contract,
		Method:   args[1],
		Params:   params,
		Assert:   ctx.Bool("assert"),
	}
	return sendTx(ctx, func(env *options.Env, acc *wallet.Account) (*transaction.Transaction, error) {
		return env.Facade.MakeCall(acc, call)
	})
}
