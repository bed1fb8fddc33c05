/*
Package wallet contains commands creating, signing and sending transactions
on behalf of a single-key or multisignature account.
*/
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neotx/cli/flags"
	"github.com/nspcc-dev/neotx/cli/input"
	"github.com/nspcc-dev/neotx/cli/options"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neotx/pkg/wallet"
	"github.com/urfave/cli"
)

var (
	errNoKeys         = errors.New("no keys entered")
	errThresholdNoKey = errors.New("multisignature keys require --threshold")
)

var (
	multisigKeysFlag = cli.StringSliceFlag{
		Name:  "multisig-key, k",
		Usage: "public key of multisignature account (repeat for every key), WIFs of the threshold number of keys are requested then",
	}
	thresholdFlag = cli.IntFlag{
		Name:  "threshold, m",
		Usage: "number of signatures required for multisignature account",
	}
	maxFeeFlag = flags.Fixed8Flag{
		Name:  "max-fee",
		Usage: "maximum total (system + network) fee in GAS, the transaction is not sent if it requires more",
	}
	forceFlag = cli.BoolFlag{
		Name:  "force",
		Usage: "do not ask for a confirmation before sending",
	}
	// txFlags are the flags of every command sending a transaction.
	txFlags = append([]cli.Flag{
		multisigKeysFlag,
		thresholdFlag,
		maxFeeFlag,
		forceFlag,
	}, options.Common...)
)

// NewCommands returns 'wallet' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "wallet",
		Usage: "create, sign and send transactions",
		Subcommands: []cli.Command{
			newTransferCommand(),
			newInvokeCommand(),
			{
				Name:      "claim",
				Usage:     "claim unclaimed GAS",
				UsageText: "neotx wallet claim [-k key -k key -m threshold] [--max-fee fee] [--force] [-r endpoint]",
				Action:    claimGas,
				Flags:     txFlags,
			},
			{
				Name:      "vote",
				Usage:     "vote for a candidate or remove the vote",
				UsageText: "neotx wallet vote [--candidate key] [-k key -k key -m threshold] [--max-fee fee] [--force] [-r endpoint]",
				Description: `Votes for the candidate given. If --candidate is omitted, the
   existing vote of the account is removed.`,
				Action: vote,
				Flags: append([]cli.Flag{
					cli.StringFlag{
						Name:  "candidate",
						Usage: "public key of the candidate to vote for",
					},
				}, txFlags...),
			},
		},
	}}
}

// getAccount returns the account and the signer for it, keys are requested
// from the user. A multisignature account is used if any multisignature
// keys are given.
func getAccount(ctx *cli.Context) (*wallet.Account, wallet.Signer, error) {
	pubStrs := ctx.StringSlice("multisig-key")
	if len(pubStrs) == 0 {
		wif, err := input.ReadPassword("Enter WIF > ")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read WIF: %w", err)
		}
		acc, err := wallet.NewAccountFromWIF(strings.TrimSpace(wif))
		if err != nil {
			return nil, nil, err
		}
		return acc, acc, nil
	}

	m := ctx.Int("threshold")
	if m == 0 {
		return nil, nil, errThresholdNoKey
	}
	pubs := make(keys.PublicKeys, len(pubStrs))
	for i, s := range pubStrs {
		p, err := keys.NewPublicKeyFromString(s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid key #%d: %w", i, err)
		}
		pubs[i] = p
	}
	acc, err := wallet.NewMultisigAccount(m, pubs)
	if err != nil {
		return nil, nil, err
	}
	var privs []*keys.PrivateKey
	for i := 0; i < m; i++ {
		wif, err := input.ReadPassword(fmt.Sprintf("Enter WIF %d/%d > ", i+1, m))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read WIF: %w", err)
		}
		wif = strings.TrimSpace(wif)
		if wif == "" {
			break
		}
		k, err := keys.NewPrivateKeyFromWIF(wif)
		if err != nil {
			return nil, nil, err
		}
		if !pubs.Contains(k.PublicKey()) {
			return nil, nil, fmt.Errorf("key %s is not a part of the account", k.PublicKey().StringCompressed())
		}
		privs = append(privs, k)
	}
	if len(privs) == 0 {
		return nil, nil, errNoKeys
	}
	return acc, wallet.NewKeySigner(privs...), nil
}

// validateSignSend validates the transaction printing the fees, asks for
// confirmation, signs the transaction and sends it.
func validateSignSend(ctx *cli.Context, env *options.Env, tx *transaction.Transaction, signer wallet.Signer) error {
	res, err := env.Facade.Validate(tx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for _, n := range res.Notes() {
		fmt.Fprintln(ctx.App.Writer, n)
	}
	if !res.Valid {
		return cli.NewExitError(fmt.Errorf("invalid transaction:\n%s", strings.Join(res.Messages(), "\n")), 1)
	}
	total := fixedn.Fixed8(tx.SystemFee + tx.NetworkFee)
	fmt.Fprintf(ctx.App.Writer, "System fee: %s GAS\nNetwork fee: %s GAS\nValid until block: %d\n",
		fixedn.Fixed8(tx.SystemFee), fixedn.Fixed8(tx.NetworkFee), tx.ValidUntilBlock)
	if limit, ok := flags.Fixed8FromContext(ctx, "max-fee"); ok && total > limit {
		return cli.NewExitError(fmt.Errorf("total fee %s GAS exceeds the limit of %s GAS", total, limit), 1)
	}
	if !ctx.Bool("force") {
		if err := input.Confirm("Relay transaction?"); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	if err := env.Facade.Sign(tx, signer); err != nil {
		return cli.NewExitError(err, 1)
	}
	h, err := env.Facade.Send(tx)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to send transaction: %w", err), 1)
	}
	fmt.Fprintln(ctx.App.Writer, h.StringLE())
	return nil
}

// withAccount runs the command action with the account and the environment
// ready. Commands using it take no positional arguments.
func withAccount(ctx *cli.Context, makeTx func(env *options.Env, acc *wallet.Account) (*transaction.Transaction, error)) error {
	if err := checkNoArgs(ctx); err != nil {
		return err
	}
	return sendTx(ctx, makeTx)
}

func sendTx(ctx *cli.Context, makeTx func(env *options.Env, acc *wallet.Account) (*transaction.Transaction, error)) error {
	acc, signer, err := getAccount(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	env, exitErr := options.GetEnv(gctx, ctx)
	if exitErr != nil {
		return exitErr
	}
	defer env.Close()

	tx, err := makeTx(env, acc)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return validateSignSend(ctx, env, tx, signer)
}

func checkNoArgs(ctx *cli.Context) error {
	if ctx.NArg() != 0 {
		return cli.NewExitError(fmt.Errorf("unexpected arguments: %s", strings.Join(ctx.Args(), " ")), 1)
	}
	return nil
}

func claimGas(ctx *cli.Context) error {
	return withAccount(ctx, func(env *options.Env, acc *wallet.Account) (*transaction.Transaction, error) {
		return env.Facade.MakeClaimGas(acc)
	})
}

func vote(ctx *cli.Context) error {
	var pub *keys.PublicKey
	if s := ctx.String("candidate"); s != "" {
		var err error
		pub, err = keys.NewPublicKeyFromString(s)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("invalid candidate key: %w", err), 1)
		}
	}
	return withAccount(ctx, func(env *options.Env, acc *wallet.Account) (*transaction.Transaction, error) {
		return env.Facade.MakeVote(acc, pub)
	})
}
