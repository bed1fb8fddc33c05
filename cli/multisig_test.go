package main

import (
	"testing"

	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm"
	"github.com/stretchr/testify/require"
)

func TestMultisigTransfer(t *testing.T) {
	e := newExecutor(t, true)
	addTokenInfo(t, e.Node, testToken, 0)
	privs, pubs := generateKeys(t, 3)

	script, err := smartcontract.CreateDefaultMultiSigRedeemScript(2, pubs.Copy())
	require.NoError(t, err)
	multisigHash := hash.Hash160(script)

	args := []string{
		"neotx", "wallet", "transfer", "-r", e.Endpoint,
		"--to", address.Uint160ToString(util.Uint160{1}),
		"--token", testToken.StringLE(),
		"--amount", "10",
		"--force",
		"-k", pubs[0].StringCompressed(),
		"-k", pubs[1].StringCompressed(),
		"-k", pubs[2].StringCompressed(),
	}

	t.Run("no threshold", func(t *testing.T) {
		e.RunWithError(t, args...)
	})
	t.Run("bad threshold", func(t *testing.T) {
		e.RunWithError(t, append(args, "-m", "4")...)
	})
	t.Run("foreign key", func(t *testing.T) {
		e.In.WriteString(validatorWIF + "\r")
		e.RunWithError(t, append(args, "-m", "2")...)
	})
	t.Run("no keys", func(t *testing.T) {
		e.In.WriteString("\r")
		e.RunWithError(t, append(args, "-m", "2")...)
	})

	t.Run("good", func(t *testing.T) {
		e.In.WriteString(privs[2].WIF() + "\r" + privs[0].WIF() + "\r")
		e.Run(t, append(args, "-m", "2")...)
		e.getNextLine(t)
		e.getNextLine(t)
		e.getNextLine(t)
		tx := e.checkTxSent(t)

		require.Equal(t, []transaction.Signer{{Account: multisigHash, Scopes: transaction.CalledByEntry}}, tx.Signers)
		require.Len(t, tx.Scripts, 1)
		require.Equal(t, script, tx.Scripts[0].VerificationScript)
		inv := tx.Scripts[0].InvocationScript
		require.Len(t, inv, 2*(2+keys.SignatureLen))

		// Signatures go in the order of keys in the script.
		shape, ok := vm.ClassifyWitness(script).(vm.MultiSigShape)
		require.True(t, ok)
		var signed keys.PublicKeys
		for _, b := range shape.PublicKeys {
			p, err := keys.NewPublicKeyFromBytes(b)
			require.NoError(t, err)
			if p.Equal(privs[0].PublicKey()) || p.Equal(privs[2].PublicKey()) {
				signed = append(signed, p)
			}
		}
		require.Len(t, signed, 2)
		h := tx.GetSignedHash(uint32(testNetwork)).BytesBE()
		require.True(t, signed[0].Verify(inv[2:2+keys.SignatureLen], h))
		require.True(t, signed[1].Verify(inv[4+keys.SignatureLen:], h))
	})
}
