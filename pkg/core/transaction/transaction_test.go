package transaction

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"testing"

	"github.com/nspcc-dev/neotx/internal/random"
	"github.com/nspcc-dev/neotx/internal/testserdes"
	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/stretchr/testify/require"
)

const (
	rawUnsignedTx = "00010000006400000000000000c800000000000000e80300000126eba6592ddfb6b04426048cd5891ff0e3fecba701000111"
	unsignedTxID  = "d1e6c62b4fad056cebc5ec7add7ae3d2276be8795d3f76763020cf3b0d5b4f74"
)

func testAccount(t *testing.T) util.Uint160 {
	acc, err := util.Uint160DecodeStringLE("a7cbfee3f01f89d58c042644b0b6df2d59a6eb26")
	require.NoError(t, err)
	return acc
}

func newTestTx(t *testing.T) *Transaction {
	tx := New([]byte{0x11}, 100)
	tx.Nonce = 1
	tx.NetworkFee = 200
	tx.ValidUntilBlock = 1000
	tx.Signers = append(tx.Signers, Signer{Account: testAccount(t), Scopes: CalledByEntry})
	return tx
}

func TestTransactionEncoding(t *testing.T) {
	tx := newTestTx(t)
	require.Equal(t, rawUnsignedTx, hex.EncodeToString(tx.Bytes()))
	require.Equal(t, unsignedTxID, tx.Hash().StringLE())
	require.Equal(t, len(tx.Bytes()), tx.Size())
	require.Equal(t, tx.Size()-1, tx.UnsignedSize())

	raw, err := hex.DecodeString(rawUnsignedTx)
	require.NoError(t, err)
	decoded, err := NewTransactionFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, tx, decoded)

	_, err = NewTransactionFromBytes(append(raw, 0))
	require.Error(t, err)
	_, err = NewTransactionFromBytes(raw[:len(raw)-1])
	require.Error(t, err)
}

func TestTransactionHashDeterminism(t *testing.T) {
	tx := newTestTx(t)
	h := tx.Hash()
	require.Equal(t, h, tx.Hash())

	tx.AddWitness(Witness{InvocationScript: []byte{1}, VerificationScript: []byte{2}})
	require.Equal(t, h, tx.Hash())
	tx.Scripts = nil
	require.Equal(t, h, tx.Hash())

	tx.ValidUntilBlock++
	require.NotEqual(t, h, tx.Hash())
}

func TestTransactionSignedPart(t *testing.T) {
	tx := newTestTx(t)
	part := tx.GetSignedPart(860833102)
	require.Equal(t, "4e454f33"+hex.EncodeToString(tx.Hash().BytesBE()), hex.EncodeToString(part))
	require.Equal(t, hash.Sha256(part), tx.GetSignedHash(860833102))
}

func TestTransactionSigning(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	tx := newTestTx(t)
	tx.Signers[0].Account = priv.GetScriptHash()

	sig := priv.SignHash(tx.GetSignedHash(42))
	require.True(t, priv.PublicKey().Verify(sig, tx.GetSignedHash(42).BytesBE()))

	tx.AddWitness(Witness{
		InvocationScript:   append([]byte{0x0c, 64}, sig...),
		VerificationScript: priv.PublicKey().GetVerificationScript(),
	})
	require.NotNil(t, tx.WitnessFor(priv.GetScriptHash()))
	require.Nil(t, tx.WitnessFor(util.Uint160{}))

	decoded, err := NewTransactionFromBytes(tx.Bytes())
	require.NoError(t, err)
	require.Equal(t, tx, decoded)
	require.Equal(t, tx.Size(), len(tx.Bytes()))
}

func TestTransactionDecodeErrors(t *testing.T) {
	check := func(t *testing.T, tx *Transaction, target error) {
		data, err := testserdes.EncodeBinary(tx)
		require.NoError(t, err)
		_, err = NewTransactionFromBytes(data)
		require.ErrorIs(t, err, target)
	}
	t.Run("version", func(t *testing.T) {
		tx := newTestTx(t)
		tx.Version = 1
		check(t, tx, ErrInvalidVersion)
	})
	t.Run("negative sysfee", func(t *testing.T) {
		tx := newTestTx(t)
		tx.SystemFee = -1
		check(t, tx, ErrNegativeSystemFee)
	})
	t.Run("negative netfee", func(t *testing.T) {
		tx := newTestTx(t)
		tx.NetworkFee = -1
		check(t, tx, ErrNegativeNetworkFee)
	})
	t.Run("fee overflow", func(t *testing.T) {
		tx := newTestTx(t)
		tx.SystemFee = math.MaxInt64
		tx.NetworkFee = 1
		check(t, tx, ErrTooBigFees)
	})
	t.Run("no signers", func(t *testing.T) {
		tx := newTestTx(t)
		tx.Signers = nil
		check(t, tx, ErrEmptySigners)
	})
	t.Run("duplicate signers", func(t *testing.T) {
		tx := newTestTx(t)
		tx.Signers = append(tx.Signers, tx.Signers[0])
		check(t, tx, ErrNonUniqueSigners)
	})
	t.Run("empty script", func(t *testing.T) {
		tx := newTestTx(t)
		tx.Script = []byte{}
		check(t, tx, ErrEmptyScript)
	})
	t.Run("duplicate attribute", func(t *testing.T) {
		tx := newTestTx(t)
		tx.Attributes = []Attribute{{Type: HighPriority}, {Type: HighPriority}}
		check(t, tx, ErrInvalidAttribute)
	})
	t.Run("too many attributes", func(t *testing.T) {
		tx := newTestTx(t)
		for i := 0; i < MaxAttributes; i++ {
			tx.Attributes = append(tx.Attributes, Attribute{Type: ConflictsT, Value: &Conflicts{Hash: random.Uint256()}})
		}
		data, err := testserdes.EncodeBinary(tx)
		require.NoError(t, err)
		_, err = NewTransactionFromBytes(data)
		require.Error(t, err)
	})
	t.Run("too many witnesses", func(t *testing.T) {
		tx := newTestTx(t)
		tx.Scripts = []Witness{{}, {VerificationScript: []byte{1}}}
		data, err := testserdes.EncodeBinary(tx)
		require.NoError(t, err)
		_, err = NewTransactionFromBytes(data)
		require.Error(t, err)
	})
}

func TestAddWitnessKeepsOrder(t *testing.T) {
	tx := newTestTx(t)
	for i := 0; i < 20; i++ {
		tx.AddWitness(Witness{
			InvocationScript:   random.Bytes(3),
			VerificationScript: random.Bytes(10),
		})
		for j := 1; j < len(tx.Scripts); j++ {
			require.True(t, tx.Scripts[j-1].ScriptHash().Less(tx.Scripts[j].ScriptHash()))
		}
	}
	require.Equal(t, 20, len(tx.Scripts))

	// Same verification script replaces the witness.
	w := tx.Scripts[5].Copy()
	w.InvocationScript = []byte{0xff}
	tx.AddWitness(w)
	require.Equal(t, 20, len(tx.Scripts))
	require.Equal(t, []byte{0xff}, tx.WitnessFor(w.ScriptHash()).InvocationScript)
}

func TestCheckWitnessOrder(t *testing.T) {
	w1 := Witness{VerificationScript: random.Bytes(10)}
	w2 := Witness{VerificationScript: random.Bytes(10)}
	if w2.ScriptHash().Less(w1.ScriptHash()) {
		w1, w2 = w2, w1
	}
	tx := New([]byte{0x11}, 0)
	tx.Signers = []Signer{{Account: w2.ScriptHash()}, {Account: w1.ScriptHash()}}
	tx.AddWitness(w2)
	require.ErrorIs(t, tx.CheckWitnessOrder(), ErrWitnessOrder)

	tx.AddWitness(w1)
	require.ErrorIs(t, tx.CheckWitnessOrder(), ErrWitnessOrder)

	tx.Signers[0], tx.Signers[1] = tx.Signers[1], tx.Signers[0]
	require.NoError(t, tx.CheckWitnessOrder())

	// Witnesses without verification script are resolved by the node.
	tx.Scripts[1].VerificationScript = nil
	require.NoError(t, tx.CheckWitnessOrder())
}

func TestAddSigner(t *testing.T) {
	tx := newTestTx(t)
	acc := tx.Sender()
	other := random.Uint160()

	require.NoError(t, tx.AddSigner(Signer{Account: other, Scopes: CalledByEntry}))
	require.NoError(t, tx.AddSigner(Signer{Account: acc, Scopes: CustomContracts, AllowedContracts: []util.Uint160{other}}))
	require.Equal(t, 2, len(tx.Signers))
	require.Equal(t, acc, tx.Sender())
	require.Equal(t, CalledByEntry|CustomContracts, tx.Signers[0].Scopes)
	require.True(t, tx.HasSigner(other))
	require.False(t, tx.HasSigner(random.Uint160()))
	require.NoError(t, tx.Validate())
}

func TestTransactionAttributes(t *testing.T) {
	tx := newTestTx(t)
	require.False(t, tx.HasAttribute(HighPriority))
	tx.Attributes = []Attribute{
		{Type: HighPriority},
		{Type: ConflictsT, Value: &Conflicts{Hash: util.Uint256{1}}},
		{Type: ConflictsT, Value: &Conflicts{Hash: util.Uint256{2}}},
		{Type: NotValidBeforeT, Value: &NotValidBefore{Height: 10}},
	}
	require.True(t, tx.HasAttribute(HighPriority))
	require.Equal(t, 2, len(tx.GetAttributes(ConflictsT)))
	require.Nil(t, tx.GetAttributes(OracleResponseT))

	decoded, err := NewTransactionFromBytes(tx.Bytes())
	require.NoError(t, err)
	require.Equal(t, tx, decoded)
}

func TestTransactionCopy(t *testing.T) {
	tx := newTestTx(t)
	tx.Attributes = []Attribute{{Type: NotValidBeforeT, Value: &NotValidBefore{Height: 10}}}
	tx.AddWitness(Witness{InvocationScript: []byte{1}, VerificationScript: []byte{2}})

	cp := tx.Copy()
	require.Equal(t, tx, cp)

	cp.Script[0] = 0x12
	cp.Signers[0].Scopes = Global
	cp.Attributes[0].Value.(*NotValidBefore).Height = 11
	cp.Scripts[0].InvocationScript[0] = 5
	require.Equal(t, byte(0x11), tx.Script[0])
	require.Equal(t, CalledByEntry, tx.Signers[0].Scopes)
	require.Equal(t, uint32(10), tx.Attributes[0].Value.(*NotValidBefore).Height)
	require.Equal(t, byte(1), tx.Scripts[0].InvocationScript[0])

	require.Nil(t, (*Transaction)(nil).Copy())
}

func TestTransactionJSON(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	tx := newTestTx(t)
	tx.Attributes = []Attribute{
		{Type: HighPriority},
		{Type: OracleResponseT, Value: &OracleResponse{ID: 1, Code: Success, Result: []byte{1, 2}}},
		{Type: NotaryAssistedT, Value: &NotaryAssisted{NKeys: 3}},
	}
	tx.Signers = append(tx.Signers, Signer{
		Account:       priv.GetScriptHash(),
		Scopes:        CustomGroups | Rules,
		AllowedGroups: []*keys.PublicKey{priv.PublicKey()},
		Rules: []WitnessRule{{
			Action:    WitnessAllow,
			Condition: ConditionCalledByEntry{},
		}},
	})
	tx.AddWitness(Witness{InvocationScript: []byte{1}, VerificationScript: []byte{2}})

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "100", m["sysfee"])
	require.Equal(t, "200", m["netfee"])
	require.Equal(t, "0x"+tx.Hash().StringLE(), m["hash"])
	require.Equal(t, "NPTmAHDxo6Pkyic8Nvu3kwyXoYJCvcCB6i", m["sender"])
	require.Equal(t, "EQ==", m["script"])

	actual := new(Transaction)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, tx.Bytes(), actual.Bytes())
	require.Equal(t, tx.Hash(), actual.Hash())

	t.Run("bad hash", func(t *testing.T) {
		m["nonce"] = 2
		bad, err := json.Marshal(m)
		require.NoError(t, err)
		require.Error(t, json.Unmarshal(bad, new(Transaction)))
	})
}
