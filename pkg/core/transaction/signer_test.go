package transaction

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/neotx/internal/random"
	"github.com/nspcc-dev/neotx/internal/testserdes"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestSignerEncodeDecode(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	var b = true
	var cases = []*Signer{
		{Account: random.Uint160(), Scopes: None},
		{Account: random.Uint160(), Scopes: Global},
		{Account: random.Uint160(), Scopes: CustomContracts},
		{Account: random.Uint160(), Scopes: CalledByEntry | CustomGroups},
		{
			Account:          util.Uint160{1, 2, 3, 4, 5},
			Scopes:           CalledByEntry | CustomContracts,
			AllowedContracts: []util.Uint160{{1, 2, 3, 4}, {6, 7, 8, 9}},
		},
		{
			Account:       random.Uint160(),
			Scopes:        CustomGroups | Rules,
			AllowedGroups: []*keys.PublicKey{priv.PublicKey()},
			Rules:         []WitnessRule{{Action: WitnessDeny, Condition: (*ConditionBoolean)(&b)}},
		},
	}
	for _, expected := range cases {
		testserdes.EncodeDecodeBinary(t, expected, new(Signer))
		testserdes.MarshalUnmarshalJSON(t, expected, new(Signer))
	}
}

func TestSignerDecodeErrors(t *testing.T) {
	acc := random.Uint160()
	bad := func(scopes byte, rest ...byte) []byte {
		return append(append(acc.BytesBE(), scopes), rest...)
	}
	require.Error(t, testserdes.DecodeBinary(bad(0x02), new(Signer)))
	require.Error(t, testserdes.DecodeBinary(bad(byte(Global|CalledByEntry)), new(Signer)))
	require.Error(t, testserdes.DecodeBinary(bad(byte(CustomContracts), maxSubitems+1), new(Signer)))
	require.Error(t, testserdes.DecodeBinary(bad(byte(CustomContracts), 1, 1, 2), new(Signer)))
}

func TestSignerEmptyLists(t *testing.T) {
	tx := New([]byte{0x11}, 0)
	tx.ValidUntilBlock = 1
	tx.Signers = []Signer{
		{Account: random.Uint160(), Scopes: CustomContracts},
		{Account: random.Uint160(), Scopes: CustomGroups | Rules},
	}
	require.NoError(t, tx.Validate())

	decoded, err := NewTransactionFromBytes(tx.Bytes())
	require.NoError(t, err)
	require.Equal(t, tx.Signers, decoded.Signers)

	tx.Signers[0].Scopes = CalledByEntry
	tx.Signers[0].AllowedContracts = []util.Uint160{random.Uint160()}
	require.ErrorIs(t, tx.Validate(), ErrInvalidScope)
}

func TestScopesFromString(t *testing.T) {
	var cases = map[string]WitnessScope{
		"None":                           None,
		"Global":                         Global,
		"CalledByEntry":                  CalledByEntry,
		"CalledByEntry, CustomContracts": CalledByEntry | CustomContracts,
		"CustomGroups,WitnessRules":      CustomGroups | Rules,
		"Rules":                          Rules,
	}
	for in, expected := range cases {
		actual, err := ScopesFromString(in)
		require.NoError(t, err, in)
		require.Equal(t, expected, actual, in)
	}
	for _, in := range []string{"", "Global, CalledByEntry", "CalledByEntry, Global", "Everything"} {
		_, err := ScopesFromString(in)
		require.ErrorIs(t, err, ErrInvalidScope, in)
	}
	require.Equal(t, "CalledByEntry, CustomContracts", (CalledByEntry | CustomContracts).String())

	data, err := json.Marshal(CustomGroups | Rules)
	require.NoError(t, err)
	require.Equal(t, `"CustomGroups, WitnessRules"`, string(data))
}

func TestSignerMerge(t *testing.T) {
	acc := random.Uint160()
	c1, c2 := random.Uint160(), random.Uint160()

	a := &Signer{Account: acc, Scopes: CustomContracts, AllowedContracts: []util.Uint160{c1}}
	b := &Signer{Account: acc, Scopes: CalledByEntry | CustomContracts, AllowedContracts: []util.Uint160{c1, c2}}

	ab, ba := a.Copy(), b.Copy()
	require.NoError(t, ab.Merge(b))
	require.NoError(t, ba.Merge(a))
	require.Equal(t, ab.Scopes, ba.Scopes)
	require.Equal(t, CalledByEntry|CustomContracts, ab.Scopes)
	require.ElementsMatch(t, ab.AllowedContracts, ba.AllowedContracts)
	require.Equal(t, []util.Uint160{c1, c2}, ab.AllowedContracts)

	g := &Signer{Account: acc, Scopes: Global}
	require.NoError(t, ab.Merge(g))
	require.Equal(t, &Signer{Account: acc, Scopes: Global}, ab)

	require.ErrorIs(t, ab.Merge(&Signer{Account: c1}), ErrDifferentAccounts)
}
