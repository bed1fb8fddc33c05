package transaction

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/util"
)

// The maximum number of AllowedContracts or AllowedGroups.
const maxSubitems = 16

// ErrDifferentAccounts is returned when merging signers of different accounts.
var ErrDifferentAccounts = errors.New("can't merge signers of different accounts")

// Signer implements a Transaction signer.
type Signer struct {
	Account          util.Uint160      `json:"account"`
	Scopes           WitnessScope      `json:"scopes"`
	AllowedContracts []util.Uint160    `json:"allowedcontracts,omitempty"`
	AllowedGroups    []*keys.PublicKey `json:"allowedgroups,omitempty"`
	Rules            []WitnessRule     `json:"rules,omitempty"`
}

// EncodeBinary implements the Serializable interface.
func (c *Signer) EncodeBinary(bw *io.BinWriter) {
	bw.WriteBytes(c.Account[:])
	bw.WriteB(byte(c.Scopes))
	if c.Scopes&CustomContracts != 0 {
		bw.WriteVarUint(uint64(len(c.AllowedContracts)))
		for i := range c.AllowedContracts {
			bw.WriteBytes(c.AllowedContracts[i][:])
		}
	}
	if c.Scopes&CustomGroups != 0 {
		bw.WriteVarUint(uint64(len(c.AllowedGroups)))
		for i := range c.AllowedGroups {
			c.AllowedGroups[i].EncodeBinary(bw)
		}
	}
	if c.Scopes&Rules != 0 {
		io.WriteArray(bw, c.Rules)
	}
}

// DecodeBinary implements the Serializable interface.
func (c *Signer) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(c.Account[:])
	c.Scopes = WitnessScope(br.ReadB())
	if br.Err != nil {
		return
	}
	if !c.Scopes.IsValid() {
		br.Err = fmt.Errorf("%w: 0x%02x", ErrInvalidScope, byte(c.Scopes))
		return
	}
	c.AllowedContracts, c.AllowedGroups, c.Rules = nil, nil, nil
	if c.Scopes&CustomContracts != 0 {
		n := readSubitemsLen(br)
		if br.Err != nil {
			return
		}
		if n != 0 {
			c.AllowedContracts = make([]util.Uint160, n)
		}
		for i := range c.AllowedContracts {
			br.ReadBytes(c.AllowedContracts[i][:])
		}
	}
	if c.Scopes&CustomGroups != 0 {
		n := readSubitemsLen(br)
		if br.Err != nil {
			return
		}
		if n != 0 {
			c.AllowedGroups = make([]*keys.PublicKey, n)
		}
		for i := range c.AllowedGroups {
			c.AllowedGroups[i] = new(keys.PublicKey)
			c.AllowedGroups[i].DecodeBinary(br)
		}
	}
	if c.Scopes&Rules != 0 {
		io.ReadArray(br, &c.Rules, maxSubitems)
		if len(c.Rules) == 0 {
			c.Rules = nil
		}
	}
}

func readSubitemsLen(br *io.BinReader) int {
	n := br.ReadVarUint()
	if br.Err == nil && n > maxSubitems {
		br.Err = fmt.Errorf("%w: %d subitems", io.ErrTooBig, n)
	}
	return int(n)
}

// Copy creates a deep copy of the Signer.
func (c *Signer) Copy() *Signer {
	if c == nil {
		return nil
	}
	cp := *c
	cp.AllowedContracts = slices.Clone(c.AllowedContracts)
	cp.AllowedGroups = slices.Clone(c.AllowedGroups)
	if c.Rules != nil {
		cp.Rules = make([]WitnessRule, len(c.Rules))
		for i := range c.Rules {
			cp.Rules[i] = *c.Rules[i].Copy()
		}
	}
	return &cp
}

// Merge adds the scopes and lists of other to c, both signers must have the
// same account. Duplicate contracts and groups are skipped. Global scope
// absorbs everything else.
func (c *Signer) Merge(other *Signer) error {
	if !c.Account.Equals(other.Account) {
		return fmt.Errorf("%w: %s and %s", ErrDifferentAccounts, c.Account.StringLE(), other.Account.StringLE())
	}
	c.Scopes |= other.Scopes
	if c.Scopes&Global != 0 {
		c.Scopes = Global
		c.AllowedContracts, c.AllowedGroups, c.Rules = nil, nil, nil
		return nil
	}
	for _, h := range other.AllowedContracts {
		if !slices.Contains(c.AllowedContracts, h) {
			c.AllowedContracts = append(c.AllowedContracts, h)
		}
	}
	for _, g := range other.AllowedGroups {
		if !keys.PublicKeys(c.AllowedGroups).Contains(g) {
			c.AllowedGroups = append(c.AllowedGroups, g)
		}
	}
	for i := range other.Rules {
		c.Rules = append(c.Rules, *other.Rules[i].Copy())
	}
	return nil
}

// isValid checks the list and scope consistency of the signer. Lists must be
// empty when their scope is not set, an empty list with the scope set is
// allowed (the node accepts it, such a scope just never matches).
func (c *Signer) isValid() error {
	if !c.Scopes.IsValid() {
		return fmt.Errorf("%w: 0x%02x", ErrInvalidScope, byte(c.Scopes))
	}
	if (c.Scopes&CustomContracts == 0 && len(c.AllowedContracts) != 0) ||
		(c.Scopes&CustomGroups == 0 && len(c.AllowedGroups) != 0) ||
		(c.Scopes&Rules == 0 && len(c.Rules) != 0) {
		return fmt.Errorf("%w: lists don't match scopes %s", ErrInvalidScope, c.Scopes)
	}
	if len(c.AllowedContracts) > maxSubitems || len(c.AllowedGroups) > maxSubitems || len(c.Rules) > maxSubitems {
		return fmt.Errorf("%w: too many subitems", ErrInvalidScope)
	}
	return nil
}
