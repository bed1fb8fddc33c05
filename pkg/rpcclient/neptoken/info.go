package neptoken

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neotx/pkg/encoding/bigint"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
)

// Token is the basic token data every NEP-17 contract provides.
type Token struct {
	Hash        util.Uint160
	Symbol      string
	Decimals    int
	TotalSupply *big.Int
}

// Balance is the token balance of some account.
type Balance struct {
	Hash     util.Uint160
	Amount   *big.Int
	Decimals int
}

// String returns the balance as a decimal string with exactly Decimals
// fractional digits.
func (b Balance) String() string {
	return bigint.ToDecimal(b.Amount, b.Decimals)
}

// Info returns symbol, decimals and total supply of the given tokens using
// a single invocation.
func Info(r Runner, hashes ...util.Uint160) ([]Token, error) {
	if len(hashes) == 0 {
		return nil, errors.New("no tokens")
	}
	b := smartcontract.NewBuilder()
	for _, h := range hashes {
		b.InvokeMethod(h, "symbol")
		b.InvokeMethod(h, "decimals")
		b.InvokeMethod(h, "totalSupply")
	}
	script, err := b.Script()
	if err != nil {
		return nil, err
	}
	inv, err := r.Run(script)
	items, err := unwrap.Items(inv, err, 3*len(hashes))
	if err != nil {
		return nil, err
	}
	res := make([]Token, len(hashes))
	for i, h := range hashes {
		res[i].Hash = h
		res[i].Symbol, err = unwrap.ItemToPrintableASCII(items[3*i])
		if err != nil {
			return nil, fmt.Errorf("token %s symbol: %w", h.StringLE(), err)
		}
		res[i].Decimals, err = itemToDecimals(items[3*i+1])
		if err != nil {
			return nil, fmt.Errorf("token %s decimals: %w", h.StringLE(), err)
		}
		res[i].TotalSupply, err = items[3*i+2].TryInteger()
		if err != nil {
			return nil, fmt.Errorf("token %s total supply: %w", h.StringLE(), err)
		}
	}
	return res, nil
}

// Balances returns the balances of the account for the given tokens using
// a single invocation. Each token contributes decimals and balanceOf results.
func Balances(r Runner, account util.Uint160, hashes ...util.Uint160) ([]Balance, error) {
	if len(hashes) == 0 {
		return nil, errors.New("no tokens")
	}
	b := smartcontract.NewBuilder()
	for _, h := range hashes {
		b.InvokeMethod(h, "decimals")
		b.InvokeMethod(h, "balanceOf", account)
	}
	script, err := b.Script()
	if err != nil {
		return nil, err
	}
	inv, err := r.Run(script)
	items, err := unwrap.Items(inv, err, 2*len(hashes))
	if err != nil {
		return nil, err
	}
	res := make([]Balance, len(hashes))
	for i, h := range hashes {
		res[i].Hash = h
		res[i].Decimals, err = itemToDecimals(items[2*i])
		if err != nil {
			return nil, fmt.Errorf("token %s decimals: %w", h.StringLE(), err)
		}
		res[i].Amount, err = items[2*i+1].TryInteger()
		if err != nil {
			return nil, fmt.Errorf("token %s balance: %w", h.StringLE(), err)
		}
	}
	return res, nil
}

func itemToDecimals(itm stackitem.Item) (int, error) {
	d, err := unwrap.ItemToInt64(itm)
	if err != nil {
		return 0, err
	}
	if d < 0 || d > MaxValidDecimals {
		return 0, fmt.Errorf("invalid decimals value %d", d)
	}
	return int(d), nil
}
