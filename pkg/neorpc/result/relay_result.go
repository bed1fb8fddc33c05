package result

import (
	"github.com/nspcc-dev/neotx/pkg/util"
)

// RelayResult is a result of `sendrawtransaction` RPC call.
type RelayResult struct {
	Hash util.Uint256 `json:"hash"`
}
