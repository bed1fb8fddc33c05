package interopnames

// Names of the interops a client needs to build transaction and witness
// scripts.
const (
	SystemContractCall                  = "System.Contract.Call"
	SystemContractCreateMultisigAccount = "System.Contract.CreateMultisigAccount"
	SystemContractCreateStandardAccount = "System.Contract.CreateStandardAccount"
	SystemContractGetCallFlags          = "System.Contract.GetCallFlags"
	SystemCryptoCheckMultisig           = "System.Crypto.CheckMultisig"
	SystemCryptoCheckSig                = "System.Crypto.CheckSig"
	SystemRuntimeCheckWitness           = "System.Runtime.CheckWitness"
	SystemRuntimeGetScriptContainer     = "System.Runtime.GetScriptContainer"
	SystemRuntimeLog                    = "System.Runtime.Log"
	SystemRuntimeNotify                 = "System.Runtime.Notify"
)

var names = []string{
	SystemContractCall,
	SystemContractCreateMultisigAccount,
	SystemContractCreateStandardAccount,
	SystemContractGetCallFlags,
	SystemCryptoCheckMultisig,
	SystemCryptoCheckSig,
	SystemRuntimeCheckWitness,
	SystemRuntimeGetScriptContainer,
	SystemRuntimeLog,
	SystemRuntimeNotify,
}
