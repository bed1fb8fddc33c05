package vm

// WitnessShape is the kind of a verification script as recognized by
// ClassifyWitness. It's one of SignatureShape, MultiSigShape or
// UnknownShape.
type WitnessShape interface {
	witnessShape()
}

// SignatureShape is a single-key verification script.
type SignatureShape struct {
	PublicKey []byte
}

// MultiSigShape is an m-out-of-n verification script.
type MultiSigShape struct {
	Threshold  int
	PublicKeys [][]byte
}

// UnknownShape is any other script (contract-based witnesses, custom
// verification logic). Its verification cost can't be derived locally.
type UnknownShape struct {
	Script []byte
}

func (SignatureShape) witnessShape() {}
func (MultiSigShape) witnessShape()  {}
func (UnknownShape) witnessShape()   {}

// Keys returns the number of keys in the script.
func (s MultiSigShape) Keys() int {
	return len(s.PublicKeys)
}

// ClassifyWitness recognizes the shape of the given verification script.
func ClassifyWitness(script []byte) WitnessShape {
	if pub, ok := ParseSignatureContract(script); ok {
		return SignatureShape{PublicKey: pub}
	}
	if m, pubs, ok := ParseMultiSigContract(script); ok {
		return MultiSigShape{Threshold: m, PublicKeys: pubs}
	}
	return UnknownShape{Script: script}
}
