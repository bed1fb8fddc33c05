package main

import (
	"testing"
)

func TestUtilConvert(t *testing.T) {
	e := newExecutor(t, false)

	t.Run("number", func(t *testing.T) {
		e.Run(t, "neotx", "util", "convert", "256")
		e.checkNextLine(t, `^Number to Hex \(BE\)\s+0100$`)
		e.checkNextLine(t, `^Number to Hex \(LE\)\s+0001$`)
		e.checkNextLine(t, `^Integer to VM Bytes\s+0001$`)
		e.checkNextLine(t, `^String to Hex\s+323536$`)
		e.checkNextLine(t, `^String to Base64\s+MjU2$`)
		e.checkEOF(t)
	})
	t.Run("address", func(t *testing.T) {
		e.Run(t, "neotx", "util", "convert", validatorAddr)
		e.checkNextLine(t, `^Address to BE ScriptHash\s+`+validatorHash.StringBE()+`$`)
		e.checkNextLine(t, `^Address to LE ScriptHash\s+`+validatorHash.StringLE()+`$`)
		e.checkNextLine(t, `^Address to Base64 \(BE\)`)
		e.checkNextLine(t, `^Address to Base64 \(LE\)`)
	})
	t.Run("no argument", func(t *testing.T) {
		e.RunWithError(t, "neotx", "util", "convert")
	})
}
