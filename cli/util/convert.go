/*
Package util contains offline helper commands.
*/
package util

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"text/tabwriter"

	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/encoding/bigint"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/urfave/cli"
)

// NewCommands returns 'util' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "util",
		Usage: "various helper commands",
		Subcommands: []cli.Command{
			{
				Name:      "convert",
				Usage:     "convert the argument into other possible formats",
				UsageText: "neotx util convert <arg>",
				Description: `Tries to interpret the argument as a number, hex (both byte orders),
   base64 and address, prints every representation that applies. Strings are
   output in quotes.`,
				Action: handleConvert,
			},
		},
	}}
}

func handleConvert(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("expected exactly one argument", 1)
	}
	fmt.Fprint(ctx.App.Writer, Convert(ctx.Args().First()))
	return nil
}

// Convert returns a tab-aligned list of representations of arg.
func Convert(arg string) string {
	buf := bytes.NewBuffer(nil)
	// Ignore the errors below because `Write` to buffer doesn't return error.
	tw := tabwriter.NewWriter(buf, 0, 4, 4, '\t', 0)
	line := func(name, val string) {
		_, _ = tw.Write([]byte(name + "\t" + val + "\n"))
	}

	if n, err := strconv.ParseUint(arg, 10, 64); err == nil {
		h := util.HexStringFromNumber(n)
		line("Number to Hex (BE)", h.BigEndian())
		line("Number to Hex (LE)", h.LittleEndian())
		line("Integer to VM Bytes", hex.EncodeToString(bigint.ToBytes(new(big.Int).SetUint64(n))))
	}
	if h, err := util.HexStringFromHex(arg, false); err == nil && h.Len() != 0 {
		line("Hex to String", strconv.Quote(string(h.BytesBE())))
		line("Hex to Integer", bigint.FromBytes(h.BytesBE()).String())
		line("Swap Endianness", h.LittleEndian())
		line("Hex to Base64", h.Base64(false))
		if h.Len() == util.Uint160Size {
			u, _ := util.Uint160DecodeBytesBE(h.BytesBE())
			line("BE ScriptHash to Address", address.Uint160ToString(u))
			line("LE ScriptHash to Address", address.Uint160ToString(u.Reverse()))
		}
	}
	if h, err := util.HexStringFromBase64(arg, false); err == nil && h.Len() != 0 {
		line("Base64 to Hex", h.BigEndian())
		line("Base64 to String", strconv.Quote(string(h.BytesBE())))
	}
	if u, err := address.StringToUint160(arg); err == nil {
		h := util.HexStringFromBytes(u.BytesLE(), true)
		line("Address to BE ScriptHash", h.BigEndian())
		line("Address to LE ScriptHash", h.LittleEndian())
		line("Address to Base64 (BE)", h.Base64(false))
		line("Address to Base64 (LE)", h.Base64(true))
	}
	s := util.HexStringFromASCII(arg)
	line("String to Hex", s.BigEndian())
	line("String to Base64", s.Base64(false))
	_ = tw.Flush()
	return buf.String()
}
