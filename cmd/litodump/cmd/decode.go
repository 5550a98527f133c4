package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/moloch--/lito"
)

var decodeCmd = &cobra.Command{
	Use:     "decode <hex-bytes>",
	GroupID: "decode",
	Short:   "Decode a single instruction",
	Long:    `Decode decodes the single instruction at the start of a hex-encoded byte buffer.`,
	RunE:    runDecode,
}

func init() {
	decodeCmd.Flags().StringP("format", "f", "text", "output format: text or json")
	decodeCmd.Flags().String("addr", "0", "instruction address, used to resolve relative control-flow targets")
}

func runDecode(cmd *cobra.Command, args []string) error {
	code, err := parseCodeArg(args)
	if err != nil {
		return err
	}
	mode, err := parseMode(cmd)
	if err != nil {
		return err
	}
	vendor, err := parseVendor(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return ErrInvalidFormat
	}
	addrStr, _ := cmd.Flags().GetString("addr")
	addr, err := strconv.ParseUint(addrStr, 0, 64)
	if err != nil {
		return ErrOddAddressBase
	}

	dec := lito.NewDecoder(mode)
	dec.SetVendor(vendor)
	src := lito.NewFixedSource(code)

	var rec lito.Instruction
	if !dec.DecodeInstruction(src, &rec) {
		rootLog.WithField("session", sessionID).Debugf("decode: no instruction produced, end of input")
		return fmt.Errorf("litodump: no complete instruction at offset 0")
	}

	rootLog.WithField("session", sessionID).
		WithField("mnemonic", rec.Mnemonic.String()).
		WithField("length", rec.Length).
		WithField("address", addr).
		Debugf("decoded one instruction")

	if format == "json" {
		return printDecodeJSON(cmd, &rec, addr)
	}
	printDecodeText(cmd, &rec, addr)
	return nil
}

type decodeJSON struct {
	Mnemonic string `json:"mnemonic"`
	Length   int    `json:"length"`
	Invalid  bool   `json:"invalid"`
	Target   string `json:"target,omitempty"`
}

func printDecodeJSON(cmd *cobra.Command, rec *lito.Instruction, addr uint64) error {
	out := decodeJSON{
		Mnemonic: rec.Mnemonic.String(),
		Length:   rec.Length,
		Invalid:  rec.Flags.Any(lito.ErrorMask),
	}
	if rec.IsControlFlow() {
		if target, err := rec.GetRelativeTarget(addr); err == nil {
			out.Target = fmt.Sprintf("0x%x", target)
		}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printDecodeText(cmd *cobra.Command, rec *lito.Instruction, addr uint64) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s length=%d\n", rec.Mnemonic.String(), rec.Length)
	if rec.IsControlFlow() {
		if target, err := rec.GetRelativeTarget(addr); err == nil {
			fmt.Fprintf(out, "  target: 0x%x\n", target)
		}
	}
}
