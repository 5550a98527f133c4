package cmd

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/moloch--/lito"
)

var streamCmd = &cobra.Command{
	Use:     "stream <hex-bytes>",
	GroupID: "decode",
	Short:   "Decode every instruction in a buffer",
	Long:    `Stream decodes a hex-encoded byte buffer end to end and prints one row per instruction, including self-synchronized invalid bytes.`,
	RunE:    runStream,
}

func init() {
	streamCmd.Flags().String("addr", "0", "address of the first byte in the buffer")
}

func runStream(cmd *cobra.Command, args []string) error {
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
	addrStr, _ := cmd.Flags().GetString("addr")
	baseAddr, err := strconv.ParseUint(addrStr, 0, 64)
	if err != nil {
		return ErrOddAddressBase
	}

	stream := lito.NewInstructionStream(code, mode)
	stream.SetVendor(vendor)
	if err := stream.ParseAll(); err != nil {
		return err
	}

	rootLog.WithField("session", sessionID).
		WithField("count", len(stream.Instructions)).
		WithField("bytes", stream.GetTotalLength()).
		Debugf("stream decode complete")

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"Address", "Bytes", "Mnemonic", "Length", "Flags"})

	addr := baseAddr
	for i := range stream.Instructions {
		rec := &stream.Instructions[i]
		tw.AppendRow(table.Row{
			formatAddr(addr),
			formatBytes(rec),
			rec.Mnemonic.String(),
			rec.Length,
			formatFlags(rec),
		})
		addr += uint64(rec.Length)
	}
	tw.Render()
	return nil
}

func formatAddr(addr uint64) string {
	return "0x" + strconv.FormatUint(addr, 16)
}

func formatBytes(rec *lito.Instruction) string {
	buf := make([]byte, 0, rec.Length*2)
	for i := 0; i < rec.Length && i < len(rec.Data); i++ {
		buf = append(buf, hexDigit(rec.Data[i]>>4), hexDigit(rec.Data[i]&0xF))
	}
	return string(buf)
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + (n - 10)
}

func formatFlags(rec *lito.Instruction) string {
	if rec.Flags.Any(lito.ErrorMask) {
		return "invalid"
	}
	if rec.IsControlFlow() {
		return "control-flow"
	}
	return "-"
}
