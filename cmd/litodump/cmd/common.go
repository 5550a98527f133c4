package cmd

import (
	"encoding/hex"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moloch--/lito"
)

func parseMode(cmd *cobra.Command) (lito.Mode, error) {
	s, _ := cmd.Flags().GetString("mode")
	switch s {
	case "16":
		return lito.Mode16, nil
	case "32":
		return lito.Mode32, nil
	case "64":
		return lito.Mode64, nil
	default:
		return 0, ErrInvalidMode
	}
}

func parseVendor(cmd *cobra.Command) (lito.Vendor, error) {
	s, _ := cmd.Flags().GetString("vendor")
	switch strings.ToLower(s) {
	case "any", "":
		return lito.VendorAny, nil
	case "intel":
		return lito.VendorIntel, nil
	case "amd":
		return lito.VendorAMD, nil
	default:
		return 0, ErrInvalidVendor
	}
}

// parseCodeArg decodes a hex string like "90 89c8" or "9089c8" into raw
// bytes, tolerating embedded whitespace the way a user pasting a disassembly
// dump would produce.
func parseCodeArg(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, ErrMissingCode
	}
	joined := strings.Join(args, "")
	joined = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' {
			return -1
		}
		return r
	}, joined)
	if len(joined)%2 != 0 {
		return nil, ErrOddHexLength
	}
	return hex.DecodeString(joined)
}
