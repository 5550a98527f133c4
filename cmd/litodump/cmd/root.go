package cmd

import (
	"errors"
	"os"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/moloch--/lito/internal/dlog"
)

// CLI argument errors.
var (
	ErrMissingCode    = errors.New("litodump: no hex-encoded code provided")
	ErrOddHexLength   = errors.New("litodump: hex string has an odd number of digits")
	ErrInvalidMode    = errors.New("litodump: --mode must be one of 16, 32, 64")
	ErrInvalidVendor  = errors.New("litodump: --vendor must be one of any, intel, amd")
	ErrInvalidFormat  = errors.New("litodump: --format must be one of text, json")
	ErrOddAddressBase = errors.New("litodump: --addr must be a hexadecimal or decimal integer")
)

var rootLog = dlog.NamedLogger("litodump", "cmd")

// sessionID correlates every log line emitted by one litodump invocation,
// mirroring server/core/hosts_scan.go's uuid.NewV4() per-scan correlation id.
var sessionID string

var rootCmd = &cobra.Command{
	Use:   "litodump",
	Short: "Decode x86/x86-64 machine code with the lito decoder",
	Long:  `litodump decodes a hex-encoded buffer of x86/x86-64 machine code and prints the resulting instruction records.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		id, err := uuid.NewV4()
		if err != nil {
			sessionID = "unknown"
			return
		}
		sessionID = id.String()
		rootLog.WithField("session", sessionID).Debugf("litodump session starting")
	},
}

// Execute runs the root command, exiting the process with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "decode",
		Title: "Decoding",
	})

	persistent := pflag.NewFlagSet("litodump", pflag.ContinueOnError)
	persistent.StringP("mode", "m", "32", "CPU mode: 16, 32, or 64")
	persistent.StringP("vendor", "V", "any", "vendor preference: any, intel, or amd")
	rootCmd.PersistentFlags().AddFlagSet(persistent)

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(streamCmd)
}
