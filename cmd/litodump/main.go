// Command litodump decodes a hex-encoded buffer of x86/x86-64 machine code
// and prints the resulting instruction records.
package main

import "github.com/moloch--/lito/cmd/litodump/cmd"

func main() {
	cmd.Execute()
}
