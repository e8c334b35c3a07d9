// Command modcheck runs the listing moderation checks from the command line.
//
//	modcheck text "Vendo bicicleta"
//	modcheck draft listing.yaml
//
// The result is printed as JSON; the exit status is 1 when the text or draft
// is rejected.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "modcheck:", err)
		}
		os.Exit(1)
	}
}
