// Command breathe is the Breathe Pure console: accounts, sessions, activity
// logs and simulated air-quality readings over a local key/value store.
package main

import (
	"os"

	"github.com/dmitrijs2005/breathepure/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
