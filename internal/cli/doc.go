// Package cli is the Breathe Pure command line: a cobra command tree whose
// default command is an interactive REPL (sign up, log in, dashboard,
// admin view) and whose subcommands print the admin view or stream
// simulated readings without a REPL.
package cli
