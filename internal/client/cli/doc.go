// Package cli provides the interactive vector command-line client.
//
// It wires configuration, the local delivery journal and the attachment
// pipeline, then either runs one command given on the command line or starts
// a REPL:
//
//	send <path> [destination ...]   encrypt and upload a file
//	fetch <id> [output]             download and decrypt a journaled delivery
//	history [n]                     list recent deliveries
//	show <id>                       print tags and attempts of a delivery
//	hosts                           list configured destinations
//	secret                          enter the upload signing secret
//
// The REPL is started via App.Run(ctx, nil) and blocks until the user exits.
package cli
