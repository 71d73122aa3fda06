// Package cli is the interactive terminal front end of FileVault.
//
// App builds the client services, restores the previous session on start
// and runs a small REPL:
//
//	register, login, logout, whoami
//	list | l
//	upload <path>       streams a file and prints its progress
//	delete <id>         asks for confirmation first
//	share <id>          prints the public share link
//	open <link|id>      resolves a share link without a session
//	exit | quit
package cli
