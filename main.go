// =============================================================================
// txgen - Main Entry Point
// =============================================================================
//
// This is the main entry point for the txgen CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   txgen                  - Generate transactions.csv with the defaults
//   txgen generate         - Generate with explicit flags
//   txgen verify FILE      - Check a generated file
//   txgen ledger FILE      - Replay a file into client account states
//   txgen version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Generator, writer, reader, validation, ledger, reports
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/txgen/cmd"
)

func main() {
	cmd.Execute()
}
