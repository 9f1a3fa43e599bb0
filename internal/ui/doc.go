// Package ui renders styled output for the one-shot ztdash subcommands
// (list, bookmark, forget).
//
// Unlike the interactive dashboard, these components follow a "print once
// and exit" pattern: a command header, a result box or a table, written
// to any io.Writer through a Printer.
//
// # Usage Pattern
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Bookmarked networks", "ztdash list", []ui.Param{
//	    {Key: "Node", Value: "http://localhost:9993"},
//	})
//	p.PrintNetworks(store.Visible())
//
// Width comes from the terminal (golang.org/x/term) and is clamped to a
// readable range; SetWidth overrides it for tests and pipes.
package ui
