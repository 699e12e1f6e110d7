package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vtplay/internal/terminal"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// terminalFD returns the descriptor behind w, or false when w is not a file.
func terminalFD(w io.Writer) (uintptr, bool) {
	file, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	return file.Fd(), true
}

func shouldColorize(w io.Writer) bool {
	fd, ok := terminalFD(w)
	return ok && terminal.IsTerminal(fd)
}
