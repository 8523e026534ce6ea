package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	promptColor = color.New(color.FgYellow, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
)

// Confirm asks a yes/no question and reads one line of input. Only "y" and
// "yes" (any case) confirm; end of input counts as no.
func Confirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	promptColor.Fprintf(out, "%s [y/N] ", question)

	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PrintError writes err to w for the user.
func PrintError(w io.Writer, err error) {
	errorColor.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}
