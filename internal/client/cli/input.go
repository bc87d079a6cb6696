package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// If EOF occurs after some input was read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetSecret reads a value from the terminal without echo.
func GetSecret(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// field is one prompt of a form. current is shown when editing.
type field struct {
	label   string
	current string
	dst     *string
}

// ask runs the prompts in order and stops at the first read error.
func ask(reader *bufio.Reader, w io.Writer, fields []field) error {
	for _, f := range fields {
		prompt := f.label
		if f.current != "" {
			prompt = fmt.Sprintf("%s [%s]", f.label, f.current)
		}
		v, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// wipe zeroes secret input once it is no longer needed.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
