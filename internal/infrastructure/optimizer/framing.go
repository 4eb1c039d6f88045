package optimizer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The solver speaks a length-prefixed block protocol: every segment is
// "<decimal length> <text>". A segment whose text begins with the prompt
// marker signals that the solver is done talking.

func writeBlock(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, "%d %s", len(text), text)
	return err
}

func readBlock(r *bufio.Reader) (string, error) {
	var lengthDigits strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == ' ' {
			break
		}
		if b < '0' || b > '9' {
			return "", fmt.Errorf("malformed block length: unexpected byte %q", b)
		}
		lengthDigits.WriteByte(b)
	}

	length, err := strconv.Atoi(lengthDigits.String())
	if err != nil {
		return "", fmt.Errorf("malformed block length: %w", err)
	}

	text := make([]byte, length)
	if _, err := io.ReadFull(r, text); err != nil {
		return "", err
	}

	// Carriage returns are an artifact of the solver's console output.
	return strings.ReplaceAll(string(text), "\r", ""), nil
}

// readUntilPrompt concatenates block texts until a block starting with the
// prompt marker arrives. A clean EOF also completes the read; anything else
// fails it.
func readUntilPrompt(r *bufio.Reader, prompt string) (string, error) {
	var out strings.Builder
	for {
		text, err := readBlock(r)
		if err != nil {
			if err == io.EOF {
				return out.String(), nil
			}
			return "", err
		}
		if strings.HasPrefix(text, prompt) {
			return out.String(), nil
		}
		out.WriteString(text)
	}
}
