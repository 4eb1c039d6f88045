package optimizer

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(text string) string {
	return fmt.Sprintf("%d %s", len(text), text)
}

func TestWriteBlock(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBlock(&buf, "param distance :=\n;"))
	assert.Equal(t, "19 param distance :=\n;", buf.String())
}

func TestReadBlock_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBlock(&buf, "hello solver"))

	text, err := readBlock(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "hello solver", text)
}

func TestReadBlock_StripsCarriageReturns(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(block("line one\r\nline two\r\n")))

	text, err := readBlock(r)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
}

func TestReadBlock_MalformedLength(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("abc hello"))
	_, err := readBlock(r)
	require.Error(t, err)
}

func TestReadBlock_TruncatedText(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("10 short"))
	_, err := readBlock(r)
	require.Error(t, err)
}

func TestReadUntilPrompt_ConcatenatesBlocks(t *testing.T) {
	stream := block("MINOS 5.51: optimal solution found.\n") +
		block("shipping_amount['Product3','Store2'] = 5\n") +
		block("ampl: ")

	out, err := readUntilPrompt(bufio.NewReader(strings.NewReader(stream)), "ampl:")
	require.NoError(t, err)
	assert.Equal(t,
		"MINOS 5.51: optimal solution found.\nshipping_amount['Product3','Store2'] = 5\n",
		out)
}

func TestReadUntilPrompt_CleanEOFCompletes(t *testing.T) {
	stream := block("partial output\n")

	out, err := readUntilPrompt(bufio.NewReader(strings.NewReader(stream)), "ampl:")
	require.NoError(t, err)
	assert.Equal(t, "partial output\n", out)
}

func TestReadUntilPrompt_PropagatesMalformedStream(t *testing.T) {
	stream := block("fine\n") + "?? garbage"

	_, err := readUntilPrompt(bufio.NewReader(strings.NewReader(stream)), "ampl:")
	require.Error(t, err)
}
