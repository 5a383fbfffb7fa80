package sse

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader hands out one chunk per Read call.
type chunkReader struct {
	chunks [][]byte
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func chunks(parts ...string) *chunkReader {
	r := &chunkReader{}
	for _, p := range parts {
		r.chunks = append(r.chunks, []byte(p))
	}
	return r
}

func drain(t *testing.T, r *Reader) string {
	t.Helper()
	var sb strings.Builder
	for {
		fragment, err := r.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String()
		}
		require.NoError(t, err)
		sb.WriteString(fragment)
	}
}

func TestParsePayload(t *testing.T) {
	ev := ParsePayload(`{"content":"Hel"}`)
	assert.Equal(t, KindFragment, ev.Kind)
	assert.Equal(t, "Hel", ev.Content)

	ev = ParsePayload(" [DONE] ")
	assert.Equal(t, KindTerminal, ev.Kind)

	ev = ParsePayload(`{"content":`)
	assert.Equal(t, KindMalformed, ev.Kind)
	assert.Error(t, ev.Err)

	ev = ParsePayload(`{"text":"x"}`)
	assert.Equal(t, KindMalformed, ev.Kind)
	assert.ErrorIs(t, ev.Err, ErrMissingContent)

	ev = ParsePayload(`{"content":42}`)
	assert.Equal(t, KindMalformed, ev.Kind)

	ev = ParsePayload(`{"content":""}`)
	assert.Equal(t, KindFragment, ev.Kind)
	assert.Equal(t, "", ev.Content)
}

func TestFragmentsAcrossReads(t *testing.T) {
	r := NewReader(chunks(
		`data: {"content":"Hel"}`+"\n\n",
		`data: {"content":"lo, "}`+"\n\n",
		`data: {"content":"world"}`+"\n\n",
		"data: [DONE]\n\n",
	))

	assert.Equal(t, "Hello, world", drain(t, r))
}

func TestEventSplitAcrossReads(t *testing.T) {
	stream := `data: {"content":"Hel"}` + "\n\n" + `data: {"content":"lo, world"}` + "\n\n" + "data: [DONE]\n\n"

	for size := 1; size <= len(stream); size++ {
		var parts []string
		for i := 0; i < len(stream); i += size {
			end := i + size
			if end > len(stream) {
				end = len(stream)
			}
			parts = append(parts, stream[i:end])
		}
		assert.Equal(t, "Hello, world", drain(t, NewReader(chunks(parts...))), "chunk size %d", size)
	}
}

func TestMultiByteCharacterSplitAcrossReads(t *testing.T) {
	raw := []byte(`data: {"content":"£38 per hour – 漢字"}` + "\n\n" + "data: [DONE]\n\n")

	for cut := 1; cut < len(raw); cut++ {
		r := NewReader(&chunkReader{chunks: [][]byte{
			append([]byte(nil), raw[:cut]...),
			append([]byte(nil), raw[cut:]...),
		}})
		assert.Equal(t, "£38 per hour – 漢字", drain(t, r), "cut at %d", cut)
	}
}

func TestDecoderHoldsIncompleteRune(t *testing.T) {
	var d Decoder
	pound := []byte("£")
	require.Len(t, pound, 2)

	events := d.Feed(append([]byte(`data: {"content":"`), pound[0]))
	assert.Empty(t, events)
	assert.Equal(t, []byte{pound[0]}, d.pending)

	events = d.Feed(append([]byte{pound[1]}, []byte("\"}\n\n")...))
	require.Len(t, events, 1)
	assert.Equal(t, "£", events[0].Content)
	assert.Empty(t, d.pending)
}

func TestTwoEventsInOneRead(t *testing.T) {
	var d Decoder
	events := d.Feed([]byte(`data: {"content":"a"}` + "\n\n" + `data: {"content":"b"}` + "\n\n"))

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Content)
	assert.Equal(t, "b", events[1].Content)
}

func TestNothingAfterTerminalMarker(t *testing.T) {
	r := NewReader(chunks(
		`data: {"content":"done"}`+"\n\n"+"data: [DONE]\n\n"+`data: {"content":" extra"}`+"\n\n",
		`data: {"content":" more"}`+"\n\n",
	))

	assert.Equal(t, "done", drain(t, r))

	_, err := r.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderIgnoresFeedAfterTerminal(t *testing.T) {
	var d Decoder
	events := d.Feed([]byte("data: [DONE]\n\n"))
	require.Len(t, events, 1)
	assert.True(t, d.Done())

	assert.Empty(t, d.Feed([]byte(`data: {"content":"x"}`+"\n\n")))
	assert.Empty(t, d.Flush())
}

func TestMalformedEventIsSkipped(t *testing.T) {
	r := NewReader(chunks(
		`data: {"content":"first"}`+"\n\n",
		`data: {"content": oops}`+"\n\n",
		`data: {"content":" second"}`+"\n\n",
		"data: [DONE]\n\n",
	))

	assert.Equal(t, "first second", drain(t, r))
	assert.Equal(t, 1, r.Skipped())
}

func TestPayloadWithEmbeddedNewline(t *testing.T) {
	r := NewReader(chunks("data: {\n\"content\": \"multi\"}\n\ndata: [DONE]\n\n"))
	assert.Equal(t, "multi", drain(t, r))
}

func TestNonDataRecordsIgnored(t *testing.T) {
	r := NewReader(chunks(
		": keep-alive\n\n",
		"event: ping\n\n",
		"\n\n",
		`data:{"content":"ok"}`+"\n\n",
		"data: [DONE]\n\n",
	))
	assert.Equal(t, "ok", drain(t, r))
}

func TestCRLFDelimiters(t *testing.T) {
	r := NewReader(chunks(
		`data: {"content":"a"}`+"\r\n\r",
		"\n"+`data: {"content":"b"}`+"\r\n\r\n",
		"data: [DONE]\r\n\r\n",
	))
	assert.Equal(t, "ab", drain(t, r))
}

func TestTrailingRecordWithoutDelimiterIsApplied(t *testing.T) {
	r := NewReader(chunks(
		`data: {"content":"Hello"}`+"\n\n",
		`data: {"content":", world"}`,
	))
	assert.Equal(t, "Hello, world", drain(t, r))
}

func TestTrailingPartialRecordIsDropped(t *testing.T) {
	r := NewReader(chunks(
		`data: {"content":"Hello"}`+"\n\n",
		`data: {"cont`,
	))
	assert.Equal(t, "Hello", drain(t, r))
	assert.Equal(t, 1, r.Skipped())
}

func TestReadErrorAfterFragments(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewReader(&chunkReader{
		chunks: [][]byte{[]byte(`data: {"content":"partial"}` + "\n\n")},
		err:    boom,
	})

	fragment, err := r.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", fragment)

	_, err = r.Recv()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestIncompleteTail(t *testing.T) {
	euro := []byte("€") // 3 bytes
	assert.Equal(t, 0, incompleteTail(euro[:1]))
	assert.Equal(t, 0, incompleteTail(euro[:2]))
	assert.Equal(t, 3, incompleteTail(euro))
	assert.Equal(t, 2, incompleteTail(append([]byte("ab"), euro[:2]...)))
	assert.Equal(t, 0, incompleteTail(nil))
}
