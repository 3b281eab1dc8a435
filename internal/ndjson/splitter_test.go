package ndjson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStream = `{"socket":"/tmp/x.sock","version":1}
{"id":"c1","action":"connect","pid":42}
{"id":"c1","msg":"aGVsbG8="}

{"id":"c1","action":"disconnect"}
`

var sampleFrames = []string{
	`{"socket":"/tmp/x.sock","version":1}`,
	`{"id":"c1","action":"connect","pid":42}`,
	`{"id":"c1","msg":"aGVsbG8="}`,
	`{"id":"c1","action":"disconnect"}`,
}

func feedAll(s *Splitter, chunks ...string) []string {
	var out []string
	for _, c := range chunks {
		for _, f := range s.Feed([]byte(c)) {
			out = append(out, string(f))
		}
	}
	return out
}

func TestSplitter_WholeStream(t *testing.T) {
	t.Parallel()
	var s Splitter
	assert.Equal(t, sampleFrames, feedAll(&s, sampleStream))
	assert.Zero(t, s.Pending())
}

func TestSplitter_EverySingleSplitPoint(t *testing.T) {
	t.Parallel()
	for i := 0; i <= len(sampleStream); i++ {
		var s Splitter
		got := feedAll(&s, sampleStream[:i], sampleStream[i:])
		require.Equal(t, sampleFrames, got, "split at %d", i)
	}
}

func TestSplitter_EveryDoubleSplitPoint(t *testing.T) {
	t.Parallel()
	for i := 0; i <= len(sampleStream); i++ {
		for j := i; j <= len(sampleStream); j++ {
			var s Splitter
			got := feedAll(&s, sampleStream[:i], sampleStream[i:j], sampleStream[j:])
			require.Equal(t, sampleFrames, got, "split at %d,%d", i, j)
		}
	}
}

func TestSplitter_ByteAtATime(t *testing.T) {
	t.Parallel()
	var s Splitter
	var got []string
	for i := 0; i < len(sampleStream); i++ {
		got = append(got, feedAll(&s, sampleStream[i:i+1])...)
	}
	assert.Equal(t, sampleFrames, got)
}

func TestSplitter_HoldsPartialLine(t *testing.T) {
	t.Parallel()
	var s Splitter

	assert.Empty(t, s.Feed([]byte(`{"id":"a",`)))
	assert.Equal(t, len(`{"id":"a",`), s.Pending())

	frames := s.Feed([]byte(`"msg":"b"}` + "\n" + `{"id"`))
	require.Len(t, frames, 1)
	assert.Equal(t, `{"id":"a","msg":"b"}`, string(frames[0]))
	assert.Equal(t, len(`{"id"`), s.Pending())

	s.Reset()
	assert.Zero(t, s.Pending())
}

func TestSplitter_CRLFAndBlankLines(t *testing.T) {
	t.Parallel()
	var s Splitter
	got := feedAll(&s, "{\"a\":1}\r\n\r\n\n   \n{\"b\":2}\r", "\n")
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, got)
}

func TestSplitter_FramesDoNotAliasInput(t *testing.T) {
	t.Parallel()
	var s Splitter
	chunk := []byte("{\"id\":\"x\"}\n")
	frames := s.Feed(chunk)
	require.Len(t, frames, 1)

	copy(chunk, strings.Repeat("z", len(chunk)))
	assert.Equal(t, `{"id":"x"}`, string(frames[0]))
}

func TestSplitter_EmptyChunk(t *testing.T) {
	t.Parallel()
	var s Splitter
	assert.Nil(t, s.Feed(nil))
	assert.Nil(t, s.Feed([]byte{}))
}
