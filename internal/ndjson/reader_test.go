package ndjson

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) ([]string, error) {
	t.Helper()
	var out []string
	for {
		line, err := r.ReadLine()
		if err != nil {
			return out, err
		}
		out = append(out, string(line))
	}
}

func TestReader_FramesStream(t *testing.T) {
	t.Parallel()
	r := NewReader(strings.NewReader(sampleStream))
	got, err := readAll(t, r)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, sampleFrames, got)
	assert.Zero(t, r.Dropped())
}

func TestReader_OneByteReads(t *testing.T) {
	t.Parallel()
	r := NewReader(iotest.OneByteReader(strings.NewReader(sampleStream)))
	got, err := readAll(t, r)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, sampleFrames, got)
}

func TestReader_DiscardsUnterminatedTail(t *testing.T) {
	t.Parallel()
	r := NewReader(strings.NewReader("{\"a\":1}\n{\"b\":"))
	got, err := readAll(t, r)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{`{"a":1}`}, got)
	assert.Equal(t, len(`{"b":`), r.Dropped())
}

func TestReader_ErrorAfterFrames(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	src := io.MultiReader(strings.NewReader("{\"a\":1}\n"), iotest.ErrReader(boom))
	r := NewReader(src)

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(line))

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, boom)
	// The error is sticky.
	_, err = r.ReadLine()
	assert.ErrorIs(t, err, boom)
}

func TestReader_PipeDeliversAcrossWrites(t *testing.T) {
	t.Parallel()
	pr, pw := io.Pipe()
	go func() {
		for _, chunk := range []string{`{"id":"c1",`, `"msg":"aGVsbG8="}` + "\n", "{\"id\":\"c2\",\"msg\":\"eA==\"}\n"} {
			_, _ = pw.Write([]byte(chunk))
		}
		pw.Close()
	}()

	got, err := readAll(t, NewReader(pr))
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{`{"id":"c1","msg":"aGVsbG8="}`, `{"id":"c2","msg":"eA=="}`}, got)
}

func TestWriter_WriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteJSON(map[string]string{"id": "c1", "msg": "aGk="}))
	require.NoError(t, w.WriteRaw([]byte(`{"id":"c2"}`)))

	assert.Equal(t, "{\"id\":\"c1\",\"msg\":\"aGk=\"}\n{\"id\":\"c2\"}\n", buf.String())
}

func TestWriter_MarshalError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.Error(t, w.WriteJSON(make(chan int)))
	assert.Zero(t, buf.Len())
}

func TestWriter_ConcurrentLinesDoNotInterleave(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	w := NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.WriteRaw([]byte(`{"id":"c","msg":"` + strings.Repeat("x", 256) + `"}`))
		}()
	}
	wg.Wait()

	got, err := readAll(t, NewReader(&buf))
	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, got, 50)
	for _, line := range got {
		assert.Equal(t, `{"id":"c","msg":"`+strings.Repeat("x", 256)+`"}`, line)
	}
}
