// Package ndjson frames newline-delimited JSON streams.
//
// [Splitter] is the pure framing core: feed it arbitrary chunks and it
// returns the complete lines they finish, holding any partial line until the
// next chunk. [Reader] drives a Splitter from an io.Reader and hands frames
// out one at a time. [Writer] is the outbound half, writing one encoded
// value per line.
//
// Frames never include the line terminator. A trailing carriage return is
// stripped so CRLF producers frame the same way, and blank or
// whitespace-only lines are dropped.
package ndjson
