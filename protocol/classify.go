package protocol

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/tidwall/gjson"
)

// Classify parses one frame and returns the message it carries.
//
// Rules are checked in order and the first match wins:
//  1. socket and version present: ReadyMessage, or *VersionError if the
//     version is not Version
//  2. error present: ErrorMessage
//  3. action "connect": ConnectMessage
//  4. action "disconnect": DisconnectMessage
//  5. id and msg present: IncomingMessage
//
// A well-formed object matching no rule yields (nil, nil) so newer bridges
// can add message kinds. A field set to null counts as absent. Keys match
// exactly, and only the fields read by the matching rule are type-checked.
func Classify(line []byte) (Message, error) {
	if !gjson.ValidBytes(line) {
		return nil, &ParseError{Line: string(line), Cause: syntaxCause(line)}
	}
	root := gjson.ParseBytes(line)
	if !root.IsObject() {
		return nil, &FrameError{Line: string(line), Reason: "expected a JSON object, got " + jsonKind(root)}
	}

	f := fields{root: root}
	var msg Message

	switch {
	case f.has("socket") && f.has("version"):
		version := f.int("version")
		socket := f.string("socket")
		if f.err == nil && version != Version {
			return nil, &VersionError{Got: version}
		}
		msg = ReadyMessage{Socket: socket, Version: version}

	case f.has("error"):
		msg = ErrorMessage{Error: f.string("error"), Details: f.string("details")}

	case f.action() == ActionConnect:
		if !f.has("id") {
			return nil, &FrameError{Line: string(line), Reason: "connect without id"}
		}
		msg = ConnectMessage{ID: f.string("id"), Action: ActionConnect, PID: f.int("pid")}

	case f.action() == ActionDisconnect:
		if !f.has("id") {
			return nil, &FrameError{Line: string(line), Reason: "disconnect without id"}
		}
		msg = DisconnectMessage{ID: f.string("id"), Action: ActionDisconnect}

	case f.has("id") && f.has("msg"):
		msg = IncomingMessage{ID: f.string("id"), Msg: f.string("msg")}
	}

	if f.err != nil {
		return nil, &ParseError{Line: string(line), Cause: f.err}
	}
	return msg, nil
}

// fields reads typed values from a parsed object and keeps the first type
// mismatch. Absent and null fields read as zero values.
type fields struct {
	err  error
	root gjson.Result
}

func (f *fields) get(name string) (gjson.Result, bool) {
	r := f.root.Get(gjson.Escape(name))
	return r, r.Exists() && r.Type != gjson.Null
}

func (f *fields) has(name string) bool {
	_, ok := f.get(name)
	return ok
}

func (f *fields) string(name string) string {
	r, ok := f.get(name)
	if !ok {
		return ""
	}
	if r.Type != gjson.String {
		f.fail(&FieldError{Field: name, Want: "string", Got: jsonKind(r)})
		return ""
	}
	return r.Str
}

func (f *fields) int(name string) int {
	r, ok := f.get(name)
	if !ok {
		return 0
	}
	if r.Type != gjson.Number {
		f.fail(&FieldError{Field: name, Want: "integer", Got: jsonKind(r)})
		return 0
	}
	if r.Num != math.Trunc(r.Num) || math.Abs(r.Num) > math.MaxInt32 {
		f.fail(&FieldError{Field: name, Want: "integer", Got: r.Raw})
		return 0
	}
	return int(r.Num)
}

// action returns the action field when it is a string; other types match
// no lifecycle rule.
func (f *fields) action() Action {
	r, ok := f.get("action")
	if !ok || r.Type != gjson.String {
		return ""
	}
	return Action(r.Str)
}

func (f *fields) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// syntaxCause recovers a descriptive error for invalid JSON; gjson only
// reports validity.
func syntaxCause(line []byte) error {
	var v any
	if err := json.Unmarshal(line, &v); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}

func jsonKind(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "boolean"
	default:
		return "null"
	}
}
