package protocol

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the wire record, for bridge
// implementers and for validating captured traffic. Unknown properties are
// allowed because Classify ignores them.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&BridgeMessage{})
	s.Title = "ipc-json-bridge message"
	s.Description = "One newline-delimited JSON record exchanged with the bridge on its standard streams."
	return s
}

// SchemaJSON returns Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
