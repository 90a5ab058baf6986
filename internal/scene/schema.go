package scene

import (
	"github.com/invopop/jsonschema"
)

// Schema describes GeneratedScene as a closed JSON schema, suitable for structured-output requests.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&GeneratedScene{})
}
