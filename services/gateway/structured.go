package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// schemaInstructions reflects a JSON schema from the destination value and
// renders it as system instructions constraining the model's output shape.
func schemaInstructions(v any) (string, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}

	schema := reflector.Reflect(v)
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	return "Respond with exactly one JSON value conforming to this JSON Schema, with no surrounding prose:\n" + string(data), nil
}
