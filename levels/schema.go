package levels

import "github.com/invopop/jsonschema"

// Schema describes the level document for external tools.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(new(Document))
	schema.Title = "fanbuilder level"
	schema.Description = "Tiles, enemies, coins and powerups of one editable level. Positions are pixels."
	return schema
}
