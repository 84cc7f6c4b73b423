package vial

// Test-only exports for internal functions.
var (
	HasParamTags  = hasParamTags
	HasFormTags   = hasFormTags
	HasBodyField  = hasBodyField
	HasRawRequest = hasRawRequest
	JSONFieldName = jsonFieldName
	FieldRequired = fieldRequired

	ReflectSchema = reflectSchema
	FieldSchema   = fieldSchema

	CompileBodySchema = compileBodySchema
	BodyFieldPath     = bodyFieldPath

	ToOpenAPIPath = toOpenAPIPath
)

// ValidateBodyBytes exposes validateBytes for schema validation tests.
func (s *compiledSchema) ValidateBodyBytes(data []byte) error {
	return s.validateBytes(data)
}
