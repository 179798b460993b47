package schema

// listingJSONSchema describes Listing the way the model is asked to emit it.
const listingJSONSchema = `{
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "Product Description": {"type": "string", "description": "Name of the product", "default": "n/a"},
          "Product Link": {"type": "string", "description": "Link for the product detail", "default": "n/a"},
          "Brand": {"type": "string", "description": "Brand of the product", "default": "n/a"},
          "Flavors": {"type": "array", "items": {"type": "string"}, "description": "List of flavors for the product", "default": ["n/a"]}
        }
      }
    }
  },
  "required": ["items"]
}`

// FormatInstructions returns the machine-generated block appended to the
// extraction prompt. It is also replayed verbatim in the repair prompt.
func FormatInstructions() string {
	return "The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n" +
		"As an example, for the schema {\"properties\": {\"foo\": {\"type\": \"array\", \"items\": {\"type\": \"string\"}}}, \"required\": [\"foo\"]}\n" +
		"the object {\"foo\": [\"bar\", \"baz\"]} is a well-formatted instance of the schema. " +
		"The object {\"properties\": {\"foo\": [\"bar\", \"baz\"]}} is not well-formatted.\n\n" +
		"Here is the output schema:\n```\n" + listingJSONSchema + "\n```"
}
