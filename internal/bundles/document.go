package bundles

import (
	"encoding/json"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Document is the plain JSON form of a single bundle:
// {lang, country, group, messages}.
type Document struct {
	Lang     string            `json:"lang"`
	Country  string            `json:"country"`
	Group    string            `json:"group"`
	Messages map[string]string `json:"messages"`
}

// ManagerDocument is the whole-manager JSON form:
// {spec: url, bundles: {fullCode: bundleDoc, ...}}.
type ManagerDocument struct {
	Spec    string              `json:"spec"`
	Bundles map[string]Document `json:"bundles"`
}

const bundleSchemaDef = `{
	"type": "object",
	"properties": {
		"lang": {"type": "string"},
		"country": {"type": "string"},
		"group": {"type": "string"},
		"messages": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	},
	"required": ["lang", "country", "group", "messages"],
	"additionalProperties": false
}`

const managerSchemaDef = `{
	"type": "object",
	"properties": {
		"spec": {"type": "string"},
		"bundles": {
			"type": "object",
			"additionalProperties": ` + bundleSchemaDef + `
		}
	},
	"required": ["spec", "bundles"],
	"additionalProperties": false
}`

var (
	bundleSchema  = mustCompileSchema("bundle.schema.json", bundleSchemaDef)
	managerSchema = mustCompileSchema("manager.schema.json", managerSchemaDef)
)

func mustCompileSchema(name, def string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, strings.NewReader(def)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

func validateDocument(schema *jsonschema.Schema, data []byte) error {
	var shape any
	if err := json.Unmarshal(data, &shape); err != nil {
		return &DocumentError{Cause: err}
	}
	if err := schema.Validate(shape); err != nil {
		return &DocumentError{Detail: err.Error(), Cause: err}
	}
	return nil
}

// ToDocument converts the bundle to its plain document form.
func (b *Bundle) ToDocument() Document {
	return Document{
		Lang:     b.lang,
		Country:  b.country,
		Group:    b.group,
		Messages: b.Messages(),
	}
}

// FromDocument builds a bundle from its plain document form. Keys are
// inserted in sorted order so serialized output stays deterministic.
func FromDocument(doc Document) *Bundle {
	return FromMessages(doc.Lang, doc.Country, doc.Group, doc.Messages)
}

// ParseDocument decodes and validates a serialized bundle document,
// rejecting anything that does not match the expected shape.
func ParseDocument(data []byte) (Document, error) {
	if err := validateDocument(bundleSchema, data); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, &DocumentError{Cause: err}
	}
	return doc, nil
}

// ParseManagerDocument decodes and validates a serialized manager document.
func ParseManagerDocument(data []byte) (ManagerDocument, error) {
	if err := validateDocument(managerSchema, data); err != nil {
		return ManagerDocument{}, err
	}
	var doc ManagerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ManagerDocument{}, &DocumentError{Cause: err}
	}
	return doc, nil
}
