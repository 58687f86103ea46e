// Package languages registers the tree-sitter grammars charon can outline.
package languages

import (
	"charon/internal/outline"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Default returns a registry with every bundled language.
func Default() *outline.Registry {
	r := outline.NewRegistry()
	RegisterPython(r)
	RegisterGo(r)
	RegisterJavaScript(r)
	RegisterTypeScript(r)
	return r
}

// RegisterPython adds Python (.py, .pyi).
func RegisterPython(r *outline.Registry) {
	r.Register(&outline.LanguageSpec{
		Name:     "python",
		Language: python.GetLanguage(),
		Query: `
			(function_definition name: (identifier) @name) @symbol
			(class_definition name: (identifier) @name) @symbol
		`,
		Extensions: []string{"py", "pyi"},
	})
}

// RegisterGo adds Go.
func RegisterGo(r *outline.Registry) {
	r.Register(&outline.LanguageSpec{
		Name:     "go",
		Language: golang.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @symbol
			(method_declaration name: (field_identifier) @name) @symbol
			(type_spec name: (type_identifier) @name) @symbol
		`,
		Extensions: []string{"go"},
	})
}

func RegisterJavaScript(r *outline.Registry) {
	r.Register(&outline.LanguageSpec{
		Name:     "javascript",
		Language: javascript.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @symbol
			(class_declaration name: (identifier) @name) @symbol
			(method_definition name: (property_identifier) @name) @symbol
			(variable_declarator name: (identifier) @name value: (arrow_function)) @symbol
		`,
		Extensions: []string{"js", "jsx", "mjs", "cjs"},
	})
}

func RegisterTypeScript(r *outline.Registry) {
	r.Register(&outline.LanguageSpec{
		Name:     "typescript",
		Language: typescript.GetLanguage(),
		Query: `
			(function_declaration name: (identifier) @name) @symbol
			(class_declaration name: (type_identifier) @name) @symbol
			(method_definition name: (property_identifier) @name) @symbol
			(interface_declaration name: (type_identifier) @name) @symbol
			(type_alias_declaration name: (type_identifier) @name) @symbol
			(variable_declarator name: (identifier) @name value: (arrow_function)) @symbol
		`,
		Extensions: []string{"ts", "tsx"},
	})
}
