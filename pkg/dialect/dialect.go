// Package dialect holds the keyword tables that give LuzScript its surface
// vocabulary. The executor only ever compares token text against a Dialect,
// so the same program structure can be written in Spanish or English.
package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thomasrohde/luzscript/pkg/lexer"
)

// Dialect names the words recognised as statement keywords and literals.
type Dialect struct {
	Name    string `yaml:"name"`
	Declare string `yaml:"declare"`
	Print   string `yaml:"print"`
	If      string `yaml:"if"`
	Else    string `yaml:"else"`
	While   string `yaml:"while"`
	For     string `yaml:"for"`
	True    string `yaml:"true"`
	False   string `yaml:"false"`

	// Absent is how the absent value is displayed. It is not a keyword.
	Absent string `yaml:"absent"`
	// Exit is the word that ends an interactive session.
	Exit string `yaml:"exit"`
}

// Spanish is the default dialect.
func Spanish() Dialect {
	return Dialect{
		Name:    "spanish",
		Declare: "var",
		Print:   "imprimir",
		If:      "si",
		Else:    "sino",
		While:   "mientrasQue",
		For:     "para",
		True:    "verdadero",
		False:   "falso",
		Absent:  "nulo",
		Exit:    "salir",
	}
}

// English spells the same keywords in English.
func English() Dialect {
	return Dialect{
		Name:    "english",
		Declare: "var",
		Print:   "print",
		If:      "if",
		Else:    "else",
		While:   "while",
		For:     "for",
		True:    "true",
		False:   "false",
		Absent:  "null",
		Exit:    "exit",
	}
}

var builtin = map[string]func() Dialect{
	"spanish": Spanish,
	"english": English,
}

// Names returns the names of the built-in dialects, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the built-in dialect with the given name. The empty name
// selects Spanish.
func Lookup(name string) (Dialect, error) {
	if name == "" {
		return Spanish(), nil
	}
	fn, ok := builtin[strings.ToLower(name)]
	if !ok {
		return Dialect{}, fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return fn(), nil
}

// fields maps override keys to the struct fields they replace.
func (d *Dialect) fields() map[string]*string {
	return map[string]*string{
		"declare": &d.Declare,
		"print":   &d.Print,
		"if":      &d.If,
		"else":    &d.Else,
		"while":   &d.While,
		"for":     &d.For,
		"true":    &d.True,
		"false":   &d.False,
		"absent":  &d.Absent,
		"exit":    &d.Exit,
	}
}

// Override returns a copy of d with the given keywords replaced. Keys are
// the yaml field names ("print", "while", ...).
func (d Dialect) Override(words map[string]string) (Dialect, error) {
	out := d
	fields := out.fields()
	for key, word := range words {
		field, ok := fields[key]
		if !ok {
			return Dialect{}, fmt.Errorf("unknown keyword %q", key)
		}
		if word == "" {
			return Dialect{}, fmt.Errorf("keyword %q cannot be empty", key)
		}
		*field = word
	}
	if err := out.Validate(); err != nil {
		return Dialect{}, err
	}
	return out, nil
}

// Keywords returns the words that start statements or spell literals.
func (d Dialect) Keywords() []string {
	return []string{d.Declare, d.Print, d.If, d.Else, d.While, d.For, d.True, d.False}
}

// IsKeyword reports whether tok is one of the dialect's keywords.
func (d Dialect) IsKeyword(tok string) bool {
	for _, kw := range d.Keywords() {
		if kw == tok {
			return true
		}
	}
	return false
}

// Validate checks that every keyword is a distinct identifier-shaped word.
func (d Dialect) Validate() error {
	seen := make(map[string]bool)
	for _, kw := range d.Keywords() {
		if !lexer.IsIdentifier(kw) {
			return fmt.Errorf("keyword %q is not an identifier", kw)
		}
		if seen[kw] {
			return fmt.Errorf("keyword %q is used twice", kw)
		}
		seen[kw] = true
	}
	return nil
}
