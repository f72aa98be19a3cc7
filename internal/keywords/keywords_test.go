package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_EmptyInput(t *testing.T) {
	e := New(DefaultOptions())
	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.Extract("   \n\t"))
}

func TestExtract_FiltersShortAndStopWords(t *testing.T) {
	e := New(DefaultOptions())
	got := e.Extract("The supplier is late, and the order for steel is at risk!")
	assert.Equal(t, []string{"supplier", "late", "order", "steel", "risk"}, got)
}

func TestExtract_KeepsDuplicates(t *testing.T) {
	e := New(DefaultOptions())
	got := e.Extract("Inventory, inventory... INVENTORY?")
	assert.Equal(t, []string{"inventory", "inventory", "inventory"}, got)
}

func TestExtract_SpanishStopWordsAndPunctuation(t *testing.T) {
	e := New(DefaultOptions())
	got := e.Extract("¿Cuándo llega el pedido para la planta?")
	assert.Equal(t, []string{"cuándo", "llega", "pedido", "planta"}, got)
}

func TestExtract_MinLengthCountsRunes(t *testing.T) {
	e := New(DefaultOptions())
	// "año" is three runes but four bytes.
	assert.Equal(t, []string{"año"}, e.Extract("el año"))
}

func TestExtract_CustomOptions(t *testing.T) {
	e := New(Options{MinLength: 5, Punctuation: "#", StopWords: []string{"Order"}})
	got := e.Extract("#order delayed for plant #seven")
	assert.Equal(t, []string{"delayed", "plant", "seven"}, got)
}
