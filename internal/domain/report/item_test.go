package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemRef_Normalize(t *testing.T) {
	assert.Equal(t, Item{Name: "Keys"}, TextItem("  Keys ").Normalize())
	assert.Equal(t, Item{Name: "Keys", Description: "car keys", ImageURL: "/k.png"},
		StructuredItem("Keys", " car keys", "/k.png").Normalize())
}

func TestItemRef_DisplayName(t *testing.T) {
	assert.Equal(t, "Unknown Item", StructuredItem("", "", "").DisplayName())
	assert.Equal(t, "Unknown Item", TextItem("  ").DisplayName())
	assert.Equal(t, "Scarf", TextItem("Scarf").DisplayName())
}

func TestItemRef_WithImageUpgradesLegacy(t *testing.T) {
	item := TextItem("Scarf").WithImage("/s.png")
	assert.False(t, item.IsLegacy())
	assert.Equal(t, Item{Name: "Scarf", ImageURL: "/s.png"}, item.Normalize())
}

func TestType_Opposite(t *testing.T) {
	assert.Equal(t, TypeFound, TypeLost.Opposite())
	assert.Equal(t, TypeLost, TypeFound.Opposite())
	assert.False(t, Type("stolen").Valid())
}
