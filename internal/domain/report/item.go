package report

import "strings"

type itemKind uint8

const (
	itemStructured itemKind = iota
	itemText
)

// ItemRef is the item a report is about. Older reports stored the item as a
// bare string; newer ones carry a name, a description and an optional image.
// Read it through Normalize instead of inspecting the variant.
type ItemRef struct {
	kind        itemKind
	text        string
	name        string
	description string
	imageURL    string
}

// StructuredItem is the current item shape.
func StructuredItem(name, description, imageURL string) ItemRef {
	return ItemRef{
		kind:        itemStructured,
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		imageURL:    strings.TrimSpace(imageURL),
	}
}

// TextItem wraps a legacy bare-string item.
func TextItem(text string) ItemRef {
	return ItemRef{kind: itemText, text: strings.TrimSpace(text)}
}

// Item is the normalized view of an ItemRef.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

func (i ItemRef) Normalize() Item {
	if i.kind == itemText {
		return Item{Name: i.text}
	}
	return Item{Name: i.name, Description: i.description, ImageURL: i.imageURL}
}

func (i ItemRef) IsLegacy() bool { return i.kind == itemText }

// DisplayName is the item name or a placeholder when it is blank.
func (i ItemRef) DisplayName() string {
	if n := i.Normalize().Name; n != "" {
		return n
	}
	return "Unknown Item"
}

// WithImage returns a structured copy carrying imageURL. A legacy item is
// upgraded to the structured shape.
func (i ItemRef) WithImage(imageURL string) ItemRef {
	n := i.Normalize()
	return StructuredItem(n.Name, n.Description, imageURL)
}
