// Package card loads a card's identity from its metadata record and builds the
// canonical payload that watermark signatures are computed over.
package card

import "strings"

// Identity is the five-field record a signature is bound to.
// Every field is a trimmed string; absent fields are empty, never nil.
type Identity struct {
	Series   string `json:"series"`
	Number   string `json:"number"`
	Word     string `json:"word"`
	Rarity   string `json:"rarity"`
	CardType string `json:"card_type"`
}

// CanonicalPayload serializes the identity into the signed message.
//
// The field order, the key names and the "|" separator are part of the
// artifact format: previously issued signatures only reproduce if this
// string is byte-identical.
func (id Identity) CanonicalPayload() string {
	var b strings.Builder
	b.Grow(len("series=|number=|word=|rarity=|card_type=") +
		len(id.Series) + len(id.Number) + len(id.Word) + len(id.Rarity) + len(id.CardType))

	b.WriteString("series=")
	b.WriteString(id.Series)
	b.WriteString("|number=")
	b.WriteString(id.Number)
	b.WriteString("|word=")
	b.WriteString(id.Word)
	b.WriteString("|rarity=")
	b.WriteString(id.Rarity)
	b.WriteString("|card_type=")
	b.WriteString(id.CardType)
	return b.String()
}

// Label returns a short human-readable name for logs, e.g. "2026-Q1 #001 MAGI".
func (id Identity) Label() string {
	parts := make([]string, 0, 3)
	if id.Series != "" {
		parts = append(parts, id.Series)
	}
	if id.Number != "" {
		parts = append(parts, "#"+id.Number)
	}
	if id.Word != "" {
		parts = append(parts, id.Word)
	}
	if len(parts) == 0 {
		return "(unnamed card)"
	}
	return strings.Join(parts, " ")
}
