package card

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
)

// Content keys written by the content-generation pipeline.
const (
	keySeries   = "SERIES"
	keyNumber   = "NUMBER"
	keyWord     = "WORD"
	keyRarity   = "RARITY_TEXT"
	keyCardType = "CARD_TYPE"
)

// record is the subset of card.json the loader cares about.
// Content stays raw so a non-object value degrades to empty fields.
type record struct {
	Content json.RawMessage `json:"content"`
}

// Load reads <cardDir>/card.json and returns the card identity.
func Load(ctx context.Context, cardDir string) (Identity, error) {
	return LoadFile(ctx, filepath.Join(cardDir, constants.CardFileName))
}

// LoadFile reads a card metadata record from an explicit path.
//
// A missing file is an input error; a file that is not JSON is a parse error.
// Identity is always reloaded from disk, never cached.
func LoadFile(ctx context.Context, path string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	data, err := os.ReadFile(path) //#nosec G304 -- path is the caller's card directory
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, fmt.Errorf("missing %s: %w", path, cmerrors.ErrInputMissing)
		}
		return Identity{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse extracts the identity from the raw bytes of a card record.
func Parse(data []byte) (Identity, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", cmerrors.ErrCardRecordCorrupted, err)
	}

	var content map[string]json.RawMessage
	if len(rec.Content) > 0 {
		// Anything other than an object (null, string, array) yields no fields.
		if err := json.Unmarshal(rec.Content, &content); err != nil {
			content = nil
		}
	}

	return FromContent(content), nil
}

// FromContent builds an identity from the decoded content object.
func FromContent(content map[string]json.RawMessage) Identity {
	return Identity{
		Series:   field(content, keySeries),
		Number:   field(content, keyNumber),
		Word:     field(content, keyWord),
		Rarity:   field(content, keyRarity),
		CardType: field(content, keyCardType),
	}
}

// field returns the trimmed string form of content[key].
//
// Scalars are stringified the way signatures were originally issued: integers
// keep their JSON text, floats use the shortest round-trip form with Python's
// spelling (1.50 is "1.5", 1e2 is "100.0"), booleans become True/False.
// null is empty. Objects and arrays become compact JSON, which does not match
// earlier signatures over such values; identity fields are scalars in practice.
func field(content map[string]json.RawMessage, key string) string {
	raw, ok := content[key]
	if !ok {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case 'n':
		return ""
	case 't':
		return "True"
	case 'f':
		return "False"
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return ""
		}
		return buf.String()
	default:
		return number(string(raw))
	}
}

// number renders a JSON number literal. Literals with a fraction or exponent
// are floats; everything else is an integer and keeps its text.
func number(lit string) string {
	if !strings.ContainsAny(lit, ".eE") {
		if lit == "-0" {
			return "0"
		}
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return lit
	}
	return formatFloat(f)
}

// formatFloat spells f the way Python's repr does: shortest round-trip
// digits, fixed notation with a trailing ".0" for integral values, and
// exponent notation outside 1e-4 <= |f| < 1e16.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sign := ""
	if math.Signbit(f) {
		sign = "-"
	}

	mant, expText, _ := strings.Cut(strconv.FormatFloat(math.Abs(f), 'e', -1, 64), "e")
	exp, _ := strconv.Atoi(expText)
	digits := strings.Replace(mant, ".", "", 1)
	point := exp + 1 // digits[:point] is the integer part

	if point <= -4 || point > 16 {
		m := digits[:1]
		if len(digits) > 1 {
			m += "." + digits[1:]
		}
		expSign := "+"
		if exp < 0 {
			expSign, exp = "-", -exp
		}
		return fmt.Sprintf("%s%se%s%02d", sign, m, expSign, exp)
	}

	switch {
	case point <= 0:
		return sign + "0." + strings.Repeat("0", -point) + digits
	case point >= len(digits):
		return sign + digits + strings.Repeat("0", point-len(digits)) + ".0"
	default:
		return sign + digits[:point] + "." + digits[point:]
	}
}
