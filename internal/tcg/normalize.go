package tcg

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/google/uuid"
)

// FieldPath addresses a value inside a decoded JSON record. Each step is a
// string (object key) or an int (array index).
type FieldPath []interface{}

func (p FieldPath) String() string {
	parts := make([]string, 0, len(p))
	for _, step := range p {
		switch s := step.(type) {
		case string:
			parts = append(parts, s)
		case int:
			parts = append(parts, "["+strconv.Itoa(s)+"]")
		}
	}
	return strings.Join(parts, ".")
}

// Schema lists, per summary attribute, the candidate fields to probe in
// priority order. The first candidate holding a non-empty scalar wins.
type Schema struct {
	ID          []FieldPath
	Name        []FieldPath
	Image       []FieldPath
	Description []FieldPath
}

// DefaultSchema covers the record shapes of the apitcg.com games
var DefaultSchema = Schema{
	ID:          []FieldPath{{"id"}, {"uuid"}, {"_id"}},
	Name:        []FieldPath{{"name"}},
	Image:       []FieldPath{{"image"}, {"images", 0}, {"imageUrl"}, {"images", "small"}},
	Description: []FieldPath{{"description"}},
}

// Normalizer applies a Schema to raw provider records
type Normalizer struct {
	schema Schema
	suffix func() string
}

// NewNormalizer creates a normalizer for schema
func NewNormalizer(schema Schema) *Normalizer {
	return &Normalizer{
		schema: schema,
		suffix: func() string { return uuid.New().String()[:8] },
	}
}

// Normalize maps one record to a CardSummary. Records without any id
// candidate get "<name>-<random suffix>" so every summary stays selectable.
func (n *Normalizer) Normalize(record map[string]interface{}) models.CardSummary {
	card := models.CardSummary{
		ID:          firstPresent(record, n.schema.ID),
		Name:        firstPresent(record, n.schema.Name),
		ImageURL:    firstPresent(record, n.schema.Image),
		Description: firstPresent(record, n.schema.Description),
	}
	if card.ID == "" {
		card.ID = card.Name + "-" + n.suffix()
	}
	return card
}

// NormalizeAll maps every record, keeping provider order
func (n *Normalizer) NormalizeAll(records []map[string]interface{}) []models.CardSummary {
	cards := make([]models.CardSummary, 0, len(records))
	for _, r := range records {
		cards = append(cards, n.Normalize(r))
	}
	return cards
}

func firstPresent(record map[string]interface{}, candidates []FieldPath) string {
	for _, path := range candidates {
		if v, ok := lookup(record, path); ok {
			if s := scalar(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func lookup(value interface{}, path FieldPath) (interface{}, bool) {
	current := value
	for _, step := range path {
		switch s := step.(type) {
		case string:
			obj, ok := current.(map[string]interface{})
			if !ok {
				return nil, false
			}
			if current, ok = obj[s]; !ok {
				return nil, false
			}
		case int:
			arr, ok := current.([]interface{})
			if !ok || s < 0 || s >= len(arr) {
				return nil, false
			}
			current = arr[s]
		default:
			return nil, false
		}
	}
	return current, true
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
