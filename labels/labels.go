// Package labels - Canonicalization and classification of model label strings.
//
// The upstream detection models were retrained several times and their class
// name spellings drifted: "Tomato Early Blight", "tomato_early_blight" and
// "early-blight" all refer to the same disease. Every label is canonicalized
// to a Tag once at ingestion; downstream code compares tags, not raw strings.
package labels

import "strings"

// Tag is the canonical identifier of a known condition.
type Tag string

// Known condition tags. The tag string doubles as the canonical knowledge
// base key.
const (
	TagHealthy             Tag = "healthy"
	TagRotation            Tag = "rotation"
	TagBlossomEndRot       Tag = "blossom_end_rot"
	TagYellowLeafCurlVirus Tag = "yellow_leaf_curl_virus"
	TagSpiderMites         Tag = "spider_mites_two_spotted"
	TagEarlyBlight         Tag = "early_blight"
	TagLateBlight          Tag = "late_blight"
	TagMosaicVirus         Tag = "mosaic_virus"
	TagSeptoriaLeafSpot    Tag = "septoria_leaf_spot"
	TagBacterialSpot       Tag = "bacterial_spot"
	TagTargetSpotLeaf      Tag = "target_spot_leaf"
)

// Kind categorizes a detection for the analysis verdict.
type Kind string

const (
	// KindRipeness is a fruit ripeness detection ("ripe" / "unripe").
	KindRipeness Kind = "ripeness"
	// KindHealthy is a detection of healthy tissue.
	KindHealthy Kind = "healthy"
	// KindDisease is any detection that is neither healthy nor ripeness.
	KindDisease Kind = "disease"
)

// healthySet holds every spelling the models emit for healthy tissue,
// compared lower-cased and trimmed.
var healthySet = map[string]struct{}{
	"tomato-healthy":      {},
	"healthy":             {},
	"tomato_leaf":         {},
	"tomato_healthy":      {},
	"tomato healthy":      {},
	"healthy leaf":        {},
	"tomato_healthy_leaf": {},
	"healthy_leaf":        {},
	"healthy tomato":      {},
}

// aliases maps every known label spelling, in normalized form, to its tag.
// Unknown spellings fall through to the layered lookup in the advice package.
var aliases = map[string]Tag{
	"healthy":                  TagHealthy,
	"leaf":                     TagHealthy, // "tomato_leaf" normalizes to "leaf"
	"healthy_leaf":             TagHealthy,
	"healthy_tomato":           TagHealthy,
	"rotation":                 TagRotation,
	"blossom_end_rot":          TagBlossomEndRot,
	"yellow_leaf_curl_virus":   TagYellowLeafCurlVirus,
	"spider_mites_two_spotted": TagSpiderMites,
	"early_blight":             TagEarlyBlight,
	"late_blight":              TagLateBlight,
	"mosaic_virus":             TagMosaicVirus,
	"septoria_leaf_spot":       TagSeptoriaLeafSpot,
	"bacterial_spot":           TagBacterialSpot,
	"target_spot_leaf":         TagTargetSpotLeaf,
}

// Normalize canonicalizes a raw label string to a lookup key: lower-case,
// trim, strip one leading "tomato" token, separators to underscores,
// repeated underscores collapsed, outer underscores trimmed.
//
// Normalize is pure and total; it never fails, and it is idempotent.
//
// Arguments:
// - raw: The label string as emitted by a model or stored in history.
//
// Returns:
// - The canonical lookup key; empty input yields an empty string.
func Normalize(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	for _, prefix := range []string{"tomato ", "tomato_", "tomato-"} {
		if strings.HasPrefix(normalized, prefix) {
			normalized = normalized[len(prefix):]
			break
		}
	}

	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	for strings.Contains(normalized, "__") {
		normalized = strings.ReplaceAll(normalized, "__", "_")
	}

	return strings.Trim(normalized, "_")
}

// Resolve maps a raw label to its canonical tag.
//
// Arguments:
// - raw: The label string to resolve.
//
// Returns:
// - The canonical tag and true, or empty tag and false for unknown labels.
func Resolve(raw string) (Tag, bool) {
	tag, ok := aliases[Normalize(raw)]
	return tag, ok
}

// IsHealthy reports whether the label denotes healthy tissue.
func IsHealthy(raw string) bool {
	_, ok := healthySet[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// IsRipe reports whether the label is specifically the ripe class. Unripe
// fruit renders in the warning color, so drawing code cannot use IsRipeness.
func IsRipe(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "ripe")
}

// IsRipeness reports whether the label is a fruit ripeness class.
func IsRipeness(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ripe", "unripe":
		return true
	}
	return false
}

// ClassifyFruit categorizes a fruit model label.
func ClassifyFruit(raw string) Kind {
	if IsRipeness(raw) {
		return KindRipeness
	}
	if IsHealthy(raw) {
		return KindHealthy
	}
	return KindDisease
}

// ClassifyLeaf categorizes a leaf model label. Leaves have no ripeness
// concept, so everything non-healthy is a disease.
func ClassifyLeaf(raw string) Kind {
	if IsHealthy(raw) {
		return KindHealthy
	}
	return KindDisease
}

// DisplayName converts a raw label to its user-facing form: separators become
// spaces and each word is title-cased ("blossom-end-rot" -> "Blossom End Rot").
func DisplayName(raw string) string {
	s := strings.ReplaceAll(raw, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
