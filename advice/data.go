package advice

import "github.com/makoyyylouie/tomato-ai/labels"

// Fruit is the knowledge base consulted for fruit model detections.
var Fruit = Base{
	string(labels.TagHealthy): {
		Cause:      "Optimal care, proper nutrients, and environment.",
		Effect:     "Robust growth, high photosynthesis, and maximum yield.",
		Pest:       "None",
		Prevention: "Continue current care and monitoring.",
	},
	string(labels.TagRotation): {
		Cause:      "Calcium deficiency combined with moisture fluctuations and poor fruit development.",
		Effect:     "Dark, sunken, leathery spots on the blossom end (bottom) of the fruit. Fruit may rot or become misshapen.",
		Pest:       "None (Physiological disorder)",
		Prevention: "Maintain consistent watering schedule; ensure adequate calcium in soil; use calcium-rich fertilizers or foliar sprays; avoid over-fertilizing with nitrogen; maintain proper pH (6.0-6.8).",
	},
	string(labels.TagBlossomEndRot): {
		Cause:      "Calcium deficiency usually triggered by inconsistent watering or rapid growth periods.",
		Effect:     "Sunken black or dark brown leathery spots at the bottom (blossom end) of the fruit. Affected area becomes hard and dry.",
		Pest:       "None (Physiological Disorder - not caused by disease or pests)",
		Prevention: "Maintain steady, consistent watering (avoid drought stress followed by heavy watering); use mulch to regulate soil moisture; ensure soil has adequate calcium; avoid excessive nitrogen fertilizer; maintain soil pH between 6.0-6.8.",
	},
	string(labels.TagYellowLeafCurlVirus): {
		Cause:      "Viral infection (Begomovirus).",
		Effect:     "Stunted growth, leaves curl upward, significant yield loss.",
		Pest:       "Whiteflies (Bemisia tabaci)",
		Prevention: "Control whitefly populations; use yellow sticky traps.",
	},
}

// Leaf is the knowledge base consulted for leaf model detections.
var Leaf = Base{
	string(labels.TagHealthy): {
		Cause:      "Optimal care, proper nutrients, and environment.",
		Effect:     "Robust growth, high photosynthesis, and maximum yield.",
		Pest:       "None",
		Prevention: "Continue current care and monitoring.",
	},
	string(labels.TagSpiderMites): {
		Cause:      "Infestation by microscopic arachnids in dry, hot weather.",
		Effect:     "Yellow speckling on leaves, fine silk webbing, leaf drying.",
		Pest:       "Two-Spotted Spider Mites",
		Prevention: "Increase humidity; use neem oil or predatory mites.",
	},
	string(labels.TagEarlyBlight): {
		Cause:      "Fungus (Alternaria solani).",
		Effect:     "Target-like brown spots on older leaves; premature leaf drop.",
		Pest:       "None (Fungal Spores)",
		Prevention: "Improve airflow; avoid overhead watering; use copper fungicide.",
	},
	string(labels.TagLateBlight): {
		Cause:      "Oomycete (Phytophthora infestans).",
		Effect:     "Dark, water-soaked patches; can kill a plant in days.",
		Pest:       "None (Fungal-like Pathogen)",
		Prevention: "Destroy infected plants; ensure good drainage.",
	},
	string(labels.TagMosaicVirus): {
		Cause:      "Viral infection spread via contact.",
		Effect:     "Mottled green/yellow patterns; distorted 'fern-like' leaves.",
		Pest:       "Aphids / Human Contact (Tools/Smoking)",
		Prevention: "Disinfect tools; wash hands; remove infected plants.",
	},
	string(labels.TagYellowLeafCurlVirus): {
		Cause:      "Viral infection transmitted by whiteflies.",
		Effect:     "Severe leaf curling and yellowing of leaf margins; stunted growth.",
		Pest:       "Whiteflies (Bemisia tabaci)",
		Prevention: "Control whiteflies with insecticides; use resistant varieties; remove infected plants.",
	},
	string(labels.TagSeptoriaLeafSpot): {
		Cause:      "Septoria lycopersici fungus.",
		Effect:     "Small, circular spots with grayish centers and dark borders on leaves.",
		Pest:       "Fungal spores spread by splashing water",
		Prevention: "Avoid overhead watering; remove infected lower leaves; apply fungicides.",
	},
	string(labels.TagBacterialSpot): {
		Cause:      "Xanthomonas bacteria.",
		Effect:     "Small, water-soaked spots on leaves that turn brown/black.",
		Pest:       "Bacteria spread by wind and rain",
		Prevention: "Use copper-based fungicides; rotate crops; avoid overhead watering.",
	},
	string(labels.TagTargetSpotLeaf): {
		Cause:      "Fungus (Corynespora cassiicola).",
		Effect:     "Small, circular spots with light brown centers and dark margins (target-like) on leaves.",
		Pest:       "Fungal spores spread by air and wind.",
		Prevention: "Improve air circulation; avoid overhead watering; apply appropriate fungicides.",
	},
}

// ForSource selects the knowledge base matching a detection source.
func ForSource(source string) Base {
	if source == "fruit" {
		return Fruit
	}
	return Leaf
}
