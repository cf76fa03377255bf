// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "strings"

// bodyRegions maps coarse body regions to the vocabulary that identifies
// their meshes. Used as a low-confidence tier when knowledge-base matching
// finds nothing.
var bodyRegions = map[string][]string{
	"foot": {"foot", "toe", "digit", "metatarsal", "tarsal", "plantar", "calcaneus",
		"hallux", "phalanx", "phalanges", "interossei", "lumbrical"},
	"ankle":    {"ankle", "talus", "calcaneus", "fibular", "retinaculum", "malleolus"},
	"leg":      {"leg", "tibia", "fibula", "calf", "shin", "gastrocnemius", "soleus"},
	"knee":     {"knee", "patella", "patellar", "meniscus", "cruciate"},
	"thigh":    {"thigh", "femur", "femoral", "quadriceps", "hamstring"},
	"hip":      {"hip", "pelvis", "pelvic", "ilium", "iliac", "ischium", "pubis"},
	"back":     {"back", "spine", "spinal", "vertebra", "vertebral", "lumbar", "thoracic"},
	"shoulder": {"shoulder", "scapula", "clavicle", "acromial", "deltoid"},
	"arm":      {"arm", "humerus", "humeral", "biceps", "triceps"},
	"elbow":    {"elbow", "olecranon", "ulnar", "radial"},
	"forearm":  {"forearm", "ulna", "radius", "pronator", "supinator"},
	"wrist":    {"wrist", "carpal", "carpus"},
	"hand":     {"hand", "metacarpal", "palm", "palmar", "finger", "thumb", "pollicis"},
	"neck":     {"neck", "cervical", "throat", "larynx", "pharynx"},
	"head":     {"head", "skull", "cranium", "cranial", "face", "facial"},
}

// regionExclusions keeps foot and hand vocabulary from bleeding into each
// other; mesh names like "Flexor digitorum" appear in both limbs.
var regionExclusions = map[string][]string{
	"foot":  {"hand", "palmar", "pollicis", "carpal", "carpus", "metacarpal"},
	"ankle": {"hand", "palmar", "pollicis", "carpal", "carpus", "metacarpal"},
	"hand":  {"foot", "plantar", "hallucis", "tarsal", "tarsus", "metatarsal"},
	"wrist": {"foot", "plantar", "hallucis", "tarsal", "tarsus", "metatarsal"},
}

// defaultPatterns is the last-resort vocabulary per region, wider than the
// region lexicon. Matches from these score below region matches.
var defaultPatterns = map[string][]string{
	"foot": {"foot", "plantar", "metatarsal", "tarsal", "digit", "toe", "phalanges",
		"interossei", "lumbrical", "flexor", "extensor", "abductor", "adductor",
		"opponens", "digiti", "digitorum"},
	"ankle":    {"ankle", "talus", "calcaneus", "fibular", "retinaculum"},
	"leg":      {"leg", "tibia", "fibula", "calf", "shin", "gastrocnemius", "soleus"},
	"knee":     {"knee", "patella", "meniscus", "cruciate", "ligament"},
	"thigh":    {"thigh", "femur", "quadricep", "hamstring", "femoral"},
	"hip":      {"hip", "pelvis", "iliac", "gluteal", "gluteus"},
	"back":     {"back", "spine", "vertebra", "lumbar", "thoracic", "cervical"},
	"shoulder": {"shoulder", "deltoid", "rotator", "cuff", "scapula", "clavicle"},
	"arm":      {"arm", "humerus", "bicep", "tricep", "brachial", "brachii"},
	"elbow":    {"elbow", "olecranon", "ulnar"},
	"forearm":  {"forearm", "radius", "ulna", "radial"},
	"wrist":    {"wrist", "carpal", "carpus"},
	"hand":     {"hand", "finger", "thumb", "metacarpal", "phalanx", "palmar"},
	"neck":     {"neck", "cervical", "throat", "larynx"},
	"head":     {"head", "skull", "cranium", "face", "facial"},
	"chest":    {"chest", "thorax", "rib", "pectoral", "sternum"},
	"abdomen":  {"abdomen", "abdominal", "stomach", "belly", "core"},
}

// regionOrder fixes iteration order over bodyRegions so region resolution
// is deterministic when a phrase mentions several regions.
var regionOrder = []string{
	"foot", "ankle", "leg", "knee", "thigh", "hip", "back", "shoulder",
	"arm", "elbow", "forearm", "wrist", "hand", "neck", "head",
}

// regionFor identifies the body region a cleaned phrase belongs to, or ""
// when none of the region vocabulary appears in it.
func regionFor(phrase string) string {
	for _, region := range regionOrder {
		if phrase == region {
			return region
		}
		for _, term := range bodyRegions[region] {
			if strings.Contains(phrase, term) {
				return region
			}
		}
	}
	return ""
}

// patternsFor returns the last-resort patterns for a phrase, trying an
// exact region name first and then partial region-name containment.
func patternsFor(phrase string) []string {
	if patterns, ok := defaultPatterns[phrase]; ok {
		return patterns
	}
	for _, region := range append(append([]string{}, regionOrder...), "chest", "abdomen") {
		if strings.Contains(phrase, region) || strings.Contains(region, phrase) {
			return defaultPatterns[region]
		}
	}
	return nil
}
