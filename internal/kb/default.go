// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

// Default returns the built-in anatomical knowledge set, used when no
// knowledge document is configured. It covers the structures that show up
// most often in injury reports; deployments with richer models ship their
// own document and expand from there.
func Default() *Base {
	return &Base{
		synonyms: map[string][]string{
			"biceps":        {"biceps brachii", "arm muscle", "upper arm"},
			"triceps":       {"triceps brachii", "back of arm"},
			"deltoid":       {"shoulder muscle", "delt"},
			"quadriceps":    {"quads", "thigh muscle", "quadriceps femoris"},
			"hamstring":     {"hamstrings", "posterior thigh", "back of thigh"},
			"gastrocnemius": {"calf muscle", "gastroc", "calf"},
			"soleus":        {"deep calf muscle"},
			"gluteus":       {"glutes", "buttock", "gluteal"},
			"pectoralis":    {"pecs", "chest muscle", "pectoral"},
			"trapezius":     {"traps", "upper back"},
			"latissimus":    {"lats", "latissimus dorsi"},
			"abdominals":    {"abs", "abdominal muscles", "core", "rectus abdominis"},
			"achilles":      {"achilles tendon", "heel cord", "calcaneal tendon"},
			"patella":       {"kneecap", "knee cap"},
			"groin":         {"adductor", "inner thigh", "adductors"},
			"rotator cuff":  {"shoulder cuff", "supraspinatus", "infraspinatus"},
		},
		relationships: map[string][]string{
			"biceps":        {"brachialis", "brachioradialis", "humerus"},
			"triceps":       {"anconeus", "olecranon", "humerus"},
			"deltoid":       {"clavicle", "acromion", "scapula"},
			"quadriceps":    {"vastus lateralis", "vastus medialis", "vastus intermedius", "rectus femoris", "patella"},
			"hamstring":     {"biceps femoris", "semitendinosus", "semimembranosus", "ischial tuberosity"},
			"gastrocnemius": {"soleus", "achilles", "plantaris", "tibia"},
			"soleus":        {"gastrocnemius", "achilles", "tibia", "fibula"},
			"gluteus":       {"gluteus maximus", "gluteus medius", "gluteus minimus", "piriformis", "ilium"},
			"pectoralis":    {"pectoralis major", "pectoralis minor", "sternum", "clavicle"},
			"trapezius":     {"rhomboid", "levator scapulae", "scapula"},
			"latissimus":    {"teres major", "thoracolumbar fascia", "humerus"},
			"abdominals":    {"obliques", "transversus abdominis", "linea alba"},
			"achilles":      {"gastrocnemius", "soleus", "calcaneus"},
			"patella":       {"quadriceps", "patellar ligament", "femur"},
			"groin":         {"adductor longus", "adductor magnus", "gracilis", "pectineus", "pubis"},
			"rotator cuff":  {"supraspinatus", "infraspinatus", "teres minor", "subscapularis", "scapula"},
		},
	}
}
