package scene

import "strings"

// Preset is a ready-made generation prompt for a common setting.
type Preset struct {
	Name           string
	Prompt         string
	NegativePrompt string
}

const defaultNegativePrompt = "people, faces, blur, distortion, text, watermark"

var presets = map[string]Preset{
	"office": {
		Name:           "office",
		Prompt:         "Modern corporate office meeting room, two empty chairs facing each other, professional lighting, wooden conference table, glass walls, city view background, photorealistic, high quality, 16:9 aspect ratio",
		NegativePrompt: defaultNegativePrompt,
	},
	"cafe": {
		Name:           "cafe",
		Prompt:         "Cozy coffee shop interior, warm lighting, two comfortable armchairs, small round table between them, bookshelves in background, plants, modern cafe aesthetic, photorealistic, 16:9 aspect ratio",
		NegativePrompt: defaultNegativePrompt,
	},
	"park": {
		Name:           "park",
		Prompt:         "Beautiful city park on sunny day, park bench for two people, green trees, walking path, blue sky with clouds, natural lighting, photorealistic, 16:9 aspect ratio",
		NegativePrompt: defaultNegativePrompt,
	},
	"studio": {
		Name:           "studio",
		Prompt:         "Professional podcast studio, modern studio setup, two microphones on stands, acoustic panels on walls, soft professional lighting, minimalist design, photorealistic, 16:9 aspect ratio",
		NegativePrompt: defaultNegativePrompt,
	},
	"living_room": {
		Name:           "living_room",
		Prompt:         "Modern living room interior, comfortable sofa, ambient lighting, large windows, plants, minimalist furniture, warm atmosphere, photorealistic, 16:9 aspect ratio",
		NegativePrompt: defaultNegativePrompt,
	},
}

var presetKeywords = []struct {
	preset   string
	keywords []string
}{
	{"office", []string{"office", "work", "business", "meeting", "corporate"}},
	{"cafe", []string{"coffee", "cafe", "tea", "lunch", "breakfast"}},
	{"park", []string{"park", "outdoor", "nature", "walk", "outside"}},
	{"studio", []string{"podcast", "interview", "studio", "recording"}},
	{"living_room", []string{"home", "living", "casual", "friend"}},
}

// PresetFor selects the scene preset matching a scenario description
// by keyword lookup. Scenarios matching nothing get the studio preset.
func PresetFor(scenario string) Preset {
	lower := strings.ToLower(scenario)
	for _, entry := range presetKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return presets[entry.preset]
			}
		}
	}
	return presets["studio"]
}
