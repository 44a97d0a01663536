package tts

import (
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// Voice presets by speaking style.
var VoicePresets = map[string]string{
	// Male voices
	"male_professional": "en-US-GuyNeural",
	"male_casual":       "en-US-ChristopherNeural",
	"male_british":      "en-GB-RyanNeural",

	// Female voices
	"female_professional": "en-US-JennyNeural",
	"female_casual":       "en-US-AriaNeural",
	"female_british":      "en-GB-SoniaNeural",
}

// Default speaker pairs per language.
var localeVoices = map[string][2]string{
	"en": {"en-US-GuyNeural", "en-US-JennyNeural"},
	"es": {"es-ES-AlvaroNeural", "es-ES-ElviraNeural"},
	"fr": {"fr-FR-HenriNeural", "fr-FR-DeniseNeural"},
	"de": {"de-DE-ConradNeural", "de-DE-KatjaNeural"},
	"zh": {"zh-CN-YunxiNeural", "zh-CN-XiaoxiaoNeural"},
	"ja": {"ja-JP-KeitaNeural", "ja-JP-NanamiNeural"},
}

// ResolveVoice maps a preset name to its voice identifier; anything
// that is not a known preset is taken as a literal voice id.
func ResolveVoice(nameOrID string) string {
	if id, ok := VoicePresets[nameOrID]; ok {
		return id
	}
	return nameOrID
}

// DefaultVoices picks the speaker A/B voice pair for a scenario by
// detecting its language; unrecognized languages fall back to English.
func DefaultVoices(scenario string) (voiceA, voiceB string) {
	iso := whatlanggo.DetectLang(scenario).Iso6391()

	tag := language.Make(iso)
	base, conf := tag.Base()
	if conf != language.No {
		if pair, ok := localeVoices[base.String()]; ok {
			return pair[0], pair[1]
		}
	}

	pair := localeVoices["en"]
	return pair[0], pair[1]
}
