package dialogue

import "fmt"

const promptTemplate = `You are a scriptwriter creating a natural conversation between two people.

SCENARIO: %s

CHARACTERS:
- Speaker A: %s
- Speaker B: %s

REQUIREMENTS:
- Create a natural, engaging conversation
- Target duration: %d seconds (approximately %d exchanges)
- Include varied emotions and reactions
- Keep each line concise (under 30 words)
- Make it feel like a real podcast/interview

OUTPUT FORMAT (strict JSON):
{
    "scene_description": "Brief description of the setting",
    "lines": [
        {"speaker": "A", "text": "dialogue text", "emotion": "friendly"},
        {"speaker": "B", "text": "response text", "emotion": "curious"}
    ]
}

VALID EMOTIONS: friendly, curious, excited, thoughtful, amused, serious, surprised, warm, neutral

Generate the conversation now:
`

// exchangeCount estimates how many exchanges fit a target duration,
// at roughly eight seconds per exchange with a floor of four.
func exchangeCount(targetSeconds int) int {
	n := targetSeconds / 8
	if n < 4 {
		return 4
	}
	return n
}

func buildPrompt(scenario, speakerAName, speakerBName string, targetSeconds int) string {
	return fmt.Sprintf(promptTemplate,
		scenario,
		speakerAName,
		speakerBName,
		targetSeconds,
		exchangeCount(targetSeconds),
	)
}
