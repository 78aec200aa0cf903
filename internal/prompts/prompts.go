// Package prompts holds the instruction templates sent to the
// text-completion collaborator.
package prompts

import (
	"fmt"
	"strings"
)

// MaxPromptLength is the hard cap applied to the synthesized image prompt.
const MaxPromptLength = 2000

const keywordTemplate = `Extract key adjectives, emotions, and descriptive words from this response: "%s". Return only the keywords separated by commas.`

const synthesisTemplate = `Create a detailed prompt for an image generator based on these keywords: %s. The prompt should be descriptive and artistic, but keep it under 2000 characters.`

// KeywordExtraction builds the per-answer keyword extraction instruction.
func KeywordExtraction(answer string) string {
	return fmt.Sprintf(keywordTemplate, answer)
}

// PromptSynthesis builds the final instruction from the accumulated keywords.
func PromptSynthesis(keywords []string) string {
	return fmt.Sprintf(synthesisTemplate, strings.Join(keywords, ", "))
}

// Truncate enforces MaxPromptLength. The cut is byte-exact with no
// word-boundary awareness; that is the documented contract.
func Truncate(prompt string) string {
	if len(prompt) > MaxPromptLength {
		return prompt[:MaxPromptLength]
	}
	return prompt
}
