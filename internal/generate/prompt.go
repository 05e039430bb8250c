package generate

import "strings"

// maxPromptContent bounds how much post body goes into the prompt.
const maxPromptContent = 500

const systemPrompt = "You are a professional commenting on LinkedIn posts. " +
	"Be engaging, relevant, and authentic. Keep comments conversational and not too formal."

// BuildPrompt fills the comment template. The post content is capped so one
// long post can't blow up token usage; an empty body gets a placeholder so
// the model still produces something sensible.
func BuildPrompt(template, authorName, postContent string) string {
	if postContent == "" {
		postContent = "No content available"
	}
	if runes := []rune(postContent); len(runes) > maxPromptContent {
		postContent = string(runes[:maxPromptContent])
	}

	prompt := strings.ReplaceAll(template, "{author_name}", authorName)
	return strings.ReplaceAll(prompt, "{post_content}", postContent)
}

// CleanComment normalizes model output: trims whitespace and strips one pair
// of wrapping quotes if the model quoted the whole comment.
func CleanComment(comment string) string {
	comment = strings.TrimSpace(comment)
	if len(comment) >= 2 && strings.HasPrefix(comment, `"`) && strings.HasSuffix(comment, `"`) {
		comment = comment[1 : len(comment)-1]
	}
	return strings.TrimSpace(comment)
}

// Fallback is the generic comment used when generation fails.
func Fallback(authorName string) string {
	return "Thanks for sharing this valuable content, " + authorName + "! Really appreciate the insights."
}
