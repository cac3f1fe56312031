package questions

import (
	"fmt"
	"strings"
	"unicode/utf8"

	booksdomain "book-club-go/internal/domain/books"
)

// Catalog holds the static prompt and fallback data handed to the generator.
type Catalog struct {
	SystemPrompt  string
	UserPrompt    string
	Fallback      map[string][]string
	LanguageNames map[string]string
	// DefaultLanguage selects the fallback list for unknown languages.
	DefaultLanguage string
}

const systemPrompt = `You are creating discussion questions for a book club of friends who read a lot.
They want real conversation, not a literature seminar.

Your questions should:
- Sound like something a friend would ask over drinks
- Be SHORT: one sentence, max 12 words
- Go beyond "what did you think" but stay grounded
- Connect to real life, feelings, or experiences
- Be specific to the book when possible

Tone: Curious, direct, a bit cheeky. Like a smart friend who's genuinely interested.

Avoid: Academic language, philosophical abstractions, "moral responsibility",
"the human condition", anything that sounds like a thesis question.

Bad example: "How does this affect your view of the author's moral responsibility?"
Good example: "Could you be friends with the main character?"

IMPORTANT: Write in %s.
Respond ONLY with questions, one per line, no numbering.`

const userPrompt = `Create %d discussion questions for the book "%s" by %s.

%s

The questions should encourage meaningful discussion and reflection.`

func DefaultCatalog() Catalog {
	return Catalog{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Fallback: map[string][]string{
			"sv": {
				"Skulle du vilja hänga med huvudpersonen?",
				"Vilken scen sitter kvar i huvudet?",
				"Påminde boken dig om något i ditt eget liv?",
			},
			"en": {
				"Would you want to hang out with the main character?",
				"Which scene is stuck in your head?",
				"Did the book remind you of anything in your own life?",
			},
		},
		LanguageNames: map[string]string{
			"sv": "Swedish",
			"en": "English",
			"de": "German",
			"fr": "French",
			"es": "Spanish",
			"no": "Norwegian",
			"da": "Danish",
			"fi": "Finnish",
		},
		DefaultLanguage: "en",
	}
}

func (c Catalog) languageName(code string) string {
	if name, ok := c.LanguageNames[code]; ok {
		return name
	}
	return "English"
}

// FallbackFor returns up to count static questions for the language.
func (c Catalog) FallbackFor(language string, count int) []string {
	list, ok := c.Fallback[language]
	if !ok {
		list = c.Fallback[c.DefaultLanguage]
	}
	if count > 0 && len(list) > count {
		list = list[:count]
	}
	return list
}

// Prompt builds the chat messages asking for count questions about book.
func (c Catalog) Prompt(book *booksdomain.Book, language string, count, descriptionLimit int) []Message {
	authors := book.AuthorNames()
	if authors == "" {
		authors = "unknown author"
	}

	description := ""
	if book.Description != nil && strings.TrimSpace(*book.Description) != "" {
		description = "Book description: " + truncate(strings.TrimSpace(*book.Description), descriptionLimit)
	}

	return []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(c.SystemPrompt, c.languageName(language))},
		{Role: RoleUser, Content: strings.TrimSpace(fmt.Sprintf(c.UserPrompt, count, book.Title, authors, description))},
	}
}

func truncate(value string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// ParseQuestions splits a completion into at most count non-empty lines,
// dropping list markers the model adds despite instructions.
func ParseQuestions(response string, count int) []string {
	var result []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result = append(result, line)
		if count > 0 && len(result) == count {
			break
		}
	}
	return result
}
