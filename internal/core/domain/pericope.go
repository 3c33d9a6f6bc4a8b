package domain

import "regexp"

// pericopePattern matches the shortest {...}, [...] or (...) run.
var pericopePattern = regexp.MustCompile(`\{.*?\}|\[.*?\]|\(.*?\)`)

// Token is a run of item text. Marker tokens are pericope headings,
// cross references or editorial notes embedded in the item.
type Token struct {
	Text   string
	Marker bool
}

// Tokenize splits item text into plain and marker tokens in order.
// Empty runs are omitted.
func Tokenize(text string) []Token {
	var tokens []Token
	last := 0
	for _, loc := range pericopePattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			tokens = append(tokens, Token{Text: text[last:loc[0]]})
		}
		tokens = append(tokens, Token{Text: text[loc[0]:loc[1]], Marker: true})
		last = loc[1]
	}
	if last < len(text) {
		tokens = append(tokens, Token{Text: text[last:]})
	}
	return tokens
}
