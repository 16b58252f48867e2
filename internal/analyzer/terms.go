package analyzer

import (
	"regexp"
	"strings"
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

var stopWords = map[string]struct{}{
	"what": {}, "is": {}, "the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "up": {}, "about": {}, "into": {}, "through": {}, "during": {},
	"before": {}, "after": {}, "above": {}, "below": {}, "between": {}, "among": {},
	"within": {}, "without": {}, "against": {}, "show": {}, "tell": {}, "give": {},
	"find": {}, "get": {}, "make": {}, "do": {}, "have": {}, "has": {}, "had": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "can": {}, "may": {},
	"might": {}, "must": {}, "shall": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
}

// ExtractSearchTerms pulls meaningful terms out of a question: lower-cased,
// punctuation stripped, stop words and short tokens dropped, then augmented
// based on the question's shape.
func ExtractSearchTerms(question string) []string {
	clean := nonWordPattern.ReplaceAllString(strings.ToLower(question), " ")

	var terms []string
	seen := make(map[string]struct{})
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, word := range strings.Fields(clean) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		add(word)
	}

	questionLower := strings.ToLower(question)
	if strings.Contains(questionLower, "which") || strings.Contains(questionLower, "what") {
		add("list")
		add("show")
		add("identify")
	}
	if strings.Contains(questionLower, "how many") {
		add("count")
		add("number")
		add("total")
	}
	if strings.Contains(questionLower, "down") {
		add("failed")
		add("inactive")
		add("offline")
	}

	return terms
}
