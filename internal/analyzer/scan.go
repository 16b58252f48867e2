package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"chat-rag/internal/models"
)

const (
	valuePreviewLimit = 200
	textContextWindow = 100
)

// analyzeJSON walks the tree recursively. Key-name matches score +2, value
// substring matches +1; each match carries a dotted/bracketed path.
func analyzeJSON(tree any, terms []string) (models.FoundData, int) {
	found := models.FoundData{}
	score := 0

	var walk func(obj any, path string)
	walk = func(obj any, path string) {
		switch node := obj.(type) {
		case map[string]any:
			for key, value := range node {
				currentPath := key
				if path != "" {
					currentPath = path + "." + key
				}
				keyLower := strings.ToLower(key)
				for _, term := range terms {
					if strings.Contains(keyLower, strings.ToLower(term)) {
						found.JSONMatches = append(found.JSONMatches, models.JSONMatch{
							Path:       currentPath,
							Kind:       "key_match",
							Key:        key,
							Value:      valuePreview(value),
							SearchTerm: term,
						})
						score += 2
					}
				}
				walk(value, currentPath)
			}
		case []any:
			for i, item := range node {
				walk(item, fmt.Sprintf("%s[%d]", path, i))
			}
		default:
			valueLower := strings.ToLower(fmt.Sprint(node))
			for _, term := range terms {
				if strings.Contains(valueLower, strings.ToLower(term)) {
					found.JSONMatches = append(found.JSONMatches, models.JSONMatch{
						Path:       path,
						Kind:       "value_match",
						Value:      valuePreview(node),
						SearchTerm: term,
					})
					score++
				}
			}
		}
	}
	walk(tree, "")

	return found, score
}

// analyzeText scans for term occurrences and keeps a context window around
// each one.
func analyzeText(content string, terms []string) (models.FoundData, int) {
	found := models.FoundData{}
	score := 0

	contentLower := strings.ToLower(content)
	for _, term := range terms {
		termLower := strings.ToLower(term)
		start := 0
		for {
			pos := strings.Index(contentLower[start:], termLower)
			if pos < 0 {
				break
			}
			pos += start

			ctxStart := max(0, pos-textContextWindow)
			ctxEnd := min(len(content), pos+len(term)+textContextWindow)
			found.TextMatches = append(found.TextMatches, models.TextMatch{
				SearchTerm: term,
				Position:   pos,
				Context:    content[ctxStart:ctxEnd],
			})
			score++
			start = pos + 1
		}
	}

	return found, score
}

func valuePreview(value any) string {
	s := fmt.Sprint(value)
	if len(s) <= valuePreviewLimit {
		return s
	}
	cut := valuePreviewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
