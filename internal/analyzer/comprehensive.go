package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"chat-rag/internal/models"
)

// buildComprehensiveAnalysis renders the aggregated analysis as a text block
// for the generator. When nothing scored, it states that explicitly and
// names what was searched for, so the downstream answer stays honest.
func buildComprehensiveAnalysis(question string, terms []string, analyses []models.FileAnalysis) string {
	var relevant []models.FileAnalysis
	for _, analysis := range analyses {
		if analysis.RelevanceScore > 0 {
			relevant = append(relevant, analysis)
		}
	}

	if len(relevant) == 0 {
		return strings.TrimSpace(fmt.Sprintf(`
QUESTION: %s
SEARCH TERMS: %s
FILES ANALYZED: %d
RESULT: No relevant data found in any attached files.

The user asked about: %s
We searched for: %s
Files checked: %d files
Conclusion: No matching data found. Please provide a helpful response explaining this and suggest alternatives.`,
			question, strings.Join(terms, ", "), len(analyses),
			question, strings.Join(terms, ", "), len(analyses)))
	}

	parts := []string{
		fmt.Sprintf("QUESTION: %s", question),
		fmt.Sprintf("SEARCH TERMS: %s", strings.Join(terms, ", ")),
		fmt.Sprintf("FILES WITH RELEVANT DATA: %d/%d", len(relevant), len(analyses)),
		"",
		"FOUND DATA:",
	}

	for i, analysis := range relevant {
		parts = append(parts,
			fmt.Sprintf("\n%d. FILE: %s (%s)", i+1, analysis.FileName, analysis.FileType),
			fmt.Sprintf("   RELEVANCE: %d points", analysis.RelevanceScore),
			fmt.Sprintf("   SUMMARY: %s", analysis.Summary),
		)

		found := analysis.FoundData
		if len(found.MatchingColumns) > 0 {
			parts = append(parts, fmt.Sprintf("   MATCHING COLUMNS: %s", strings.Join(found.MatchingColumns, ", ")))
		}
		if len(found.FilteredRows) > 0 {
			parts = append(parts, fmt.Sprintf("   FILTERED RESULTS: %d rows", found.FilteredCount))
			sample := found.FilteredRows
			if len(sample) > 3 {
				sample = sample[:3]
			}
			if serialized, err := json.MarshalIndent(sample, "", "  "); err == nil {
				parts = append(parts, fmt.Sprintf("   SAMPLE DATA: %s", serialized))
			}
		} else if len(found.MatchingData) > 0 {
			parts = append(parts, "   MATCHING DATA:")
			top := found.MatchingData
			if len(top) > 2 {
				top = top[:2]
			}
			for _, match := range top {
				parts = append(parts, fmt.Sprintf("     - %s in column '%s': %d matches",
					match.SearchTerm, match.Column, match.Matches))
			}
		}
		if len(found.JSONMatches) > 0 {
			parts = append(parts, "   JSON MATCHES:")
			top := found.JSONMatches
			if len(top) > 3 {
				top = top[:3]
			}
			for _, match := range top {
				parts = append(parts, fmt.Sprintf("     - %s at %s: %s", match.Kind, match.Path, match.Value))
			}
		}
		if len(found.TextMatches) > 0 {
			parts = append(parts, fmt.Sprintf("   TEXT MATCHES: %d occurrences", len(found.TextMatches)))
		}
	}

	parts = append(parts,
		"",
		"INSTRUCTION: Use this data to provide a comprehensive answer to the user's question. Reference the specific files and data found.",
	)
	return strings.Join(parts, "\n")
}
