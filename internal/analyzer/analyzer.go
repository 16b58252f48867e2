package analyzer

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/filestore"
	"chat-rag/internal/models"
)

// Analyzer is the keyword/pattern fallback used when semantic retrieval is
// unavailable or returns nothing.
type Analyzer struct {
	files filestore.Store
}

func New(files filestore.Store) *Analyzer {
	return &Analyzer{files: files}
}

// Report is the aggregated outcome of analyzing one question against a set
// of attached files, structured for direct use as prompt context.
type Report struct {
	Question      string
	SearchTerms   []string
	FilesAnalyzed int
	Analyses      []models.FileAnalysis
	Comprehensive string
}

// AnalyzeQuestion runs the per-file heuristic analysis for every attached
// file. A file that cannot be read scores zero and is reported in its
// summary; it never blocks sibling files.
func (a *Analyzer) AnalyzeQuestion(question string, files []models.FileRef) Report {
	terms := ExtractSearchTerms(question)
	log.Debug().Strs("terms", terms).Msgf("Analyzing question: %s", question)

	report := Report{Question: question, SearchTerms: terms}
	for _, file := range files {
		report.Analyses = append(report.Analyses, a.analyzeFile(file, terms, question))
		report.FilesAnalyzed++
	}
	report.Comprehensive = buildComprehensiveAnalysis(question, terms, report.Analyses)
	return report
}

func (a *Analyzer) analyzeFile(file models.FileRef, terms []string, question string) models.FileAnalysis {
	analysis := models.FileAnalysis{FileName: file.Name, FileType: file.Type}

	content, err := a.files.Load(file.Path, file.Type)
	if err != nil {
		analysis.Summary = fmt.Sprintf("Error analyzing file: %v", err)
		return analysis
	}

	switch {
	case len(content.Sheets) > 0:
		analysis.FoundData, analysis.RelevanceScore = analyzeSheets(content.Sheets, terms, question)
		analysis.Summary = tabularSummary(analysis.FoundData, analysis.RelevanceScore)
	case content.JSON != nil:
		analysis.FoundData, analysis.RelevanceScore = analyzeJSON(content.JSON, terms)
		if n := len(analysis.FoundData.JSONMatches); n > 0 {
			analysis.Summary = fmt.Sprintf("JSON file with %d matches", n)
		} else {
			analysis.Summary = "JSON file with no matches"
		}
	default:
		analysis.FoundData, analysis.RelevanceScore = analyzeText(content.Text, terms)
		if n := len(analysis.FoundData.TextMatches); n > 0 {
			analysis.Summary = fmt.Sprintf("Text file with %d matches", n)
		} else {
			analysis.Summary = "Text file with no matches"
		}
	}
	return analysis
}

func tabularSummary(found models.FoundData, score int) string {
	if score == 0 {
		return fmt.Sprintf("Tabular file with %d rows, no relevant data found", found.TotalRows)
	}

	parts := []string{fmt.Sprintf("Tabular file with %d rows", found.TotalRows)}
	if len(found.MatchingColumns) > 0 {
		parts = append(parts, fmt.Sprintf("relevant columns: %s", strings.Join(found.MatchingColumns, ", ")))
	}
	if len(found.MatchingData) > 0 {
		total := 0
		for _, match := range found.MatchingData {
			total += match.Matches
		}
		parts = append(parts, fmt.Sprintf("%d data matches found", total))
	}
	if found.FilteredCount > 0 {
		parts = append(parts, fmt.Sprintf("%d filtered results", found.FilteredCount))
	}
	return strings.Join(parts, ", ")
}
