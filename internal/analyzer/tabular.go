package analyzer

import (
	"strconv"
	"strings"

	"chat-rag/internal/filestore"
	"chat-rag/internal/models"
)

const maxSampleMatches = 5

var (
	stateColumnWords      = []string{"state", "status", "condition", "health"}
	identifierColumnWords = []string{"name", "device", "host", "id", "identifier"}
	downVocabulary        = []string{"down", "idle", "inactive", "offline", "disconnect", "failed"}
)

// analyzeSheets scores tabular content additively: +2 per matching column
// name, +1 per matching row per (term, column) pair, +5 when the intelligent
// filter narrows the rows down.
func analyzeSheets(sheets []filestore.Sheet, terms []string, question string) (models.FoundData, int) {
	found := models.FoundData{}
	score := 0

	for _, sheet := range sheets {
		found.TotalRows += len(sheet.Rows)
		if len(found.Columns) == 0 {
			found.Columns = sheet.Header
		}

		// column-name matches
		for _, col := range sheet.Header {
			colLower := strings.ToLower(col)
			for _, term := range terms {
				if strings.Contains(colLower, strings.ToLower(term)) {
					found.MatchingColumns = append(found.MatchingColumns, col)
					score += 2
					break
				}
			}
		}

		// cell-content matches
		for _, term := range terms {
			termLower := strings.ToLower(term)
			for colIdx, col := range sheet.Header {
				var matching []map[string]string
				count := 0
				for _, row := range sheet.Rows {
					if colIdx >= len(row) {
						continue
					}
					if strings.Contains(strings.ToLower(row[colIdx]), termLower) {
						count++
						if len(matching) < maxSampleMatches {
							matching = append(matching, rowRecord(sheet.Header, row))
						}
					}
				}
				if count > 0 {
					found.MatchingData = append(found.MatchingData, models.DataMatch{
						SearchTerm: term,
						Column:     col,
						Matches:    count,
						SampleRows: matching,
					})
					score += count
				}
			}
		}

		// intelligent filter, only when it narrows the answer
		filtered := applyIntelligentFilter(sheet, question, terms)
		if len(filtered) > 0 && len(filtered) < len(sheet.Rows) {
			found.FilteredRows = append(found.FilteredRows, filtered...)
			found.FilteredCount += len(filtered)
			score += 5
		}
	}

	return found, score
}

// applyIntelligentFilter narrows rows by question shape: down-like state
// filtering, identifier listing for which/what questions, and group-by
// counting for how-many questions.
func applyIntelligentFilter(sheet filestore.Sheet, question string, terms []string) []map[string]string {
	questionLower := strings.ToLower(question)

	if col := findColumn(sheet.Header, stateColumnWords); col >= 0 && hasAny(terms, "down", "failed") {
		var rows []map[string]string
		for _, row := range sheet.Rows {
			if col < len(row) && containsAny(strings.ToLower(row[col]), downVocabulary) {
				rows = append(rows, rowRecord(sheet.Header, row))
			}
		}
		if len(rows) > 0 {
			return rows
		}
	}

	if strings.Contains(questionLower, "which") || strings.Contains(questionLower, "what") {
		if col := findColumn(sheet.Header, identifierColumnWords); col >= 0 {
			var rows []map[string]string
			for _, row := range sheet.Rows {
				if col < len(row) && strings.TrimSpace(row[col]) != "" {
					rows = append(rows, rowRecord(sheet.Header, row))
				}
			}
			return rows
		}
	}

	if strings.Contains(questionLower, "how many") {
		if col := findTermColumn(sheet.Header, terms); col >= 0 {
			counts := make(map[string]int)
			var order []string
			for _, row := range sheet.Rows {
				if col >= len(row) {
					continue
				}
				if _, ok := counts[row[col]]; !ok {
					order = append(order, row[col])
				}
				counts[row[col]]++
			}
			rows := make([]map[string]string, 0, len(order))
			for _, value := range order {
				rows = append(rows, map[string]string{
					sheet.Header[col]: value,
					"count":           strconv.Itoa(counts[value]),
				})
			}
			return rows
		}
	}

	return nil
}

func findColumn(header []string, words []string) int {
	for i, col := range header {
		colLower := strings.ToLower(col)
		for _, word := range words {
			if strings.Contains(colLower, word) {
				return i
			}
		}
	}
	return -1
}

func findTermColumn(header []string, terms []string) int {
	for i, col := range header {
		colLower := strings.ToLower(col)
		for _, term := range terms {
			if strings.Contains(colLower, strings.ToLower(term)) {
				return i
			}
		}
	}
	return -1
}

func hasAny(terms []string, wanted ...string) bool {
	for _, term := range terms {
		for _, w := range wanted {
			if term == w {
				return true
			}
		}
	}
	return false
}

func containsAny(value string, words []string) bool {
	for _, word := range words {
		if strings.Contains(value, word) {
			return true
		}
	}
	return false
}

func rowRecord(header []string, row []string) map[string]string {
	record := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(row) {
			record[col] = row[i]
		} else {
			record[col] = ""
		}
	}
	return record
}
