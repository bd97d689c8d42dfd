package errors

import (
	"fmt"
	"strings"
)

// SuggestFieldID suggests the closest declared field identifier for an
// unknown reference. Field identifiers are long (e.g. "01125_Has_A_Contractual_Maturity_Date"),
// so the edit-distance cutoff scales with the identifier length.
func SuggestFieldID(unknown string, known []string) string {
	if len(known) == 0 {
		return ""
	}

	best, dist := closest(unknown, known)
	if dist <= max(4, len(unknown)/4) {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}

	// Identifiers share a numeric prefix with their neighbours; fall back on it.
	if prefix, _, ok := strings.Cut(unknown, "_"); ok && prefix != "" {
		for _, id := range known {
			if strings.HasPrefix(id, prefix+"_") {
				return fmt.Sprintf("Did you mean '%s'?", id)
			}
		}
	}
	return ""
}

// SuggestKind suggests a valid field type when an unknown type is declared.
func SuggestKind(unknown string, validKinds []string) string {
	if len(validKinds) == 0 {
		return ""
	}

	best, dist := closest(unknown, validKinds)
	if dist < 4 {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return fmt.Sprintf("Valid types: %s", strings.Join(validKinds, ", "))
}

// SuggestOperator suggests a valid trigger operator.
func SuggestOperator(unknown string, validOperators []string) string {
	best, dist := closest(unknown, validOperators)
	if dist < 3 {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return fmt.Sprintf("Valid operators: %s", strings.Join(validOperators, ", "))
}

// SuggestMissingField suggests adding a required key.
func SuggestMissingField(key string, exampleValue string) string {
	if exampleValue != "" {
		return fmt.Sprintf("Add '%s: %s'", key, exampleValue)
	}
	return fmt.Sprintf("Add a '%s' key", key)
}

func closest(s string, candidates []string) (string, int) {
	minDistance := -1
	var bestMatch string
	for _, c := range candidates {
		d := levenshteinDistance(s, c)
		if minDistance < 0 || d < minDistance {
			minDistance = d
			bestMatch = c
		}
	}
	return bestMatch, minDistance
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}
	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}

// SuggestKey suggests a valid mapping key when an unknown key is used in a
// schema file.
func SuggestKey(unknown string, validKeys []string) string {
	if len(validKeys) == 0 {
		return ""
	}

	best, dist := closest(unknown, validKeys)
	if dist < 3 {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return fmt.Sprintf("Valid keys: %s", strings.Join(validKeys, ", "))
}
