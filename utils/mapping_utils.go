package utils

import (
	"strings"

	"troop-fundraiser/models"
)

// MapRankToLabel maps rank codes to their display names
// Input is normalized to lowercase before mapping
func MapRankToLabel(rank models.Rank) string {
	rankLower := strings.ToLower(strings.TrimSpace(string(rank)))

	rankMap := map[string]string{
		"lion":           "Lion",
		"tiger":          "Tiger",
		"wolf":           "Wolf",
		"bear":           "Bear",
		"webelos":        "Webelos",
		"arrow_of_light": "Arrow of Light",
	}

	if label, exists := rankMap[rankLower]; exists {
		return label
	}

	// If not found, return input unchanged
	return string(rank)
}

// MapLabelToRank maps display names and common spellings back to rank codes
// Input is normalized to lowercase before mapping
// Returns "" when the label is unknown
func MapLabelToRank(label string) models.Rank {
	labelLower := strings.ToLower(strings.TrimSpace(label))

	labelMap := map[string]models.Rank{
		"lion":           models.RankLion,
		"lions":          models.RankLion,
		"tiger":          models.RankTiger,
		"tigers":         models.RankTiger,
		"wolf":           models.RankWolf,
		"wolves":         models.RankWolf,
		"bear":           models.RankBear,
		"bears":          models.RankBear,
		"webelos":        models.RankWebelos,
		"webelo":         models.RankWebelos,
		"arrow of light": models.RankArrowOfLight,
		"arrow_of_light": models.RankArrowOfLight,
		"aol":            models.RankArrowOfLight,
	}

	if rank, exists := labelMap[labelLower]; exists {
		return rank
	}
	return ""
}

// ParseList splits a ";"-joined column into trimmed non-empty values.
// Commas are accepted too, since hand-edited sheets mix both.
func ParseList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ';' || r == ',' })
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// JoinList joins values for a ";"-delimited column.
func JoinList(values []string) string {
	return strings.Join(values, ";")
}

// ParseBool reads a sheet boolean: "TRUE"/"FALSE" plus yes/no/1/0.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

// FormatBool writes a sheet boolean.
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
