package judge

import "strings"

// DefaultLanguageID is used for any language slug the judge mapping does not know.
const DefaultLanguageID = 63

var languageIDs = map[string]int{
	"javascript": 63,
	"java":       62,
	"cpp":        54,
	"python":     71,
}

// LanguageID maps an editor language slug to its Judge0 language id.
func LanguageID(slug string) int {
	if id, ok := languageIDs[strings.ToLower(strings.TrimSpace(slug))]; ok {
		return id
	}
	return DefaultLanguageID
}

// Languages lists the supported slugs.
func Languages() []string {
	return []string{"javascript", "java", "cpp", "python"}
}

var statusLabels = map[int]string{
	1:  "In Queue",
	2:  "Processing",
	3:  "Accepted",
	4:  "Runtime Error",
	5:  "Time Limit Exceeded",
	6:  "Compilation Error",
	7:  "Wrong Answer",
	8:  "Memory Limit Exceeded",
	9:  "Output Limit Exceeded",
	10: "Internal Error",
}

func StatusLabel(id int) string {
	if label, ok := statusLabels[id]; ok {
		return label
	}
	return "Unknown status"
}
