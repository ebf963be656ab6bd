package advisor

import (
	"regexp"
	"strings"
)

const overviewLines = 4

var (
	listItemPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	markupPattern   = regexp.MustCompile(`[*#_]+`)
)

// scrapeAnalysis pulls the persona, summary lines and recommendations out of
// a free-form analysis. Anything it cannot find is left empty.
func scrapeAnalysis(text string) *Analysis {
	a := &Analysis{Text: text}

	lower := strings.ToLower(text)
	first := -1
	for _, p := range Personas {
		if i := strings.Index(lower, strings.ToLower(p)); i >= 0 && (first < 0 || i < first) {
			first = i
			a.Persona = p
		}
	}

	var preamble []string
	section := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if heading := sectionOf(line); heading != "" {
			section = heading
			continue
		}

		switch section {
		case "":
			if len(preamble) < overviewLines {
				preamble = append(preamble, plainLine(line))
			}
		case "summary":
			if len(a.Overview) < overviewLines {
				a.Overview = append(a.Overview, plainLine(line))
			}
		case "recommendations":
			if listItemPattern.MatchString(line) && len(a.Recommendations) < 3 {
				a.Recommendations = append(a.Recommendations, plainLine(line))
			}
		}
	}
	if len(a.Overview) == 0 {
		a.Overview = preamble
	}
	return a
}

// sectionOf recognises a heading line and names its section.
func sectionOf(line string) string {
	plain := strings.ToLower(plainLine(line))
	if len(plain) > 60 || (!strings.HasSuffix(plain, ":") && !isMarkedHeading(line)) {
		return ""
	}
	switch {
	case strings.Contains(plain, "summary"):
		return "summary"
	case strings.Contains(plain, "persona"):
		return "persona"
	case strings.Contains(plain, "recommendation"):
		return "recommendations"
	case strings.Contains(plain, "lifestyle"):
		return "lifestyle"
	}
	return ""
}

func isMarkedHeading(line string) bool {
	line = listItemPattern.ReplaceAllString(line, "")
	return strings.HasPrefix(line, "#") || (strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"))
}

// plainLine strips list markers and markdown emphasis.
func plainLine(line string) string {
	line = listItemPattern.ReplaceAllString(line, "")
	line = markupPattern.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}
