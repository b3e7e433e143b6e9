package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var (
	percentRegex = regexp.MustCompile(`([0-9]+\.?[0-9]*)\s*%`)
	numberRegex  = regexp.MustCompile(`([0-9]+\.?[0-9]*)`)
	glyphStrip   = strings.NewReplacer(",", "", "$", "", "€", "", "£", "")
)

// ExtractNumber pulls the first numeric value out of free text, after
// stripping thousands separators and currency glyphs. A percentage token
// wins over a bare number so "10% of $50,000" yields 10.
func ExtractNumber(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	text = glyphStrip.Replace(strings.TrimSpace(text))

	if groups := percentRegex.FindStringSubmatch(text); groups != nil {
		n, err := strconv.ParseFloat(groups[1], 64)
		if err == nil {
			return n, true
		}
	}
	if groups := numberRegex.FindStringSubmatch(text); groups != nil {
		n, err := strconv.ParseFloat(groups[1], 64)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// ExtractPercentage pulls a percentage value ("80%" -> 80) out of text,
// failing when no percent sign is present.
func ExtractPercentage(text string) (float64, bool) {
	groups := percentRegex.FindStringSubmatch(text)
	if groups == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func IsPercentage(text string) bool {
	return strings.Contains(text, "%")
}

var dayPatterns = []*regexp.Regexp{
	// a range like "2-3 days" reads as its lower bound
	regexp.MustCompile(`([0-9]+)\s*-\s*[0-9]+\s*days?`),
	regexp.MustCompile(`minimum\s+([0-9]+)\s+(?:trading\s+)?days?`),
	regexp.MustCompile(`at least\s+([0-9]+)\s+(?:trading\s+)?days?`),
	regexp.MustCompile(`([0-9]+)\s+trading\s+days?`),
	regexp.MustCompile(`([0-9]+)\s+days?`),
}

// ExtractDays pulls a day count like "minimum 5 trading days" -> 5.
func ExtractDays(text string) (int, bool) {
	text = strings.ToLower(text)
	for _, pattern := range dayPatterns {
		groups := pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		n, err := strconv.Atoi(groups[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

var (
	trueWords  = []string{"yes", "true", "required", "mandatory", "enabled", "active"}
	falseWords = []string{"no", "false", "not required", "optional", "disabled", "inactive"}
)

// ParseBool interprets rule-table prose like "Required" / "Not required".
// Negative phrases are checked first since they contain the positives.
func ParseBool(text string) (bool, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false, false
	}
	for _, w := range falseWords {
		if strings.Contains(text, w) {
			return false, true
		}
	}
	for _, w := range trueWords {
		if strings.Contains(text, w) {
			return true, true
		}
	}
	return false, false
}

var strayChars = regexp.MustCompile(`[^\w\s\-.,%$€£()/:]`)

// CleanText collapses whitespace and drops characters that interfere
// with the pattern banks.
func CleanText(text string) string {
	text = whitespaceRegex.ReplaceAllString(strings.TrimSpace(text), " ")
	return strayChars.ReplaceAllString(text, "")
}
