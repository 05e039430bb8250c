package feed

import (
	"regexp"
	"strconv"
	"strings"
)

// vietnameseRunes covers the diacritic forms unique to Vietnamese
// orthography. Plain ASCII vowels are deliberately excluded.
var vietnameseRunes = map[rune]struct{}{}

func init() {
	for _, r := range "àáảãạăằắẳẵặâầấẩẫậèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵđĐ" {
		vietnameseRunes[r] = struct{}{}
	}
}

// vietnameseWords are high-frequency Vietnamese function words. Matching is
// substring-based over the lowercased text, mirroring how short function
// words appear inside longer phrases.
var vietnameseWords = []string{
	"và", "của", "trong", "với", "cho", "từ", "theo", "về",
	"được", "có", "là", "một", "các", "này", "để", "những",
	"như", "khi", "hay", "đã", "sẽ", "không", "tôi", "bạn",
	"chúng", "việc", "công", "ty", "doanh", "nghiệp",
}

// IsSponsored reports whether the post text carries a promoted or sponsored
// marker anywhere.
func IsSponsored(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "promoted") || strings.Contains(lower, "sponsored")
}

// IsVietnamese applies a cheap language heuristic: three or more Vietnamese
// diacritic characters, or two or more common Vietnamese words.
func IsVietnamese(text string) bool {
	charCount := 0
	for _, r := range text {
		if _, ok := vietnameseRunes[r]; ok {
			charCount++
			if charCount >= 3 {
				return true
			}
		}
	}

	lower := strings.ToLower(text)
	wordCount := 0
	for _, w := range vietnameseWords {
		if strings.Contains(lower, w) {
			wordCount++
			if wordCount >= 2 {
				return true
			}
		}
	}
	return false
}

// Classify assigns a category with sponsored taking priority over Vietnamese.
func Classify(text string) Category {
	if IsSponsored(text) {
		return CategorySponsored
	}
	if IsVietnamese(text) {
		return CategoryVietnamese
	}
	return CategoryNormal
}

var daysPattern = regexp.MustCompile(`(\d+)\s*day`)

// TooOld parses a relative timestamp like "3 days ago" or "2w" spelled out
// ("2 weeks ago") and reports whether the post exceeds the age limit. Any
// week, month, or year marker means too old; unparseable text means fresh
// enough.
func TooOld(timeText string, maxAgeDays int) bool {
	lower := strings.ToLower(timeText)
	for _, marker := range []string{"week", "month", "year"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	if m := daysPattern.FindStringSubmatch(lower); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return false
		}
		return days > maxAgeDays
	}
	return false
}
