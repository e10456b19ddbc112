// Package langdetect classifies article language from raw text using
// character-script counting, with function-word disambiguation for
// Latin-script languages. It is used to route model selection.
package langdetect

import (
	"regexp"
	"strings"
	"unicode"
)

// Detection is the result of a full language detection pass.
type Detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"` // [0,1]
	Script     string  `json:"script"`
}

// Script bucket names.
const (
	ScriptHan      = "han"
	ScriptKana     = "kana"
	ScriptHangul   = "hangul"
	ScriptCyrillic = "cyrillic"
	ScriptArabic   = "arabic"
	ScriptLatin    = "latin"
	ScriptNone     = ""
)

// functionWords maps each supported Latin-script language to regexes for its
// most common articles and prepositions. Counts decide the tie-break.
var functionWords = map[string][]*regexp.Regexp{
	"en": compileWords("the", "and", "of", "to", "in", "is", "that", "for", "with"),
	"es": compileWords("el", "la", "los", "las", "de", "que", "en", "por", "una"),
	"fr": compileWords("le", "la", "les", "des", "et", "est", "dans", "pour", "une"),
	"de": compileWords("der", "die", "das", "und", "ist", "nicht", "mit", "für", "ein"),
	"pt": compileWords("o", "os", "da", "do", "que", "em", "uma", "não", "para"),
	"it": compileWords("il", "lo", "gli", "di", "che", "per", "una", "sono", "con"),
}

func compileWords(words ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		res = append(res, regexp.MustCompile(`(?i)\b`+w+`\b`))
	}
	return res
}

// quickProbes are ordered script probes for the hot-path variant.
var quickProbes = []struct {
	re   *regexp.Regexp
	lang string
}{
	{regexp.MustCompile(`[\x{3040}-\x{30ff}]`), "ja"},
	{regexp.MustCompile(`[\x{ac00}-\x{d7af}]`), "ko"},
	{regexp.MustCompile(`[\x{4e00}-\x{9fff}]`), "zh"},
	{regexp.MustCompile(`[\x{0400}-\x{04ff}]`), "ru"},
	{regexp.MustCompile(`[\x{0600}-\x{06ff}]`), "ar"},
}

// Detector classifies text by Unicode script distribution.
type Detector struct{}

// NewDetector creates a language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect classifies the language of text. Empty or whitespace-only input
// returns {language: "other", confidence: 0} and never errors.
func (d *Detector) Detect(text string) Detection {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Detection{Language: "other", Confidence: 0, Script: ScriptNone}
	}

	counts := map[string]int{}
	letters := 0
	for _, r := range trimmed {
		switch {
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			counts[ScriptKana]++
		case unicode.Is(unicode.Han, r):
			counts[ScriptHan]++
		case unicode.Is(unicode.Hangul, r):
			counts[ScriptHangul]++
		case unicode.Is(unicode.Cyrillic, r):
			counts[ScriptCyrillic]++
		case unicode.Is(unicode.Arabic, r):
			counts[ScriptArabic]++
		case unicode.Is(unicode.Latin, r):
			counts[ScriptLatin]++
		default:
			continue
		}
		letters++
	}

	if letters == 0 {
		return Detection{Language: "other", Confidence: 0, Script: ScriptNone}
	}

	script, scriptCount := dominantScript(counts)

	var language string
	base := 0.9 // CJK and other distinctive scripts
	switch script {
	case ScriptKana:
		language = "ja"
	case ScriptHan:
		// Kana presence means Japanese even when Han dominates.
		if counts[ScriptKana] > 0 {
			language = "ja"
			script = ScriptKana
		} else {
			language = "zh"
		}
	case ScriptHangul:
		language = "ko"
	case ScriptCyrillic:
		language = "ru"
		base = 0.85
	case ScriptArabic:
		language = "ar"
		base = 0.85
	case ScriptLatin:
		language = disambiguateLatin(trimmed)
		base = 0.7
	default:
		return Detection{Language: "other", Confidence: 0, Script: ScriptNone}
	}

	if language == "ja" {
		// Japanese text mixes kanji and kana; both scripts back the detection.
		scriptCount = counts[ScriptKana] + counts[ScriptHan]
	}

	confidence := base * lengthFactor(letters) * (float64(scriptCount) / float64(letters))
	if confidence > 1 {
		confidence = 1
	}

	return Detection{Language: language, Confidence: confidence, Script: script}
}

// QuickDetect is the hot-path variant: ordered regex script probes only,
// no confidence. Defaults to English when nothing matches.
func (d *Detector) QuickDetect(text string) string {
	for _, probe := range quickProbes {
		if probe.re.MatchString(text) {
			return probe.lang
		}
	}
	return "en"
}

// dominantScript picks the bucket with the highest count.
func dominantScript(counts map[string]int) (string, int) {
	best, bestCount := ScriptNone, 0
	// Fixed iteration order keeps ties deterministic.
	for _, s := range []string{ScriptKana, ScriptHan, ScriptHangul, ScriptCyrillic, ScriptArabic, ScriptLatin} {
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best, bestCount
}

// disambiguateLatin counts function-word hits per supported Western language.
func disambiguateLatin(text string) string {
	best := "en"
	bestHits := -1
	for _, lang := range []string{"en", "es", "fr", "de", "pt", "it"} {
		hits := 0
		for _, re := range functionWords[lang] {
			hits += len(re.FindAllStringIndex(text, -1))
		}
		if hits > bestHits {
			best, bestHits = lang, hits
		}
	}
	return best
}

// lengthFactor saturates past roughly 100 characters of letter content.
func lengthFactor(letters int) float64 {
	if letters >= 100 {
		return 1.0
	}
	return 0.4 + 0.6*float64(letters)/100.0
}
