package entities

import "strings"

// Labels holds the prompt templates used by the question generator.
// Each template is a fmt format string taking the listed integer arguments.
type Labels struct {
	Locale        string
	Larger        string // a, b
	Smaller       string // a, b
	BlankAddition string // b, c
	BlankSubtract string // a, c
}

var labelSets = map[string]Labels{
	"en": {
		Locale:        "en",
		Larger:        "%d or %d, which is larger?",
		Smaller:       "%d or %d, which is smaller?",
		BlankAddition: "__ + %d = %d, what goes in the blank?",
		BlankSubtract: "%d - __ = %d, what goes in the blank?",
	},
	"zh-tw": {
		Locale:        "zh-TW",
		Larger:        "%d 與 %d，哪個比較大？",
		Smaller:       "%d 與 %d，哪個比較小？",
		BlankAddition: "__ + %d = %d，空格處為何？",
		BlankSubtract: "%d - __ = %d，空格處為何？",
	},
}

// DefaultLocale is used when no locale or an unknown one is configured.
const DefaultLocale = "en"

// LabelsFor returns the label set for locale, falling back to English.
func LabelsFor(locale string) Labels {
	if l, ok := labelSets[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return l
	}
	return labelSets[DefaultLocale]
}
