package app

import (
	"regexp"
	"strings"
)

var diacritics = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a", "æ", "ae",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o", "œ", "oe",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ý", "y", "ÿ", "y",
	"ß", "ss",
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
)

// BrochureFilename builds the download name for a villa brochure, e.g.
// "Villa Éden Rock" -> "villa-villa-eden-rock-brochure.pdf".
func BrochureFilename(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = diacritics.Replace(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	return "villa-" + s + "-brochure.pdf"
}
