package validate

import (
	"regexp"
	"strings"
)

// currencyRe matches a literal dollar amount: optional thousands separators
// and decimals, optional magnitude suffix (k/m/b or spelled out), optional
// hyphenated range, optional MRR/ARR qualifier.
var currencyRe = regexp.MustCompile(
	`\$\s?\d+(?:,\d{3})*(?:\.\d+)?` +
		`(?:\s?(?:[kKmMbB]\b|thousand|million|billion|trillion))?` +
		`(?:\s?[-–]\s?\$?\d+(?:,\d{3})*(?:\.\d+)?(?:\s?[kKmMbB]\b)?)?` +
		`(?:\s?(?:MRR|ARR))?`,
)

// shorthandRe matches currency-like shorthand without a dollar sign, such
// as "100k" or "1.2M MRR". Only consulted in speculative mode.
var shorthandRe = regexp.MustCompile(
	`(?i)\b\d+(?:\.\d+)?\s?[kmb]\b(?:\s?(?:mrr|arr))?`,
)

// fundingRe is the funding/valuation denylist: amounts raised from
// investors are explicitly not "making money".
var fundingRe = regexp.MustCompile(
	`(?i)\b(?:pre[- ]seed|seed(?:\s+round)?|series\s+[a-e]\b|valuation|valued\s+at|market\s+cap|capex|venture|funding|fundrais\w*|raised?|raising)\b`,
)

// FirstCurrencyToken returns the first literal dollar amount in s, or "".
func FirstCurrencyToken(s string) string {
	return currencyRe.FindString(s)
}

// ContainsCurrency reports whether s carries a literal dollar amount.
func ContainsCurrency(s string) bool {
	return currencyRe.MatchString(s)
}

// ShorthandToken returns the first currency-like shorthand in s, or "".
func ShorthandToken(s string) string {
	return strings.TrimSpace(shorthandRe.FindString(s))
}

// MentionsFunding reports whether s matches the funding/valuation denylist.
func MentionsFunding(s string) bool {
	return fundingRe.MatchString(s)
}
