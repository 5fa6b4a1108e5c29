package templates

import (
	"strings"
	"unicode"

	"chainforge/internal/scaffold"
)

// DefaultBindings builds the variable bindings for one generation request
// from user-supplied fields plus computed defaults. extra entries win
// over computed ones.
func DefaultBindings(projectName, blockchain, network string, extra map[string]string) scaffold.Bindings {
	name := strings.TrimSpace(projectName)
	if name == "" {
		name = "MyProject"
	}

	bindings := scaffold.Bindings{
		"ProjectName": sanitizeIdent(name),
		"ProjectSlug": slugify(name),
		"TokenName":   name,
		"TokenSymbol": deriveSymbol(name),
		"Blockchain":  blockchain,
		"Network":     network,
	}
	for k, v := range extra {
		bindings[k] = v
	}
	return bindings
}

// deriveSymbol builds a ticker-style symbol from the project name: the
// first letter of each word, or the first three letters for single-word
// names, uppercased and capped at five characters.
func deriveSymbol(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var symbol string
	if len(words) >= 2 {
		for _, w := range words {
			symbol += string([]rune(w)[0])
		}
	} else if len(words) == 1 {
		runes := []rune(words[0])
		if len(runes) > 3 {
			runes = runes[:3]
		}
		symbol = string(runes)
	} else {
		symbol = "TKN"
	}

	symbol = strings.ToUpper(symbol)
	if len(symbol) > 5 {
		symbol = symbol[:5]
	}
	return symbol
}

// sanitizeIdent strips characters that cannot appear in a contract or
// type name.
func sanitizeIdent(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				b.WriteRune(r)
			}
		default:
			upperNext = true
		}
	}
	if b.Len() == 0 {
		return "MyProject"
	}
	return b.String()
}

// slugify lowercases the name and joins words with hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
