package flatten

import "strings"

const (
	innLabel  = "ИНН"
	ogrnLabel = "ОГРН"
)

// DeriveIdentity pulls the tax and registration ids out of a composite
// party-identity block. Each label token must be followed by a pure digit
// token; otherwise the corresponding id stays empty. Never fails.
func DeriveIdentity(text string) (inn, ogrn string) {
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if i+1 >= len(tokens) {
			break
		}
		next := strings.TrimSpace(tokens[i+1])
		switch strings.Trim(tok, ":;,.") {
		case innLabel:
			if inn == "" && isDigits(next) {
				inn = next
			}
		case ogrnLabel:
			if ogrn == "" && isDigits(next) {
				ogrn = next
			}
		}
	}
	return inn, ogrn
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
