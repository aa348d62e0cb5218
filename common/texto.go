package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Regex para remover qualquer marcação HTML do texto visível
var tagRe = regexp.MustCompile(`<[^>]*>`)

// StripTags devolve apenas o texto visível de um conteúdo HTML-ish.
func StripTags(html string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(html, " "))
}

// NormalizeText prepara um texto para comparação de duplicatas:
// espaços colapsados e sem espaços nas bordas. A comparação é sensível a
// maiúsculas, então duas mensagens só são duplicatas com texto idêntico.
func NormalizeText(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

// TextDigest gera a chave do índice de duplicatas usado na importação.
func TextDigest(text string) string {
	hash := xxhash.Sum64String(NormalizeText(text))
	return fmt.Sprintf("%016x", hash)
}

// ContainsFold faz a busca por substring sem diferenciar maiúsculas,
// a mesma semântica do filtro local das listas.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
