// Package sheet reads schedule spreadsheets (.xlsx and .csv) into tasks and
// writes tasks back out with completion and status columns.
package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type column int

const (
	colUnknown column = iota
	colNumber
	colClassification
	colCategory
	colPhase
	colCondition
	colName
	colDuration
	colHowTo
	colReference
	colPercent
	colStart
	colEnd
	colDeadline
	colResponsible
	colDelay
)

// headerAliases maps folded header text to a column.
var headerAliases = map[string]column{
	"numero": colNumber, "num": colNumber, "n": colNumber, "no": colNumber, "#": colNumber, "item": colNumber,
	"classificacao": colClassification, "classe": colClassification,
	"categoria": colCategory, "category": colCategory,
	"fase": colPhase, "phase": colPhase, "etapa": colPhase,
	"condicao": colCondition,
	"nome": colName, "tarefa": colName, "atividade": colName, "name": colName, "descricao": colName,
	"duracao": colDuration, "duracao (dias)": colDuration, "dias": colDuration, "duration": colDuration,
	"como fazer": colHowTo,
	"documento referencia": colReference, "documento de referencia": colReference, "documento": colReference, "referencia": colReference,
	"% concluido": colPercent, "% concluida": colPercent, "concluido": colPercent, "conclusao": colPercent, "percentual": colPercent, "%": colPercent,
	"inicio": colStart, "data inicio": colStart, "data de inicio": colStart, "start": colStart,
	"fim": colEnd, "termino": colEnd, "data fim": colEnd, "end": colEnd,
	"prazo": colDeadline, "deadline": colDeadline, "data limite": colDeadline,
	"responsavel": colResponsible, "responsible": colResponsible,
	"atraso": colDelay, "atraso (dias)": colDelay,
}

// exportHeaders is the column order written by WriteCSV and WriteXLSX.
var exportHeaders = []string{
	"Número", "Classificação", "Categoria", "Fase", "Condição", "Nome",
	"Duração", "Como Fazer", "Documento Referência", "Início", "Fim",
	"Prazo", "Responsável", "Atraso", "% Concluída", "Status",
}

// foldHeader lowercases s, strips accents and collapses whitespace.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.Join(strings.Fields(folded), " "))
	return strings.TrimSuffix(folded, ":")
}

func lookupColumn(header string) column {
	return headerAliases[foldHeader(header)]
}

// mapHeader returns the column index of every recognized header, and
// whether the row looks like a header at all (it must name the task column).
func mapHeader(row []string) (map[column]int, bool) {
	idx := make(map[column]int)
	for i, h := range row {
		c := lookupColumn(h)
		if c == colUnknown {
			continue
		}
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	_, ok := idx[colName]
	return idx, ok
}
