package ai

import (
	"bytes"
	"embed"
	"strconv"
	"strings"
	"text/template"
	"time"

	"spesa/internal/core"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// maxPromptRows caps how many purchase rows are sent with a question.
const maxPromptRows = 400

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"join": strings.Join,
	"num":  formatOptional,
	"qty":  formatOptional,
}).ParseFS(promptFS, "prompts/*.tmpl"))

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func receiptPrompt(categories []string, today time.Time) (string, error) {
	var buf bytes.Buffer
	err := prompts.ExecuteTemplate(&buf, "receipt.tmpl", struct {
		Categories []string
		Today      string
	}{categories, core.DayKey(today)})
	return buf.String(), err
}

func answerPrompt(question, contextText string, rows []core.PurchaseRow) (string, error) {
	// Most recent rows matter most; rows arrive oldest first.
	if len(rows) > maxPromptRows {
		rows = rows[len(rows)-maxPromptRows:]
	}
	var buf bytes.Buffer
	err := prompts.ExecuteTemplate(&buf, "answer.tmpl", struct {
		Question string
		Context  string
		Rows     []core.PurchaseRow
	}{question, contextText, rows})
	return buf.String(), err
}
