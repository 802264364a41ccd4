// Package ui renders the chatbot's console output. Structured tool results
// are drawn as tables when the model returned the JSON it was asked for, and
// printed raw otherwise.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"legal-lab/domain"
)

type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Banner(documentName string) {
	color.Fprintf(c.out, "<cyan>Legal assistant ready.</> Document: <bold>%s</>\n", documentName)
	color.Fprintf(c.out, "Ask about the document, or type 'quit' to exit.\n\n")
}

func (c *Console) Prompt() {
	color.Fprintf(c.out, "<green>You:</> ")
}

func (c *Console) Answer(text string) {
	color.Fprintf(c.out, "<yellow>Assistant:</> %s\n\n", text)
}

func (c *Console) Info(text string) {
	color.Fprintf(c.out, "<gray>%s</>\n", text)
}

func (c *Console) Error(err error) {
	color.Fprintf(c.out, "<red>Error:</> %v\n\n", err)
}

// Routing announces which tool handles the query and why.
func (c *Console) Routing(choice domain.ToolChoice) {
	color.Fprintf(c.out, "<gray>[%s] %s</>\n", choice.Tool, choice.Reason)
}

// Complications renders the risk analysis as a table. The raw model output
// is shown as a plain answer when it is not the expected JSON.
func (c *Console) Complications(raw string) {
	var report domain.ComplicationReport
	if err := json.Unmarshal([]byte(stripFences(raw)), &report); err != nil {
		c.Answer(raw)
		return
	}

	if len(report.Issues) == 0 {
		c.Answer("No problematic clauses found.")
	} else {
		table := tablewriter.NewWriter(c.out)
		table.SetHeader([]string{"Line", "Type", "Risk %", "Affected", "Clause", "Suggestion"})
		table.SetColWidth(40)
		table.SetRowLine(true)

		for _, issue := range report.Issues {
			table.Append([]string{
				strconv.Itoa(issue.LineNumber),
				issue.Type,
				strconv.Itoa(issue.RiskPercent),
				strings.Join(issue.AffectedParties, ", "),
				issue.Clause,
				issue.Suggestion,
			})
		}
		table.Render()
	}

	color.Fprintf(c.out, "Overall contract rating: <bold>%d/100</>\n\n", report.OverallRating)
}

// KeyDates renders the extracted dates as a table.
func (c *Console) KeyDates(raw string) {
	var report domain.KeyDateReport
	if err := json.Unmarshal([]byte(stripFences(raw)), &report); err != nil {
		c.Answer(raw)
		return
	}

	if len(report.KeyDates) == 0 {
		c.Answer("No key dates found in the document.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Event", "Recurrence", "Date / Day"})

	for _, keyDate := range report.KeyDates {
		recurrence := "one-time"
		if keyDate.Recurrence != nil {
			recurrence = *keyDate.Recurrence
		}
		table.Append([]string{keyDate.EventName, recurrence, keyDate.DateOrDay})
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// Validation renders the document classification verdict.
func (c *Console) Validation(raw string) {
	var verdict domain.Validation
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		c.Answer(raw)
		return
	}

	if verdict.IsLegalDocument {
		color.Fprintf(c.out, "<green>This is a legal document.</>\n\n")
		return
	}
	color.Fprintf(c.out, "<red>This does not look like a legal document.</> %s\n\n", verdict.Reason)
}

// Clauses renders search results from the clause index.
func (c *Console) Clauses(clauses []string) {
	if len(clauses) == 0 {
		c.Answer("No matching clauses.")
		return
	}
	items := lo.Map(clauses, func(clause string, i int) string {
		return fmt.Sprintf("%d. %s", i+1, clause)
	})
	c.Answer(strings.Join(items, "\n"))
}

// stripFences removes a markdown code fence around the model's JSON answer.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
