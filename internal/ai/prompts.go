package ai

import (
	"bytes"
	"fmt"
	"text/template"
)

// PromptData holds the parameters for template rendering
type PromptData struct {
	Author  string
	Title   string
	Content string
}

const (
	issueSystemPromptTemplate = `Given the information that user '{{.Author}}' opened an issue titled '{{.Title}}', your task is to deeply analyze the content of the issue posts. Concentrate on the principal arguments, suggested solutions, and areas of consensus or disagreement among the participants, then generate a succinct, context-aware summary of the issue.`

	issueUserPromptTemplate = "Analyze the GitHub issue content: {{.Content}}. " +
		"Concentrate on the principal arguments, suggested solutions, and areas of consensus or " +
		"disagreement among the participants. " +
		"From these elements, generate a concise summary of the entire issue to inform the next course of action. " +
		"Please reply in the following JSON format. If no information is available for a field, leave that field empty. " +
		"PrincipalArguments, SuggestedSolutions, AreasOfConsensus and AreasOfDisagreement are arrays of strings " +
		"with one complete sentence per item, each array written on one line. " +
		"ConciseSummary is a single, complete sentence covering one or multiple facts: \n\n" +
		"```\n" +
		"{\n" +
		"  \"PrincipalArguments\": [],\n" +
		"  \"SuggestedSolutions\": [],\n" +
		"  \"AreasOfConsensus\": [],\n" +
		"  \"AreasOfDisagreement\": [],\n" +
		"  \"ConciseSummary\": \"\"\n" +
		"}\n" +
		"```"
)

// RenderPrompt executes a text/template prompt with the given data.
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// IssueSystemPrompt names the issue opener and title and sets the analysis task.
func IssueSystemPrompt(author, title string) (string, error) {
	return RenderPrompt("issueSystemPrompt", issueSystemPromptTemplate, PromptData{
		Author: author,
		Title:  title,
	})
}

// IssueUserPrompt wraps the budgeted issue narrative with the five-field JSON
// reply instruction.
func IssueUserPrompt(content string) (string, error) {
	return RenderPrompt("issueUserPrompt", issueUserPromptTemplate, PromptData{
		Content: content,
	})
}
