package openai

// TextOptions configures output formatting in Responses API.
// Example:
// "text": { "format": { "type": "text" }, "verbosity": "medium" }
type TextOptions struct {
	Format    TextFormat    `json:"format"`
	Verbosity TextVerbosity `json:"verbosity,omitempty"` // optional hint: low|medium|high
}

type TextFormat struct {
	Type TextFormatType `json:"type"`
}

type TextFormatType string

// The dashboard only ever asks for prose; the answers are markdown.
const TextFormatTypeText TextFormatType = "text"

func TextAsPlain(verbosity TextVerbosity) TextOptions {
	return TextOptions{
		Format:    TextFormat{Type: TextFormatTypeText},
		Verbosity: verbosity,
	}
}
