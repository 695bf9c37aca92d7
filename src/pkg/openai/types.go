package openai

// ----- Request types we send -----

// InputItem is the simplest message shape the Responses API accepts.
// It mirrors examples like: [{"role":"user","content":"..."}]
type InputItem struct {
	Role    InputRole `json:"role"`
	Content string    `json:"content"`
}

type requestPayload struct {
	Model           string       `json:"model"`
	Instructions    string       `json:"instructions,omitempty"`
	MaxOutputTokens *int         `json:"max_output_tokens,omitempty"`
	Input           []InputItem  `json:"input"`
	Reasoning       *Reasoning   `json:"reasoning,omitempty"`
	Store           bool         `json:"store"`
	Temperature     *float64     `json:"temperature,omitempty"` // reasoning models reject anything but 1.0
	Background      bool         `json:"background,omitempty"`
	Text            *TextOptions `json:"text,omitempty"`
}

// ----- Response types we parse -----
/*
Wire structs for the Responses API.
Only includes fields we actually use for llm.RunMetadata.
*/
type responseObject struct {
	ID          string       `json:"id"`
	Object      string       `json:"object"`
	CreatedAt   int64        `json:"created_at,omitempty"`
	Model       string       `json:"model"`
	Status      string       `json:"status"`
	Output      []outputItem `json:"output"`
	Usage       *usageBlock  `json:"usage,omitempty"`
	Error       any          `json:"error,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
	Reasoning   *Reasoning   `json:"reasoning,omitempty"`
}

type outputItem struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"` // typically "message" or reasoning items
	Role    string        `json:"role,omitempty"`
	Content []contentItem `json:"content,omitempty"`
}

type contentItem struct {
	Type string `json:"type"`           // e.g., "output_text"
	Text string `json:"text,omitempty"` // set when type == "output_text"
}

type usageBlock struct {
	InputTokens         int                  `json:"input_tokens"`
	InputTokensDetails  *inputTokensDetails  `json:"input_tokens_details"`
	OutputTokens        int                  `json:"output_tokens"`
	TotalTokens         int                  `json:"total_tokens"`
	OutputTokensDetails *outputTokensDetails `json:"output_tokens_details,omitempty"`
}

type inputTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type outputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

type Reasoning struct {
	Effort *Effort `json:"effort,omitempty"`
}
