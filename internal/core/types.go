package core

const (
	BotName          = "Lisbot"
	BotUserAgent     = "Lisbot-Agent/0.1"
	BotRepositoryURL = "https://github.com/sandevgo/lisbot"
	BotVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions carries per-call completion parameters. Extraction calls run
// at low temperature with a small token budget; the persona reply uses
// provider defaults.
type ChatOptions struct {
	Temperature *float64
	MaxTokens   int
}

func Temp(v float64) *float64 {
	return &v
}
