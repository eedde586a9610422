package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const promptTemplate = `Eres un experto en SEO y desarrollo web, tu trabajo es dar consejos concisos basados
en los datos del análisis que se te proporcionan. Responde siempre en español.

DATOS DEL ANÁLISIS WEB:
---
%s
---

PREGUNTA DEL USUARIO: %s

Genera una respuesta clara, concisa y profesional.`

// BuildPrompt embeds the indented report JSON and the question into the
// fixed prompt. Key order and non-ASCII text are kept as received; empty
// or null data becomes {}.
func BuildPrompt(data json.RawMessage, question string) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		trimmed = []byte("{}")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "", fmt.Errorf("invalid analysis data: %w", err)
	}
	return fmt.Sprintf(promptTemplate, buf.String(), strings.TrimSpace(question)), nil
}
