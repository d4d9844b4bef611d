package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/llm"
)

// oraclePrompt asks the model for a strict JSON classification.
const oraclePrompt = `Classify the following work request into exactly one domain from this list:
%s

Request:
%s

Return ONLY a JSON object (no other text):
{"domain": "<domain>", "confidence": <0.0-1.0>}`

// CompleterOracle is a model-backed secondary classifier. It is
// consulted only in ensemble mode and its failures never propagate.
type CompleterOracle struct {
	completer llm.Completer
	domains   []string
}

// NewCompleterOracle builds an oracle over the given completer,
// constrained to the domains of the keyword table.
func NewCompleterOracle(completer llm.Completer, kw DomainKeywords) *CompleterOracle {
	domains := make([]string, 0, len(kw))
	for d := range kw {
		domains = append(domains, d)
	}
	return &CompleterOracle{completer: completer, domains: domains}
}

// Classify asks the model for a domain and parses its JSON reply.
func (o *CompleterOracle) Classify(ctx context.Context, text string) (Result, error) {
	prompt := fmt.Sprintf(oraclePrompt, strings.Join(o.domains, ", "), text)

	reply, err := o.completer.Complete(ctx, prompt, llm.Options{MaxTokens: 256})
	if err != nil {
		return Result{}, err
	}

	// Find the JSON object in the response.
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return Result{}, fmt.Errorf("no JSON object in oracle response")
	}

	var parsed struct {
		Domain     string  `json:"domain"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return Result{}, fmt.Errorf("unmarshal oracle response: %w", err)
	}
	if parsed.Domain == "" {
		return Result{}, fmt.Errorf("oracle returned empty domain")
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return Result{}, fmt.Errorf("oracle confidence %.2f outside [0,1]", parsed.Confidence)
	}

	return Result{
		Domain:      parsed.Domain,
		Confidence:  parsed.Confidence,
		Explanation: "model oracle classification",
	}, nil
}
