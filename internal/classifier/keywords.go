// Package classifier provides deterministic domain classification for
// enhancement area text.
package classifier

// DomainKeywords is the single source of truth for domain
// classification keywords. Both the heuristic classifier and the
// policy engine's domain rules key off these domain names.
type DomainKeywords map[string][]string

// DomainGeneral is the fallback domain when no keyword scores.
const DomainGeneral = "general"

// DefaultDomainKeywords returns the authoritative domain -> keyword
// table. Keywords are matched case-insensitively as substrings.
func DefaultDomainKeywords() DomainKeywords {
	return DomainKeywords{
		"frontend": {
			"ui", "dashboard", "component", "react", "page",
			"form", "css", "layout", "render", "widget",
		},
		"backend": {
			"api", "endpoint", "service", "server", "route",
			"handler", "rest", "grpc", "middleware", "queue",
		},
		"data": {
			"database", "schema", "migration", "etl", "pipeline",
			"warehouse", "sql", "index", "query", "analytics",
		},
		"infrastructure": {
			"deploy", "docker", "kubernetes", "terraform", "ci",
			"monitoring", "scaling", "infra", "provisioning", "network",
		},
		"security": {
			"auth", "authentication", "authorization", "encryption",
			"token", "vulnerability", "audit", "secrets", "tls", "rbac",
		},
		"machine_learning": {
			"model", "training", "inference", "embedding", "llm",
			"prompt", "classifier", "dataset", "fine-tune", "vector",
		},
		"payments": {
			"payment", "billing", "invoice", "stripe", "subscription",
			"checkout", "refund", "ledger", "payout", "pricing",
		},
	}
}
