package models

import (
	"encoding/json"
	"strings"
)

// Blocklist rule types. Keyword and phrase rules are scanned against the
// free-text reason with substring containment; domain rules are stored but
// not evaluated against reason text (reserved for URL scanning).
const (
	BlocklistTypeKeyword = "keyword"
	BlocklistTypePhrase  = "phrase"
	BlocklistTypeDomain  = "domain"
)

// BlocklistRule is a single admin-curated auto-reject rule. Values are
// compared case-insensitively.
type BlocklistRule struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Blocklist is the ordered rule collection as serialized into the blocklist
// system setting. Order does not affect outcome; any match rejects.
type Blocklist []BlocklistRule

// ParseBlocklist decodes the serialized rule list. An empty string yields an
// empty blocklist; malformed JSON is an error the caller decides how to
// absorb.
func ParseBlocklist(raw string) (Blocklist, error) {
	if strings.TrimSpace(raw) == "" {
		return Blocklist{}, nil
	}
	var rules Blocklist
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// MatchesReason reports whether any keyword or phrase rule matches the
// reason text. Matching is case-insensitive substring containment. Domain
// rules are skipped. Stops at the first match.
func (b Blocklist) MatchesReason(reason string) (BlocklistRule, bool) {
	lowered := strings.ToLower(reason)
	for _, rule := range b {
		switch rule.Type {
		case BlocklistTypeKeyword, BlocklistTypePhrase:
			if rule.Value != "" && strings.Contains(lowered, strings.ToLower(rule.Value)) {
				return rule, true
			}
		}
	}
	return BlocklistRule{}, false
}

// Serialize encodes the rule list for storage in the settings table.
func (b Blocklist) Serialize() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
