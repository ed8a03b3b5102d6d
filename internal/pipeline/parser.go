package pipeline

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/akashgupta/spendlens/internal/domain"
)

// cleanModelJSON strips Markdown fences and surrounding chatter from a model
// response, keeping only the JSON payload when the model ignored the "raw
// JSON only" instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// If there is still junk around the payload, keep only the outermost
	// array (or object, when no array is present).
	if strings.HasPrefix(s, "{") {
		if end := strings.LastIndex(s, "}"); end != -1 {
			return strings.TrimSpace(s[:end+1])
		}
		return s
	}
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	} else if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

// parseCandidates decodes a model response into candidate transactions. A
// single object is wrapped into a one-element slice; anything that fails to
// decode yields nil so extraction degrades to "no transactions found".
func parseCandidates(raw string) []domain.Candidate {
	clean := cleanModelJSON(raw)

	var parsed interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil
	}

	var items []interface{}
	switch v := parsed.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items = []interface{}{v}
	default:
		return nil
	}

	out := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, candidateFromObject(obj))
	}
	return out
}

// candidateFromObject maps one decoded object field-by-field. Fields are
// extracted leniently; schema validation happens at the write boundary, not
// here.
func candidateFromObject(obj map[string]interface{}) domain.Candidate {
	return domain.Candidate{
		Description:  looseString(obj["description"]),
		Amount:       looseNumber(obj["amount"]),
		Type:         looseString(obj["type"]),
		CategoryName: looseString(obj["category_name"]),
		PaymentMode:  looseString(obj["payment_mode"]),
		Date:         looseString(obj["date"]),
		Notes:        looseString(obj["notes"]),
	}
}

func looseString(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// looseNumber accepts a JSON number or a numeric string like "2,000".
func looseNumber(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
