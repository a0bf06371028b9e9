package instrument

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const hidden = "[redacted]"

// redactor rewrites values by key, case-insensitively. Customer contact data
// keeps just enough to recognise a record; secrets and street lines are hidden.
type redactor struct {
	rules map[string]func(string) string
}

func newRedactor(extra []string) *redactor {
	rules := map[string]func(string) string{
		"email":          partialEmail,
		"customer_email": partialEmail,
		"to":             partialEmail,
		"phone":          lastDigits,
		"street":         hide,
		"api_key":        hide,
		"password":       hide,
		"authorization":  hide,
	}
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			rules[k] = hide
		}
	}
	return &redactor{rules: rules}
}

func (r *redactor) attr(a slog.Attr) slog.Attr {
	if rule, ok := r.rules[strings.ToLower(a.Key)]; ok {
		return slog.Any(a.Key, applyRule(rule, a.Value.Resolve().Any()))
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.attr(ga)
		}
		return slog.Group(a.Key, out...)
	case slog.KindString:
		if s, ok := r.jsonText(v.String()); ok {
			return slog.String(a.Key, s)
		}
	case slog.KindAny:
		switch x := v.Any().(type) {
		case map[string]any, []any:
			return slog.Any(a.Key, r.value(x))
		case map[string]string:
			m := make(map[string]any, len(x))
			for k, s := range x {
				m[k] = s
			}
			return slog.Any(a.Key, r.value(m))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// jsonText redacts a logged request or response body.
func (r *redactor) jsonText(s string) (string, bool) {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return "", false
	}
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return "", false
	}
	b, err := json.Marshal(r.value(doc))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (r *redactor) value(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			if rule, ok := r.rules[strings.ToLower(k)]; ok {
				out[k] = applyRule(rule, item)
				continue
			}
			out[k] = r.value(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = r.value(item)
		}
		return out
	default:
		return v
	}
}

func applyRule(rule func(string) string, v any) any {
	switch x := v.(type) {
	case string:
		return rule(x)
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = rule(s)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = applyRule(rule, item)
		}
		return out
	case nil:
		return nil
	default:
		return hidden
	}
}

func hide(string) string { return hidden }

// partialEmail keeps the first letter and the domain: j***@example.com.
// A display name form keeps only the address part.
func partialEmail(s string) string {
	if i := strings.LastIndexByte(s, '<'); i >= 0 {
		s = strings.TrimSuffix(s[i+1:], ">")
	}
	at := strings.LastIndexByte(s, '@')
	if at < 1 {
		return hidden
	}
	return s[:1] + "***" + s[at:]
}

// lastDigits keeps the final three digits of a phone number.
func lastDigits(s string) string {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) <= 3 {
		return hidden
	}
	return "***" + string(digits[len(digits)-3:])
}
