package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-formdef/pkg/form"
)

// RuleFunc checks a coerced value against one validation rule. It returns an
// empty string when the value passes, or the failure message otherwise.
// Rules never abort the pass; every failing rule for a field accumulates.
type RuleFunc func(rule form.ValidationRule, value any) string

// Conservative local@domain.tld shape. The character classes exclude
// whitespace and control characters outright.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

func builtinRules() map[string]RuleFunc {
	return map[string]RuleFunc{
		form.RuleMinLength: ruleMinLength,
		form.RuleMaxLength: ruleMaxLength,
		form.RuleEmail:     ruleEmail,
		form.RuleRange:     ruleRange,
	}
}

func ruleMinLength(rule form.ValidationRule, value any) string {
	if rule.Value == nil {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	limit := int(*rule.Value)
	if len([]rune(text)) < limit {
		return message(rule, fmt.Sprintf("must be at least %d characters", limit))
	}
	return ""
}

func ruleMaxLength(rule form.ValidationRule, value any) string {
	if rule.Value == nil {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	limit := int(*rule.Value)
	if len([]rune(text)) > limit {
		return message(rule, fmt.Sprintf("must be at most %d characters", limit))
	}
	return ""
}

func ruleEmail(rule form.ValidationRule, value any) string {
	text, ok := value.(string)
	if !ok {
		return ""
	}
	if !emailPattern.MatchString(strings.TrimSpace(text)) {
		return message(rule, "must be a valid email address")
	}
	return ""
}

func ruleRange(rule form.ValidationRule, value any) string {
	number, ok := value.(decimal.Decimal)
	if !ok {
		return ""
	}
	if rule.Min != nil && number.LessThan(decimal.NewFromFloat(*rule.Min)) {
		return message(rule, fmt.Sprintf("must be at least %v", *rule.Min))
	}
	if rule.Max != nil && number.GreaterThan(decimal.NewFromFloat(*rule.Max)) {
		return message(rule, fmt.Sprintf("must be at most %v", *rule.Max))
	}
	return ""
}

func message(rule form.ValidationRule, fallback string) string {
	if strings.TrimSpace(rule.Message) != "" {
		return rule.Message
	}
	return fallback
}
