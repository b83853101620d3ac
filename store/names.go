package store

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// placeholder makes name safe for use after "#" or ":" in an expression.
// Every attribute name is bound through a placeholder, so reserved words never
// reach the expression text.
func placeholder(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// existsCondition returns "fn(#a) and fn(#b)" for the given attribute names and
// records the name bindings into names.
func existsCondition(fn string, names map[string]string, attrs ...string) string {
	clauses := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		ph := "#" + placeholder(attr)
		names[ph] = attr
		clauses = append(clauses, fmt.Sprintf("%s(%s)", fn, ph))
	}
	return strings.Join(clauses, " and ")
}

// bindName records the binding ph -> name. Distinct names that sanitize to
// the same placeholder are rejected instead of sharing one binding.
func bindName(names map[string]string, ph, name string) error {
	if bound, ok := names[ph]; ok && bound != name {
		return placeholderCollision(ph, bound, name)
	}
	names[ph] = name
	return nil
}

// bindValue records the binding ph -> av for the named field. A placeholder
// is bound at most once per expression.
func bindValue(values map[string]types.AttributeValue, ph, field string, av types.AttributeValue) error {
	if _, ok := values[ph]; ok {
		return placeholderCollision(ph, ph, field)
	}
	values[ph] = av
	return nil
}

func placeholderCollision(ph, bound, name string) error {
	return &ValidationError{
		Message: "Failed Validation",
		Errors: []FieldError{{
			FieldName: name,
			Message:   fmt.Sprintf("%s collides with %s on placeholder %s", name, bound, ph),
		}},
	}
}

func keyItem(pairs ...KeyPair) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, len(pairs))
	for _, p := range pairs {
		key[p.KeyName] = &types.AttributeValueMemberS{Value: p.KeyValue}
	}
	return key
}
