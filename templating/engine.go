// Package templating fills email templates that use {{name}} placeholders
// and single-level {{#if name}}...{{/if}} blocks.
package templating

import (
	"fmt"
	"reflect"
	"regexp"

	"troop-fundraiser/models"
	"troop-fundraiser/utils"
)

// Context maps placeholder names to values.
type Context map[string]interface{}

var (
	placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)
	ifBlock     = regexp.MustCompile(`(?s)\{\{#if\s+(\w+)\s*\}\}(.*?)\{\{/if\}\}`)
)

// Render substitutes placeholders in subject and body.
func Render(tmpl models.EmailTemplate, ctx Context) (subject string, body string) {
	return Apply(tmpl.Subject, ctx), Apply(tmpl.HTMLBody, ctx)
}

// Apply resolves the conditional blocks of text, then fills every placeholder in one pass.
// Substituted values are never scanned again, so a value that looks like a token stays literal.
// Blocks do not nest; a nested block closes at the first {{/if}}.
func Apply(text string, ctx Context) string {
	text = ifBlock.ReplaceAllStringFunc(text, func(block string) string {
		m := ifBlock.FindStringSubmatch(block)
		if Truthy(ctx[m[1]]) {
			return m[2]
		}
		return ""
	})

	return placeholder.ReplaceAllStringFunc(text, func(token string) string {
		return Stringify(ctx[placeholder.FindStringSubmatch(token)[1]])
	})
}

// Stringify renders a context value the way it appears in an email.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case models.Money:
		return utils.FormatUSD(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// Truthy reports whether v enables a conditional block.
// Empty strings, zero numbers, false, nil and empty collections are falsy.
func Truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case models.Money:
		return val != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
