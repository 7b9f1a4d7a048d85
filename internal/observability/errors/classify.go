// Package errors names failures for metric tags.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/target/hiring-api/internal/errors"
)

// Classify returns a low-cardinality name for err. Application errors report
// their code; anything else reports the innermost concrete type, such as
// "pgconn_pgerror".
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}
