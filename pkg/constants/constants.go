package constants

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	AppKey        ContextKey = "app"
	PoolKey       ContextKey = "pool"
	TxKey         ContextKey = "tx"
	LoggerKey     ContextKey = "logger"
	ParamsKey     ContextKey = "params"
	RequestStart  ContextKey = "request_start"
	TenantIDKey   ContextKey = "tenant_id"
	TenantSlugKey ContextKey = "tenant_slug"
	CallerKey     ContextKey = "caller"
)

// Validate is the shared validator instance. Field errors are reported by json name.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
