package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// NonFieldErrors is the key used for errors not tied to a single field
const NonFieldErrors = "non_field_errors"

var setupOnce sync.Once

// Setup makes gin's validator report json field names instead of Go names
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// BindJSON decodes the request body into obj and validates it.
// An empty body is validated as-is, so required fields are reported individually.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	return Translate(err)
}

// Translate converts binding and validator errors into a field validation error
func Translate(err error) error {
	if err == nil {
		return nil
	}

	fields := apperrors.FieldErrors{}

	var validationErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			fields.Add(fieldName(fe), message(fe))
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = NonFieldErrors
		}
		fields.Add(field, typeMessage(typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		fields.Add(NonFieldErrors, fmt.Sprintf("JSON parse error - %s", err.Error()))
	default:
		fields.Add(NonFieldErrors, "Invalid data.")
	}

	return fields.Validation()
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(indirect(fe.Value())))
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "max":
		if isString(fe.Kind()) {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if isString(fe.Kind()) {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Float32, reflect.Float64:
		return "A valid number is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	default:
		return "Incorrect type."
	}
}

func isString(k reflect.Kind) bool {
	return k == reflect.String
}

func indirect(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	return rv.Interface()
}
