package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"stemhub/model"
	"stemhub/service"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to what is wrong with it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息里使用 JSON 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("genre", validGenre); err != nil {
		panic(err)
	}
	return v
}

func validGenre(fl validator.FieldLevel) bool {
	g, ok := fl.Field().Interface().(model.Genre)
	return ok && g.Valid()
}

func genreNames() string {
	names := make([]string, 0, len(model.Genres))
	for _, g := range model.Genres {
		names = append(names, string(g))
	}
	return strings.Join(names, ", ")
}

// decodeJSON reads a single JSON object from the body into dst and
// validates it. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return ErrMalformed.New("request body must contain a single JSON object")
	}
	return validateStruct(dst)
}

// decodeError turns encoding/json errors into messages that name the JSON
// field, never the Go type it was decoded into.
func decodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrMalformed.New("request body is empty")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return ErrMalformed.New("request body must be a JSON object")
		}
		return service.ErrValidation.Wrap(FieldErrors{typeErr.Field: "must be " + jsonKind(typeErr.Type)})
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrMalformed.New("invalid JSON body")
	}

	// DisallowUnknownFields: json: unknown field "audio"
	if field, ok := strings.CutPrefix(err.Error(), `json: unknown field "`); ok {
		return service.ErrValidation.Wrap(FieldErrors{strings.TrimSuffix(field, `"`): "is not allowed"})
	}
	return ErrMalformed.New("invalid JSON body")
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Ptr:
		return jsonKind(t.Elem())
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	}
	return "a valid value"
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrMalformed.Wrap(err)
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return service.ErrValidation.Wrap(fields)
}

// fieldPath drops the struct name from the namespace: createTrackRequest.genre[0] -> genre[0]
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Param() == "1" {
			return "cannot be empty"
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "genre":
		return "must be one of " + genreNames()
	}
	return fmt.Sprintf("failed the %q check", fe.Tag())
}
