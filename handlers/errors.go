package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a dotted field path (items.0.quantity) to its messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

func (fe FieldErrors) Merge(other FieldErrors) {
	for k, msgs := range other {
		fe[k] = append(fe[k], msgs...)
	}
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() != int64(notAnInteger)
		})
	}
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// fieldPath turns "StorePreOrderRequest.items[0].quantity" into "items.0.quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

// toFieldErrors translates binding and validation failures into field
// messages. ok is false for errors that do not point at a field, such as
// malformed JSON.
func toFieldErrors(err error) (FieldErrors, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := FieldErrors{}
		for _, fe := range verrs {
			path := fieldPath(fe.Namespace())
			out.Add(path, validationMessage(path, fe))
		}
		return out, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		path := typeErr.Field
		return FieldErrors{path: {fmt.Sprintf("The %s field must be %s.", path, kindNoun(typeErr.Type.Kind()))}}, true
	}
	return nil, false
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "integer":
		return fmt.Sprintf("The %s field must be an integer.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s field must be a valid UUID.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s%s.", field, fe.Param(), sizeUnit(fe.Kind()))
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s%s.", field, fe.Param(), sizeUnit(fe.Kind()))
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return fmt.Sprintf("The %s field is invalid.", field)
}

func sizeUnit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

func kindNoun(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Bool:
		return "true or false"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	}
	return "valid"
}

func validationFailed(c *gin.Context, errs FieldErrors) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "Validation failed",
		"errors":  errs,
	})
}

// bindFailed answers a failed ShouldBind* call.
func bindFailed(c *gin.Context, err error) {
	if errs, ok := toFieldErrors(err); ok {
		validationFailed(c, errs)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
}

func serverError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}
