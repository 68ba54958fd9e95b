// Package validators holds the request-binding middlewares shared by every
// route group. Each mutation has its own tagged request type; Body parses and
// validates it once and the controller reads it back with Request.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"coursehub/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate returns field -> message for every failed rule, or nil.
func Validate(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long!", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long!", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return "Invalid email!"
	case "url":
		return fmt.Sprintf("%s must be a valid URL!", fe.Field())
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates!", fe.Field())
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s is out of range!", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid!", fe.Field())
	}
}

// Body parses the JSON body into R, trims string fields, validates, and
// stores the result for Request.
func Body[R any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(R)
		if err := c.BodyParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trimStrings(req)
		if errs := Validate(req); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("request", req)
		return c.Next()
	}
}

// Request returns the value stored by Body, or nil.
func Request[R any](c *fiber.Ctx) *R {
	req, _ := c.Locals("request").(*R)
	return req
}

// Params parses positive integer route params and stores them as uint.
func Params(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range names {
			raw := strings.TrimSpace(c.Params(name))
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
					fmt.Sprintf("Invalid %s!", strings.ReplaceAll(name, "_", " ")), nil)
			}
			c.Locals(name, uint(id))
		}
		return c.Next()
	}
}

// ID returns a param stored by Params.
func ID(c *fiber.Ctx, name string) uint {
	id, _ := c.Locals(name).(uint)
	return id
}

type Page struct {
	Page  int `query:"page" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pagination parses ?page=&limit= with defaults 1 and 20.
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := new(Page)
		if err := c.QueryParser(p); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errs := Validate(p); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		if p.Page == 0 {
			p.Page = 1
		}
		if p.Limit == 0 {
			p.Limit = 20
		}
		c.Locals("page", p)
		return c.Next()
	}
}

func PageOf(c *fiber.Ctx) Page {
	if p, ok := c.Locals("page").(*Page); ok {
		return *p
	}
	return Page{Page: 1, Limit: 20}
}

func trimStrings(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
