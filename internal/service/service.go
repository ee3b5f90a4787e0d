// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the application's use cases. Every exported
// method takes the caller's authz.Principal, checks the capability it needs
// before touching the database, and returns nil or a *result.Error.
package service

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/heavyfix/internal/result"
)

// Page is one page of a listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// validate is shared by all services. Field names in errors are the json
// (or form) tag names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of s and converts failures into a
// Validation result with one message per field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return result.Wrap(result.CodeServer, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if _, seen := fields[e.Field()]; !seen {
			fields[e.Field()] = validationMessage(e)
		}
	}
	return result.Validation(fields)
}

// validationMessage returns a human-readable validation message.
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "eqfield":
		return "Does not match " + strings.ToLower(e.Param())
	case "datetime":
		return "Must be a date in " + e.Param() + " format"
	default:
		return "Invalid value"
	}
}

// dbError maps a store error to a result code: no rows become a
// Validation "not found", a duplicate user email becomes EmailExists and
// anything else becomes DB. Result errors pass through unchanged.
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var re *result.Error
	if errors.As(err, &re) {
		return re
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &result.Error{Code: result.CodeValidation, Message: "not found", Err: err}
	}
	if isUniqueViolation(err, "users.email") {
		return &result.Error{Code: result.CodeEmailExists, Message: "email already registered", Err: err}
	}
	return result.Wrap(result.CodeDB, err)
}

// isUniqueViolation matches the constraint error text both SQLite drivers
// produce, e.g. "UNIQUE constraint failed: users.email".
func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

func notFound(what string) error {
	return &result.Error{Code: result.CodeValidation, Message: what + " not found", Err: sql.ErrNoRows}
}
