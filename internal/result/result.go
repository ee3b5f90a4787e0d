// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package result defines the outcome codes shared by every service call
// and the JSON envelope form submissions receive.
package result

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the fixed outcome taxonomy surfaced to the UI.
type Code int

// Outcome codes. Values are part of the JSON contract and must not change.
const (
	CodeSuccess     Code = 0
	CodeValidation  Code = 1
	CodeAuth        Code = 2
	CodeDB          Code = 3
	CodeEmailExists Code = 4
	CodeServer      Code = 5
	CodeForbidden   Code = 6
)

// String returns the stable key for the code, also used as the i18n key suffix.
func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeValidation:
		return "validation"
	case CodeAuth:
		return "auth"
	case CodeDB:
		return "db"
	case CodeEmailExists:
		return "email_exists"
	case CodeServer:
		return "server"
	case CodeForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// MessageKey returns the translation key for the code's default message.
func (c Code) MessageKey() string {
	return "result." + c.String()
}

// HTTPStatus maps the code to the status used for JSON responses.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSuccess:
		return http.StatusOK
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeAuth:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeEmailExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Result is the envelope returned to form submissions.
type Result struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// OK builds a success result.
func OK(message string) Result {
	return Result{Code: CodeSuccess, Message: message}
}

// WithRedirect returns a copy of r that navigates to url on success.
func (r Result) WithRedirect(url string) Result {
	r.Redirect = url
	return r
}

// WithData returns a copy of r carrying data.
func (r Result) WithData(data any) Result {
	r.Data = data
	return r
}

// Succeeded reports whether the result carries CodeSuccess.
func (r Result) Succeeded() bool {
	return r.Code == CodeSuccess
}

// Error is a failed outcome. Message is safe to show to users; Err is the
// underlying cause and is only logged.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error with the given code and user-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code to an underlying error.
func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// Validation returns a validation error carrying per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Fields: fields}
}

// Errorf returns an Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from err. nil maps to CodeSuccess and errors
// without a code map to CodeServer.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeServer
}

// FieldsOf returns per-field messages carried by err, if any.
func FieldsOf(err error) map[string]string {
	var re *Error
	if errors.As(err, &re) {
		return re.Fields
	}
	return nil
}

// MessageOf returns the user-facing message carried by err, or "".
func MessageOf(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
