// Package validate implements the client-side field checks that run before
// any request is sent.
package validate

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Credentials checks the login form fields.
func Credentials(username, password string) error {
	return validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
}

// Registration checks the register form fields.
func Registration(email, username, password string) error {
	return validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.EmailFormat),
		"username": validation.Validate(username, validation.Required, validation.Length(3, 50)),
		"password": validation.Validate(password, validation.Required, validation.Length(6, 0)),
	}.Filter()
}

// PostDraft checks a post's title and content before create or update.
func PostDraft(title, content string) error {
	return validation.Errors{
		"title":   validation.Validate(strings.TrimSpace(title), validation.Required, validation.Length(0, 255)),
		"content": validation.Validate(content, validation.Required, validation.Length(10, 0)),
	}.Filter()
}

// Comment rejects blank (whitespace-only) text.
func Comment(text string) error {
	return validation.Validate(strings.TrimSpace(text),
		validation.Required.Error("comment cannot be blank"))
}

// Profile checks the editable profile fields.
func Profile(username, email string) error {
	return validation.Errors{
		"username": validation.Validate(username, validation.Required, validation.Length(3, 50)),
		"email":    validation.Validate(email, validation.Required, is.EmailFormat),
	}.Filter()
}
