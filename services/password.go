package services

import (
	"errors"
	"unicode"
)

var (
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters long")
	ErrPasswordNoLetter = errors.New("Password must contain at least one letter")
	ErrPasswordNoNumber = errors.New("Password must contain at least one number")
	ErrPasswordCommon   = errors.New("Password is too common")
)

// PasswordValidator validates passwords against the signup policy.
type PasswordValidator struct {
	minLength       int
	commonPasswords map[string]bool
}

// NewPasswordValidator creates a validator with the default policy.
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		minLength: 8,
		commonPasswords: map[string]bool{
			"password1": true,
			"12345678a": true,
			"qwerty123": true,
			"abc12345":  true,
			"shoptube1": true,
		},
	}
}

// ValidatePassword checks length and character classes.
func (pv *PasswordValidator) ValidatePassword(password string) error {
	if len([]rune(password)) < pv.minLength {
		return ErrPasswordTooShort
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasLetter {
		return ErrPasswordNoLetter
	}
	if !hasNumber {
		return ErrPasswordNoNumber
	}
	if pv.commonPasswords[password] {
		return ErrPasswordCommon
	}
	return nil
}
