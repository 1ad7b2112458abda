package company

import (
	"strings"

	"tms/domain/shared"
)

// Cnpj Brazilian company tax identifier, stored as 14 digits
type Cnpj string

// NewCnpj Validate and normalize a CNPJ (digits only, punctuation stripped)
func NewCnpj(value string) (Cnpj, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)

	if len(cleaned) != 14 {
		return "", shared.NewValidationError("company", "cnpj", "cnpj must contain 14 digits")
	}
	return Cnpj(cleaned), nil
}

func (c Cnpj) String() string { return string(c) }
