package company

import "errors"

var (
	// ErrCompanyNotFound Company does not exist
	ErrCompanyNotFound = errors.New("company not found")

	// ErrCnpjExists Another company already registered this CNPJ
	ErrCnpjExists = errors.New("cnpj already registered")
)
