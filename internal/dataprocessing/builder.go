package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "floxcli/internal/errors"
	"floxcli/internal/ingest"
	"floxcli/pkg/contracts/domain"
)

// StudentBuildError reports a source row that could not become a Student
type StudentBuildError struct {
	Row   int
	Field string
	Err   error
}

func (e *StudentBuildError) Error() string {
	return fmt.Sprintf("row %d: invalid %s: %v", e.Row, e.Field, e.Err)
}

func (e *StudentBuildError) Unwrap() error {
	return e.Err
}

// AppError converts the failure into a recoverable ROW application error
func (e *StudentBuildError) AppError() *apperrors.AppError {
	return apperrors.NewRowError(e.Row, fmt.Sprintf("invalid %s", e.Field), e.Err).
		WithContext("field", e.Field)
}

// BuildStudent converts one row into a Student. It has no side effects.
func BuildStudent(row ingest.Row) (*domain.Student, error) {
	userID, err := row.UserID.Int()
	if err != nil {
		return nil, &StudentBuildError{Row: row.Index, Field: ingest.ColUserID, Err: err}
	}

	s := domain.NewStudent(userID)

	if !row.Email.IsNull() {
		s.Email = strings.ToLower(strings.TrimSpace(row.Email.String()))
	}
	s.Title = optionalString(row.Title)
	s.Name = optionalString(row.Name)
	s.Surname = optionalString(row.Surname)
	s.InternalNote = optionalString(row.InternalNote)

	if !row.Active.IsNull() {
		s.Active = row.Active.Truthy()
	}
	if !row.Newsletter.IsNull() {
		s.Newsletter = row.Newsletter.Truthy()
	}

	s.AddressStreet = optionalString(row.AddressStreet)
	s.AddressCity = optionalString(row.AddressCity)
	s.AddressZip = optionalString(row.AddressZip)
	s.AddressCountry = optionalString(row.AddressCountry)

	if !row.AddressPhone.IsNull() {
		phone, err := normalizePhone(row.AddressPhone)
		if err != nil {
			return nil, &StudentBuildError{Row: row.Index, Field: ingest.ColAddressPhone, Err: err}
		}
		s.AddressPhone = &phone
	}

	return s, nil
}

func optionalString(v ingest.Value) *string {
	if v.IsNull() {
		return nil
	}
	s := strings.TrimSpace(v.String())
	return &s
}

// normalizePhone renders an integer-like phone value as a plain digit string
func normalizePhone(v ingest.Value) (string, error) {
	switch v.Kind {
	case ingest.KindNumber:
		n, err := v.Int()
		if err != nil {
			return "", err
		}
		if n < 0 {
			return "", fmt.Errorf("phone %d is negative", n)
		}
		return strconv.FormatInt(n, 10), nil
	case ingest.KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return "", fmt.Errorf("phone is empty")
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return "", fmt.Errorf("phone %q is not a plain number", v.Str)
			}
		}
		return s, nil
	default:
		return "", fmt.Errorf("phone has unsupported type %s", v.Kind)
	}
}
