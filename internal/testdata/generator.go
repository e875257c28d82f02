package testdata

import (
	"fmt"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	minBirthDate = time.Date(1945, 1, 1, 0, 0, 0, 0, time.UTC)
	maxBirthDate = time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Session generates realistic values per FieldKind, caching each kind's
// first generated value so repeated references to the same field within
// one test ("my email" used in both a signup step and a later assertion)
// stay consistent.
type Session struct {
	mu     sync.Mutex
	cached map[FieldKind]string
}

// NewSession returns a Session with an empty value cache.
func NewSession() *Session {
	return &Session{cached: make(map[FieldKind]string)}
}

// Generate returns a realistic value for kind, generating and caching one
// on first use.
func (s *Session) Generate(kind FieldKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cached[kind]; ok {
		return v
	}
	v := generate(kind)
	s.cached[kind] = v
	return v
}

func generate(kind FieldKind) string {
	switch kind {
	case FieldUsername:
		return gofakeit.Username()
	case FieldFirstName:
		return gofakeit.FirstName()
	case FieldLastName:
		return gofakeit.LastName()
	case FieldFullName:
		return gofakeit.Name()
	case FieldEmail:
		return gofakeit.Email()
	case FieldPhone:
		return gofakeit.Phone()
	case FieldPassword, FieldConfirmPassword:
		return gofakeit.Password(true, true, true, true, false, 14)
	case FieldStreetAddress:
		return gofakeit.Street()
	case FieldCity:
		return gofakeit.City()
	case FieldState:
		return gofakeit.StateAbr()
	case FieldZip:
		return gofakeit.Zip()
	case FieldCountry:
		return gofakeit.Country()
	case FieldCompany:
		return gofakeit.Company()
	case FieldJobTitle:
		return gofakeit.JobTitle()
	case FieldDateOfBirth:
		return gofakeit.DateRange(minBirthDate, maxBirthDate).Format("2006-01-02")
	case FieldDate:
		return gofakeit.Date().Format("2006-01-02")
	case FieldAge:
		return fmt.Sprintf("%d", gofakeit.Number(18, 80))
	case FieldQuantity:
		return fmt.Sprintf("%d", gofakeit.Number(1, 10))
	case FieldDescription:
		return gofakeit.Sentence(8)
	case FieldURL:
		return gofakeit.URL()
	default:
		return ""
	}
}
