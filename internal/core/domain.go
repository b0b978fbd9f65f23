package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date format stored in the Date column.
	DateLayout = "2006-01-02"
	// ClockLayout is the clock format stored in the Time column.
	ClockLayout = "15:04"
	// TimestampLayout matches the millisecond ISO-8601 timestamps written to CreatedAt.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

	// MinPasswordLength is the shortest password accepted at signup.
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type (
	// Expense is a normalized expense row. ID is derived from the storage
	// position for sheet-backed stores and is not stable under external edits.
	Expense struct {
		ID          int64   `json:"id"`
		UserID      string  `json:"userId"`
		Date        string  `json:"date"`
		Time        string  `json:"time"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		PaymentMode string  `json:"paymentMode"`
		Notes       string  `json:"notes"`
		CreatedAt   string  `json:"createdAt"`
	}

	// ExpenseInput carries the raw, user-supplied fields of a new expense.
	ExpenseInput struct {
		Date        string
		Time        string
		Amount      string
		Category    string
		PaymentMode string
		Notes       string
	}

	User struct {
		UserID       string
		Email        string
		PasswordHash string
		CreatedAt    string
	}

	// Identity is the authenticated subject carried by a session token.
	Identity struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
)

// Identity returns the public part of the user record.
func (u User) Identity() Identity {
	return Identity{UserID: u.UserID, Email: u.Email}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already normalized address.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces presence, a minimum length in characters and a
// maximum length in bytes.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// ParseAmount parses a user-supplied amount. The value must be a finite
// number greater than or equal to zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// NewExpense validates the input and fills defaults: date defaults to the
// day of now, time to the clock of now.
func NewExpense(userID string, in ExpenseInput, now time.Time) (Expense, error) {
	if strings.TrimSpace(userID) == "" {
		return Expense{}, ErrUserIDRequired
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, err
	}
	e := Expense{
		UserID:      userID,
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		Amount:      amount,
		Category:    strings.TrimSpace(in.Category),
		PaymentMode: strings.TrimSpace(in.PaymentMode),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now.UTC().Format(TimestampLayout),
	}
	if e.Date == "" {
		e.Date = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return Expense{}, ErrInvalidDate
	}
	if e.Time == "" {
		e.Time = now.Format(ClockLayout)
	} else if _, _, _, ok := ParseClock(e.Time); !ok {
		return Expense{}, ErrInvalidTime
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (e Expense) Validate() error {
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrCategoryRequired
	}
	if strings.TrimSpace(e.PaymentMode) == "" {
		return ErrPaymentModeRequired
	}
	return nil
}

// Day returns the calendar date of the expense at UTC midnight.
func (e Expense) Day() (time.Time, bool) {
	s := strings.TrimSpace(e.Date)
	if len(s) < len(DateLayout) {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// At combines date and time into an instant in loc. A missing time counts
// as midnight; a time that does not parse makes the instant unknown.
func (e Expense) At(loc *time.Location) (time.Time, bool) {
	d, ok := e.Day()
	if !ok {
		return time.Time{}, false
	}
	h, m, s := 0, 0, 0
	if strings.TrimSpace(e.Time) != "" {
		if h, m, s, ok = ParseClock(e.Time); !ok {
			return time.Time{}, false
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, s, 0, loc), true
}

// ParseClock parses "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (hour, minute, second int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	if vals[0] > 23 || vals[1] > 59 || vals[2] > 59 {
		return 0, 0, 0, false
	}
	return vals[0], vals[1], vals[2], true
}
