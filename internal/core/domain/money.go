package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MaxMoney is the largest amount a DECIMAL(10,2) column can hold, in cents.
const MaxMoney Money = 99999999_99

var moneyPattern = regexp.MustCompile(`^(\d{1,8})(?:\.(\d{1,2}))?$`)

var ErrInvalidMoney = errors.New("invalid decimal amount")

// Money is a non-negative amount with two fractional digits, stored in cents.
type Money int64

// ParseMoney accepts "12", "12.5" or "12.50". Signs, exponents and more than
// two fractional digits are rejected.
func ParseMoney(s string) (Money, error) {
	m := moneyPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	units, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	var cents int64
	switch frac := m[2]; len(frac) {
	case 1:
		cents = int64(frac[0]-'0') * 10
	case 2:
		cents = int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	}

	return Money(units*100 + cents), nil
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/100, int64(m)%100)
}

// MarshalJSON renders the amount as a decimal string so no precision is lost.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
