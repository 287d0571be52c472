package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a currency value in minor units (cents). All arithmetic on
// prices and totals goes through Amount so sums never drift.
type Amount int64

const minorPerMajor = 100

// MaxAmount is the largest representable amount
const MaxAmount = Amount(math.MaxInt64)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrOverflow      = errors.New("amount out of range")
)

// FromMajor converts whole currency units (e.g. 300 KES) to an Amount.
func FromMajor(major int64) Amount {
	return Amount(major * minorPerMajor)
}

// Parse reads a decimal string with at most two fractional digits.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	negative := false
	if s[0] == '-' || s[0] == '+' {
		negative = s[0] == '-'
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	var minor int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		minor, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	value := Amount(major*minorPerMajor + minor)
	if negative {
		value = -value
	}
	return value, nil
}

// CheckedAdd returns ErrOverflow instead of wrapping around
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %s + %s", ErrOverflow, a.Decimal(), b.Decimal())
	}
	return sum, nil
}

// CheckedMul multiplies a unit price by a quantity, returning ErrOverflow
// instead of wrapping around.
func (a Amount) CheckedMul(quantity int) (Amount, error) {
	if a == 0 || quantity == 0 {
		return 0, nil
	}
	q := Amount(quantity)
	product := a * q
	if product/q != a || (a == -1 && q == math.MinInt64) || (q == -1 && a == math.MinInt64) {
		return 0, fmt.Errorf("%w: %s x %d", ErrOverflow, a.Decimal(), quantity)
	}
	return product, nil
}

// Add saturates at the representable range. Use CheckedAdd where an
// overflow must be reported.
func (a Amount) Add(b Amount) Amount {
	sum, err := a.CheckedAdd(b)
	if err != nil {
		return saturate(b > 0)
	}
	return sum
}

// Mul multiplies a unit price by a quantity, saturating like Add.
func (a Amount) Mul(quantity int) Amount {
	product, err := a.CheckedMul(quantity)
	if err != nil {
		return saturate((a > 0) == (quantity > 0))
	}
	return product
}

func saturate(positive bool) Amount {
	if positive {
		return MaxAmount
	}
	return Amount(math.MinInt64)
}

func (a Amount) Major() int64 {
	return int64(a) / minorPerMajor
}

func (a Amount) Minor() int64 {
	m := int64(a) % minorPerMajor
	if m < 0 {
		return -m
	}
	return m
}

func (a Amount) IsZero() bool {
	return a == 0
}

// Decimal renders the amount as a plain decimal, e.g. "1100.00".
func (a Amount) Decimal() string {
	sign := ""
	if a < 0 {
		sign = "-"
	}
	major := a.Major()
	if major < 0 {
		major = -major
	}
	return fmt.Sprintf("%s%d.%02d", sign, major, a.Minor())
}

// String renders the amount with thousands separators, e.g. "1,100.00".
func (a Amount) String() string {
	sign := ""
	if a < 0 {
		sign = "-"
	}
	major := a.Major()
	if major < 0 {
		major = -major
	}
	return fmt.Sprintf("%s%s.%02d", sign, groupThousands(major), a.Minor())
}

// Format renders a display price such as "KES 1,100". Cents are only shown
// when non-zero.
func (a Amount) Format(currency string) string {
	sign := ""
	if a < 0 {
		sign = "-"
	}
	major := a.Major()
	if major < 0 {
		major = -major
	}
	text := sign + groupThousands(major)
	if minor := a.Minor(); minor != 0 {
		text = fmt.Sprintf("%s.%02d", text, minor)
	}
	if currency == "" {
		return text
	}
	return currency + " " + text
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	if text == "null" {
		return nil
	}
	v, err := Parse(text)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
