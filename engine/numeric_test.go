package engine_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tiptally/shift-engine/engine"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, got decimal.Decimal, want string, msg string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: got %s, want %s", msg, got, want)
	}
}

func TestNormalize_AbsentAndEmpty(t *testing.T) {
	// GIVEN: missing or blank input
	// THEN: everything normalizes to 0

	cases := map[string]engine.Numeric{
		"zero value":  {},
		"empty":       engine.Str(""),
		"whitespace":  engine.Str("   "),
		"nan":         engine.Num(math.NaN()),
		"pos inf":     engine.Num(math.Inf(1)),
		"neg inf":     engine.Num(math.Inf(-1)),
		"no digits":   engine.Str("abc"),
		"lone minus":  engine.Str("-"),
		"double sign": engine.Str("--5"),
	}
	for name, in := range cases {
		if !engine.Normalize(in).IsZero() {
			t.Errorf("%s: expected 0, got %s", name, engine.Normalize(in))
		}
	}
}

func TestNormalize_Numbers(t *testing.T) {
	assertDecimal(t, engine.Normalize(engine.Num(12.5)), "12.5", "plain number")
	assertDecimal(t, engine.Normalize(engine.Num(-3)), "-3", "negative number")
	assertDecimal(t, engine.Normalize(engine.Num(0)), "0", "zero")
}

func TestNormalize_TextScrubbing(t *testing.T) {
	// GIVEN: strings with currency noise, locale commas, stray characters
	// THEN: the canonical step order applies

	cases := []struct {
		in   string
		want string
	}{
		{"5,0", "5"},          // first comma is the decimal separator
		{"$12.50", "12.5"},    // currency symbol stripped
		{" $ 1 200 ", "1200"}, // spaces stripped
		{"5.", "5"},           // trailing dot dropped
		{"-40", "-40"},
		{"-.5", "-0.5"},
		{"7h", "7"},
		{"1.234.50", "1.234"},  // only the leading numeric run parses
		{"$1,234.50", "1.234"}, // comma became ".", rest of run ignored
		{"12,34,56", "12.3456"},
	}
	for _, c := range cases {
		assertDecimal(t, engine.Normalize(engine.Str(c.in)), c.want, c.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	// GIVEN: any value already normalized
	// WHEN: its string form is normalized again
	// THEN: the result is unchanged

	for _, v := range []float64{0, 1, -1, 12.34, -0.07, 1234.5, 17.999} {
		once := engine.Normalize(engine.Num(v))
		twice := engine.Normalize(engine.Str(once.String()))
		if !once.Equal(twice) {
			t.Errorf("normalize not idempotent for %v: %s != %s", v, once, twice)
		}
	}
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2.675", "2.68"},
		{"-2.675", "-2.68"},
		{"2.674", "2.67"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"10", "10"},
	}
	for _, c := range cases {
		assertDecimal(t, engine.Round2(dec(c.in)), c.want, c.in)
	}
}

func TestNumeric_JSON(t *testing.T) {
	// Numbers, strings, and null all unmarshal; the raw token survives.

	var in struct {
		A engine.Numeric `json:"a"`
		B engine.Numeric `json:"b"`
		C engine.Numeric `json:"c"`
		D engine.Numeric `json:"d"`
	}
	if err := in.A.UnmarshalJSON([]byte(`5.0`)); err != nil {
		t.Fatalf("number: %v", err)
	}
	if err := in.B.UnmarshalJSON([]byte(`"$120"`)); err != nil {
		t.Fatalf("string: %v", err)
	}
	if err := in.C.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Fatalf("null: %v", err)
	}
	in.D = engine.Str("")

	assertDecimal(t, engine.Normalize(in.A), "5", "json number")
	assertDecimal(t, engine.Normalize(in.B), "120", "json string")
	assertDecimal(t, engine.Normalize(in.C), "0", "json null")

	if in.C.Present() {
		t.Error("null should not be present")
	}
	if in.D.Present() {
		t.Error("blank string should not be present")
	}
	if !in.A.Present() {
		t.Error("number should be present")
	}
}

func TestNumeric_JSONExponentNumbers(t *testing.T) {
	// GIVEN: JSON numbers in exponent notation
	// THEN: they normalize to their numeric value, never through the
	//       text-scrubbing path (which would read "1e5" as 15)

	cases := []struct {
		token string
		want  string
	}{
		{`1e5`, "100000"},
		{`1.5e2`, "150"},
		{`2E-3`, "0.002"},
		{`-3e2`, "-300"},
	}
	for _, c := range cases {
		var n engine.Numeric
		if err := n.UnmarshalJSON([]byte(c.token)); err != nil {
			t.Fatalf("%s: %v", c.token, err)
		}
		assertDecimal(t, engine.Normalize(n), c.want, c.token)
	}
}

func TestNumeric_MarshalMirrorsArrival(t *testing.T) {
	// Values that arrived as numbers re-emit as numbers; text stays text.

	cases := []struct {
		in   engine.Numeric
		want string
	}{
		{engine.Num(6), `6`},
		{engine.Num(7.5), `7.5`},
		{engine.Str("$120"), `"$120"`},
		{engine.Numeric{}, `null`},
	}
	for _, c := range cases {
		got, err := c.in.MarshalJSON()
		if err != nil {
			t.Fatalf("%s: %v", c.want, err)
		}
		if string(got) != c.want {
			t.Errorf("got %s, want %s", got, c.want)
		}
	}

	// A number token round-trips through unmarshal as a number too.
	var n engine.Numeric
	if err := n.UnmarshalJSON([]byte(`5.0`)); err != nil {
		t.Fatal(err)
	}
	got, err := n.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `5.0` {
		t.Errorf("got %s, want 5.0", got)
	}
}
