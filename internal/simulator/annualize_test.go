package simulator

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestDaysHeld(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"same day", date(2020, 1, 1), date(2020, 1, 1), 0},
		{"leap year", date(2020, 1, 1), date(2021, 1, 1), 366},
		{"partial day floors", date(2020, 1, 1), date(2020, 1, 2).Add(-time.Hour), 0},
		{"inverted", date(2020, 1, 10), date(2020, 1, 1), -9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysHeld(tt.from, tt.to); got != tt.want {
				t.Errorf("DaysHeld() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnnualize(t *testing.T) {
	tests := []struct {
		name   string
		ratio  float64
		from   time.Time
		to     time.Time
		wantOK bool
	}{
		{"inverted range", 1.5, date(2021, 1, 1), date(2020, 1, 1), false},
		{"same day", 1.5, date(2020, 1, 1), date(2020, 1, 1), false},
		{"one day", 1.01, date(2020, 1, 1), date(2020, 1, 2), false},
		{"three days", 1.01, date(2020, 1, 1), date(2020, 1, 4), false},
		{"four days", 1.01, date(2020, 1, 1), date(2020, 1, 5), true},
		{"two years", 1.21, date(2020, 1, 1), date(2022, 1, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Annualize(tt.ratio, tt.from, tt.to)
			if got.Valid() != tt.wantOK {
				t.Errorf("Valid() = %v, want %v", got.Valid(), tt.wantOK)
			}
		})
	}
}

func TestAnnualize_CompoundRate(t *testing.T) {
	// 1.21 over two years is 10% a year, up to the 365.25-day year.
	rate, ok := Annualize(1.21, date(2020, 1, 1), date(2022, 1, 1)).Get()
	if !ok {
		t.Fatal("expected annualized rate")
	}
	years := 731.0 / 365.25
	want := (math.Pow(1.21, 1/years) - 1) * 100
	if rate != want {
		t.Errorf("rate = %v, want %v", rate, want)
	}
	if math.Abs(rate-10) > 0.1 {
		t.Errorf("rate = %v, expected ~10", rate)
	}
}

func TestAnnualized_JSON(t *testing.T) {
	absent, err := json.Marshal(NotAnnualized)
	if err != nil {
		t.Fatal(err)
	}
	if string(absent) != "null" {
		t.Errorf("absent rate = %s, want null", absent)
	}

	present, err := json.Marshal(AnnualizedRate(12.5))
	if err != nil {
		t.Fatal(err)
	}
	if string(present) != "12.5" {
		t.Errorf("present rate = %s, want 12.5", present)
	}
}
