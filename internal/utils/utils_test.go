package utils

import "testing"

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:00", want: "08:00"},
		{in: "8:00", want: "08:00"},
		{in: "08:00 WIB", want: "08:00"},
		{in: " 13:30 ", want: "13:30"},
		{in: "25:00", wantErr: true},
		{in: "pagi", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizeTime(%q) expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeTime(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeTime(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRupiah(t *testing.T) {
	if got := FormatRupiah(1500000); got != "Rp1.500.000" {
		t.Fatalf("FormatRupiah = %q", got)
	}
	if got := FormatRupiah(-2500); got != "-Rp2.500" {
		t.Fatalf("FormatRupiah negative = %q", got)
	}
	if got := FormatRupiah(0); got != "Rp0" {
		t.Fatalf("FormatRupiah zero = %q", got)
	}

	for in, want := range map[string]int64{
		"Rp 800.000":    800000,
		"1,000":         1000,
		"150000":        150000,
		"Rp800.000,-":   800000,
		"IDR 800,000":   800000,
		"Rp 800.000,00": 800000,
		"Rp. 2.500":     2500,
	} {
		got, err := ParseRupiahToInt(in)
		if err != nil || got != want {
			t.Fatalf("ParseRupiahToInt(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"Rp", "delapan ratus", "-5000", "Rp 8x0.000"} {
		if _, err := ParseRupiahToInt(in); err == nil {
			t.Fatalf("ParseRupiahToInt(%q) expected error", in)
		}
	}
}

func TestIsTrunkRoute(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{"Pasir Pengaraian", "Pekanbaru", true},
		{"Pekanbaru", "Pasir Pengaraian", true},
		{"PKU", "Bangkinang", true},
		{"Ujung Batu", "Pekanbaru", true},
		{"Muara Rumbai", "Tandun", true},
		{"Pekanbaru", "Duri", false},
		{"Pekanbaru", "Pekanbaru", false},
		{"", "Pekanbaru", false},
	}
	for _, tc := range cases {
		if got := IsTrunkRoute(tc.from, tc.to); got != tc.want {
			t.Fatalf("IsTrunkRoute(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSeatHelpers(t *testing.T) {
	got := SplitSeatList(" 1a, 2B;1A\n3c ")
	want := []string{"1A", "2B", "3C"}
	if len(got) != len(want) {
		t.Fatalf("SplitSeatList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SplitSeatList = %v, want %v", got, want)
		}
	}
	if NormalizeSpace("  Jl.   Sudirman  ") != "Jl. Sudirman" {
		t.Fatalf("NormalizeSpace did not collapse whitespace")
	}
}
