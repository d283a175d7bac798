package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseLooseFloat(t *testing.T) {
	testCases := []struct {
		input    any
		expected float64
		ok       bool
	}{
		{nil, 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"1,250.50", 1250.5, true},
		{"45%", 45, true},
		{" 12 ", 12, true},
		{"abc", 0, false},
		{float64(3.5), 3.5, true},
		{7, 7, true},
		{json.Number("8.25"), 8.25, true},
	}

	for _, tc := range testCases {
		got, ok := ParseLooseFloat(tc.input)
		if ok != tc.ok || got != tc.expected {
			t.Errorf("ParseLooseFloat(%#v): expected (%v, %v), got (%v, %v)", tc.input, tc.expected, tc.ok, got, ok)
		}
	}
}

func TestParseLooseInt(t *testing.T) {
	testCases := []struct {
		input    any
		expected int
		ok       bool
	}{
		{"2024", 2024, true},
		{"2024.0", 2024, true},
		{"2023.9999999999", 2024, true},
		{"7.6", 7, true},
		{"", 0, false},
	}

	for _, tc := range testCases {
		got, ok := ParseLooseInt(tc.input)
		if ok != tc.ok || got != tc.expected {
			t.Errorf("ParseLooseInt(%#v): expected (%v, %v), got (%v, %v)", tc.input, tc.expected, tc.ok, got, ok)
		}
	}
}

func TestParseFlexibleDate(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"2024-03-05", "2024-03-05", true},
		{"3/5/2024", "2024-03-05", true},
		{"03/05/2024", "2024-03-05", true},
		{"  2024-12-31 ", "2024-12-31", true},
		{"2024/03/05", "", false},
		{"31/12/2024", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		got, ok := ParseFlexibleDate(tc.input)
		if ok != tc.ok || got.String() != tc.expected {
			t.Errorf("ParseFlexibleDate(%q): expected (%q, %v), got (%q, %v)", tc.input, tc.expected, tc.ok, got.String(), ok)
		}
	}

	if !IsISODate("2024-01-02") || IsISODate("1/2/2024") {
		t.Errorf("IsISODate mismatch")
	}
}

func TestDate_JSON(t *testing.T) {
	payload := struct {
		Set   Date `json:"set"`
		Unset Date `json:"unset"`
	}{Set: NewDate(2024, time.July, 4)}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"set":"2024-07-04","unset":null}` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var back struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"7/4/2024"}`), &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.D.String() != "2024-07-04" {
		t.Errorf("Expected 2024-07-04, got %s", back.D)
	}
	if err := json.Unmarshal([]byte(`{"d":"someday"}`), &back); err == nil {
		t.Errorf("Expected invalid date to fail")
	}
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal([]Amount{amountOf("1500.25"), NoAmount()})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `[1500.25,null]` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var a Amount
	if err := json.Unmarshal([]byte(`"2,000"`), &a); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if a.String() != "2000" {
		t.Errorf("Expected 2000, got %s", a)
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range ValidRoles {
		if _, err := ParseRole(string(r)); err != nil {
			t.Errorf("Expected %q to be valid: %v", r, err)
		}
	}
	if _, err := ParseRole("Superuser"); err == nil {
		t.Errorf("Expected unknown role to fail")
	}
	if !DSEngineer.In(Administrator, DSEngineer) || Guest.In(Administrator) {
		t.Errorf("Role.In mismatch")
	}
}

func TestSplitProjectLabel(t *testing.T) {
	name, number := SplitProjectLabel("Warehouse Fitout - PO# 2024-017")
	if name != "Warehouse Fitout" || number != "2024-017" {
		t.Errorf("Unexpected split: %q %q", name, number)
	}
	name, number = SplitProjectLabel(" Plain name ")
	if name != "Plain name" || number != "" {
		t.Errorf("Unexpected split: %q %q", name, number)
	}
}
