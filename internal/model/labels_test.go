package model

import "testing"

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"student_name":     "Student Name",
		"aadhaar_no":       "Aadhaar No.",
		"dob":              "DOB",
		"bpl_status":       "BPL Status",
		"classStandard":    "Class Standard",
		"parent-full-name": "Parent Full Name",
		"address2":         "Address 2",
		"no":               "No",
	}
	for input, want := range cases {
		if got := DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
