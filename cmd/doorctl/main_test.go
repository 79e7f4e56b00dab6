package main

import "testing"

func TestCommandToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"on", "#on"},
		{"off", "#off"},
		{"ON", "#on"},
		{"  Off ", "#off"},
		{"#on", "#on"},
		{"#off", "#off"},
		{"#reset", "#reset"},
		{"foo", "foo"},
	}
	for _, tc := range cases {
		if got := commandToken(tc.in); got != tc.want {
			t.Errorf("commandToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
