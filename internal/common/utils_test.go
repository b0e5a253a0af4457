package common

import "testing"

func TestHasAnyFold(t *testing.T) {
	cases := []struct {
		s    string
		subs []string
		want bool
	}{
		{"Light Snow", []string{"snow"}, true},
		{"Freezing Ice Pellets", []string{"sleet", "ice"}, true},
		{"CLOUDY", []string{"cloud"}, true},
		{"Clear", []string{"rain", "snow"}, false},
		{"", []string{"rain"}, false},
		{"anything", nil, false},
	}

	for _, tc := range cases {
		if got := HasAnyFold(tc.s, tc.subs...); got != tc.want {
			t.Fatalf("HasAnyFold(%q, %v) = %v, want %v", tc.s, tc.subs, got, tc.want)
		}
	}
}
