package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text untouched", in: "I need 10 lakh for home renovation", want: "I need 10 lakh for home renovation"},
		{name: "tags stripped", in: "<b>Asha</b> Rao", want: "Asha Rao"},
		{name: "script removed", in: `<script>alert("x")</script>hello`, want: `alert("x")hello`},
		{name: "encoded tag does not survive decoding", in: "&lt;img src=x&gt;name", want: "name"},
		{name: "whitespace trimmed", in: "  12 MG Road  ", want: "12 MG Road"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
