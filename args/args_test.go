package args

import "testing"

func TestParseEcho(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    Echo
		wantErr bool
	}{
		{name: "single word", in: "hello", want: Echo{Text: "hello", Repeat: 1}},
		{name: "multiple words", in: "hello world", want: Echo{Text: "hello world", Repeat: 1}},
		{name: "trailing repeat", in: "hello 3", want: Echo{Text: "hello", Repeat: 3}},
		{name: "repeat after phrase", in: "a b c 2", want: Echo{Text: "a b c", Repeat: 2}},
		{name: "surrounding spaces", in: "  hi  ", want: Echo{Text: "hi", Repeat: 1}},
		{name: "non numeric tail", in: "hello there5x", want: Echo{Text: "hello there5x", Repeat: 1}},
		{name: "empty", in: "", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
		{name: "repeat too large", in: "hi 11", wantErr: true},
		{name: "repeat zero", in: "hi 0", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEcho(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseEcho(%q) = %+v, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEcho(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseEcho(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}
