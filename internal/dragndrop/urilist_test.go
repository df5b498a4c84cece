package dragndrop

import "testing"

func TestParseURIList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"file:///tmp/a.txt\nfile:///tmp/b.txt\n", []string{"/tmp/a.txt", "/tmp/b.txt"}},
		{"file:///tmp/a.txt\r\nfile:///tmp/b.txt", []string{"/tmp/a.txt", "/tmp/b.txt"}},
		{"/plain/path\n", []string{"/plain/path"}},
		{"# comment\r\nfile:///x\r\n\r\n", []string{"/x"}},
		{"", nil},
		{"file:///tmp/my%20file.txt\n", []string{"/tmp/my file.txt"}},
		{"file:///tmp/caf%C3%A9\n", []string{"/tmp/café"}},
		{"file:///tmp/100%\n", []string{"/tmp/100%"}},
	}
	for _, tt := range tests {
		got := ParseURIList(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("ParseURIList(%q): expected %v, got %v", tt.in, tt.want, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("ParseURIList(%q): expected %v, got %v", tt.in, tt.want, got)
			}
		}
	}
}
