package tomledit

import (
	"testing"
)

func FuzzParse(f *testing.F) {
	// Seed corpus
	f.Add("[package]\nname = \"demo\"\nversion = \"0.1.0\"\n")
	f.Add("[dependencies]\nserde = { version = \"1.0\", features = [\"derive\"] }\n")
	f.Add("# comment\nkey = \"value\" # trailing\n\n[[bin]]\nname = \"x\"\n")
	f.Add("a = '''\nmulti\nline'''\n")

	f.Fuzz(func(t *testing.T, data string) {
		doc, err := Parse([]byte(data))
		if err != nil {
			return // rejecting garbage is fine, panicking is not
		}

		// An accepted document must serialize back to its input.
		if got := doc.String(); got != data {
			t.Fatalf("round trip changed document:\n in: %q\nout: %q", data, got)
		}

		// The output must still parse.
		if _, err := Parse([]byte(doc.String())); err != nil {
			t.Fatalf("reparse failed: %v", err)
		}
	})
}
