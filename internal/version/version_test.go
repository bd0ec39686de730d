package version

import (
	"strings"
	"testing"
)

func TestApp(t *testing.T) {
	v := App()
	if v == "" || strings.ContainsAny(v, " \n") {
		t.Errorf("App() = %q; want a trimmed, non-empty version", v)
	}
	if got := String(); !strings.HasPrefix(got, v+"@") || !strings.Contains(got, Platform()) {
		t.Errorf("String() = %q", got)
	}
}
