package output

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether f is a terminal that should get colored
// output. NO_COLOR and TERM=dumb turn colors off.
func ColorEnabled(f *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
