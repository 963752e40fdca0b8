package custody

import "fmt"

// Maj, Min and Fix are set on release. Tag is overwritten with the git tag
// at build time with
//
//	-ldflags "-X github.com/chidioffor/crypto-hybrid-sub000.Tag=$(git describe)"
var (
	Maj = 0
	Min = 3
	Fix = 0
	Tag = ""
)

// Version returns a human readable version of the application.
func Version() string {
	if Tag != "" {
		return Tag
	}
	return fmt.Sprintf("v%d.%d.%d", Maj, Min, Fix)
}
