package gorules

import (
	"github.com/quasilyte/go-ruleguard/dsl"
)

func OsFilePermissionRule(m dsl.Matcher) {
	m.Match(`os.$name($file, $number, 0777)`).Report("os.$name called with file mode 0777")
	m.Match(`os.$name($file, 0777)`).Report("os.$name called with file mode 0777")
	m.Match(`os.$name(0777)`).Report("os.$name called with file mode 0777")

	m.Match(`os.$name($file, $number, os.ModePerm)`).Report("os.$name called with file mode os.ModePerm (0777)")
	m.Match(`os.$name($file, os.ModePerm)`).Report("os.$name called with file mode os.ModePerm (0777)")
	m.Match(`os.$name(os.ModePerm)`).Report("os.$name called with file mode os.ModePerm (0777)")
}

// ForbidPanicsRule only allows panics that flag a broken internal invariant
func ForbidPanicsRule(m dsl.Matcher) {
	m.Match(`panic($msg)`).
		Where(!m["msg"].Text.Matches(`^"BUG: `) && !m["msg"].Text.Matches(`^fmt\.Sprintf\("BUG: `)).
		Report("panics should not be manually used, return an error or prefix the message with BUG:")
}

// BigIntIdentityRule catches pointer comparisons of big integers
func BigIntIdentityRule(m dsl.Matcher) {
	m.Match(`$x == $y`, `$x != $y`).
		Where(m["x"].Type.Is(`*big.Int`) && m["y"].Type.Is(`*big.Int`)).
		Report("$x and $y are compared by pointer, use Cmp")
}

// GasSubtractionRule flags unchecked subtraction of gas counters
func GasSubtractionRule(m dsl.Matcher) {
	m.Match(`$gas -= $cost`).
		Where(m["gas"].Text.Matches(`(?i)gas`) && m["gas"].Type.Is(`uint64`)).
		Report("$gas may underflow, check it against $cost first")
}
