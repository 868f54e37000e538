package target

import (
	"errors"
	"fmt"
	"math/big"
	"os"
)

func testLintError() {
	err := errors.New("test")
	a, b := big.NewInt(1), big.NewInt(1)

	var gasLeft, cost uint64 = 10, 3

	os.Mkdir("test", 0777)              // want `OsFilePermissionRule: os.Mkdir called with file mode 0777`
	os.Mkdir("test", os.ModePerm)       // want `OsFilePermissionRule: os.Mkdir called with file mode os.ModePerm \(0777\)`
	os.MkdirAll("test", 0777)           // want `OsFilePermissionRule: os.MkdirAll called with file mode 0777`
	os.Chmod("test", 0777)              // want `OsFilePermissionRule: os.Chmod called with file mode 0777`
	os.OpenFile("test", 0, 0777)        // want `OsFilePermissionRule: os.OpenFile called with file mode 0777`
	os.OpenFile("test", 0, os.ModePerm) // want `OsFilePermissionRule: os.OpenFile called with file mode os.ModePerm \(0777\)`
	panic("test")                       // want `ForbidPanicsRule: panics should not be manually used`
	panic(err)                          // want `ForbidPanicsRule: panics should not be manually used`
	_ = a == b                          // want `BigIntIdentityRule: a and b are compared by pointer, use Cmp`
	_ = a != b                          // want `BigIntIdentityRule: a and b are compared by pointer, use Cmp`
	gasLeft -= cost                     // want `GasSubtractionRule: gasLeft may underflow, check it against cost first`

	panic("BUG: unreachable")
	panic(fmt.Sprintf("BUG: %v", err))

	_ = a.Cmp(b) == 0
	_ = gasLeft
}
