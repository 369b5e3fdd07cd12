package display

import (
	"fmt"
	"io"

	"github.com/backmassage/lapsemaster/internal/term"
)

const banner = ` _                      __  __           _
| |    __ _ _ __  ___  |  \/  | __ _ ___| |_ ___ _ __
| |   / _` + "`" + ` | '_ \/ __| | |\/| |/ _` + "`" + ` / __| __/ _ \ '__|
| |__| (_| | |_) \__ \ | |  | | (_| \__ \ ||  __/ |
|_____\__,_| .__/|___/ |_|  |_|\__,_|___/\__\___|_|
           |_|`

// PrintBanner prints the ASCII art banner; magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Magenta, banner))
}
