package clone

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Songmu/prompter"
	"github.com/mattn/go-isatty"
)

// confirmOverwrite asks whether target may be overwritten. On a terminal the
// question goes through prompter; with piped stdin a single line is read
// directly so answers can be supplied non-interactively (echo y | cf -i ...).
func confirmOverwrite(target string) bool {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return prompter.YN(fmt.Sprintf("Overwrite %s?", target), false)
	}

	fmt.Printf("Overwrite %s? (y/n) ", target)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	line = strings.TrimSpace(line)
	return line == "y" || line == "Y"
}
