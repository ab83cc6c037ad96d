package main

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

const splashBanner = `uecfg - Unreal Engine source-build readiness
`

// exitFunc is swapped in tests that exercise exit-code paths.
var exitFunc = os.Exit

func main() {
	splash()

	err := newRootCmd().Execute()
	pauseIfInteractive()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}

func splash() {
	if os.Getenv("UECFG_NO_SPLASH") != "" {
		return
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Print(splashBanner)
}

// pauseIfInteractive keeps the console window open for users who
// launched the tool by double-click on Windows. Suppressed for pipes,
// CI, and via UECFG_NO_PAUSE.
func pauseIfInteractive() {
	if runtime.GOOS != "windows" {
		return
	}
	if os.Getenv("UECFG_NO_PAUSE") != "" {
		return
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Print("Press Enter to close...")
	fmt.Scanln()
}
