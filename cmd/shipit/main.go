package main

import (
	"os"
	"strings"

	shipit "github.com/adatari/shipit/internal/apps/shipit/cmds"
	"github.com/adatari/shipit/internal/logs"
	"github.com/adatari/shipit/internal/runtime"
)

func main() {
	logs.SetComponent(detectComponent("shipit"))

	var execErr error

	rt := runtime.New()
	defer rt.Finalize("shipit", "Type 'shipit help' to get help.", &execErr)

	execErr = shipit.Execute(rt)
}

func detectComponent(base string) string {
	if len(os.Args) > 1 && len(os.Args[1]) > 0 && os.Args[1][0] != '-' {
		return base + ":" + strings.Join(os.Args[1:], " ")
	}
	return base
}
