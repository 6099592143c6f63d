// Command dreamview renders scene descriptions in a live 3D view.
//
//	dreamview view scene.yaml            open a file and reload it on change
//	dreamview view --mood 0.2,0.6,0.8,0.4 --narrative "a lake in the forest"
//	dreamview generate --narrative "ruined temple" --seed 7 -o temple.yaml
//	dreamview serve --listen 127.0.0.1:7777
package main

import (
	"os"
	"runtime"
)

func init() {
	// The window system must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
