package main

import (
	"context"
	"fmt"
	"os"
	"time"

	cli "github.com/spf13/pflag"

	"vani/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	cli.Parse()

	args := cli.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vani-ctl [--socket path] reset|stop|status")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := ipc.Send(ctx, *socket, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vani not running:", err)
		os.Exit(1)
	}

	if !resp.OK {
		fmt.Fprintln(os.Stderr, "error:", resp.Detail)
		os.Exit(1)
	}
	if resp.Detail != "" {
		fmt.Println(resp.Detail)
	} else {
		fmt.Println("ok")
	}
}
