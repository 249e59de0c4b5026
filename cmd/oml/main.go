package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/One-Minute-Stack/oneminutelogs-next/internal/cmd/client"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := clientcmd.NewRoot()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
