package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pior/redis"
	"github.com/pior/redis/resp"
)

func main() {
	addr := flag.String("addr", "localhost:6379", "server address")
	verbose := flag.Bool("verbose", false, "print the encoded request before sending")
	crlfSpace := flag.Bool("crlf-space", false, "render protocol CRLF as a space in verbose output")
	timeout := flag.Duration("timeout", 5*time.Second, "per-command timeout")
	flag.Parse()

	resp.DebugCRLFAsSpace = *crlfSpace

	netConn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	conn := redis.NewConnection(netConn)
	defer conn.Close()

	fmt.Printf("connected to %s (quit to exit)\n", *addr)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		var req resp.Request
		if err := req.AddCommand(line); err != nil {
			fmt.Printf("(error) %v\n", err)
			continue
		}
		if *verbose {
			fmt.Printf("request: %s\n", req.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		rsp, err := conn.Execute(ctx, &req)
		cancel()
		if err != nil {
			fmt.Printf("(error) %v\n", err)
			if errors.Is(err, redis.ErrConnectionClosed) || conn.IsClosed() {
				return
			}
			continue
		}

		fmt.Println(rsp.String())
	}
}
