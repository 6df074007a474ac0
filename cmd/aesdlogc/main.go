// Command aesdlogc is a small manual-testing client for aesdlogd: it
// dials the server, writes each line from stdin as a separate record
// (or seek directive), and prints whatever the server echoes back.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9000", "aesdlogd address")
	readTimeout := flag.Duration("read-timeout", 2*time.Second, "how long to wait for an echo after each line")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aesdlogc: dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text() + "\n"
		if _, err := conn.Write([]byte(line)); err != nil {
			fmt.Fprintf(os.Stderr, "aesdlogc: write: %v\n", err)
			os.Exit(1)
		}
		printEcho(conn, *readTimeout)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "aesdlogc: read stdin: %v\n", err)
		os.Exit(1)
	}
}

// printEcho drains whatever the server sends back within timeout. A
// seek directive produces no echo, so a timeout here is expected and
// silent, not an error.
func printEcho(conn net.Conn, timeout time.Duration) {
	conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if err != nil {
			if err != io.EOF {
				var netErr net.Error
				if ok := asNetTimeout(err, &netErr); ok && netErr.Timeout() {
					return
				}
			}
			return
		}
	}
}

func asNetTimeout(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if !ok {
		return false
	}
	*target = ne
	return true
}
