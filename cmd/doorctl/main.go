// doorctl is the host-side client: it opens the serial link to a running
// controller, sends a single command and prints the response lines.
//
//	doorctl -device /dev/ttyACM0 on
//	doorctl off
//	doorctl '#on'
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/cjeanneret/DoorGo/internal/command"
)

func main() {
	device := flag.String("device", "/dev/ttyACM0", "serial device path")
	baud := flag.Int("baud", 9600, "baud rate")
	settle := flag.Duration("settle", 2*time.Second, "wait after opening the port (Arduino-style boards reset on open)")
	timeout := flag.Duration("timeout", time.Second, "read timeout while collecting responses")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] on|off|<raw token>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	token := commandToken(flag.Arg(0))

	port, err := command.OpenSerial(command.SerialConfig{
		Device:      *device,
		Baud:        *baud,
		ReadTimeout: *timeout,
	})
	if err != nil {
		log.Fatalf("open serial: %v", err)
	}
	defer port.Close()

	time.Sleep(*settle)

	if _, err := fmt.Fprintf(port, "%s\n", token); err != nil {
		log.Fatalf("send command: %v", err)
	}
	fmt.Printf("Sent: %s\n", token)

	// Print response lines until the reads time out.
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			fmt.Printf("Response: %s\n", line)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		log.Fatalf("read response: %v", err)
	}
}

// commandToken maps the friendly argument forms onto wire tokens.
// Anything already starting with '#' is passed through as-is.
func commandToken(arg string) string {
	switch command.Normalize(arg) {
	case "on":
		return command.TokenOn
	case "off":
		return command.TokenOff
	default:
		return arg
	}
}
