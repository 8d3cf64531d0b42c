// The atcoresim command drives a real or pty-simulated cellular modem
// through the atcore dispatcher from the host, for interactive testing
// of the AT-command core outside of a microcontroller build.
//
// The HTTP diagnostics endpoint wires github.com/mkevac/debugcharts the
// way net/http/pprof is conventionally wired: import for its side
// effect of registering handlers on the default mux, then serve it.
package main

import (
	"bufio"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/mkevac/debugcharts"

	"github.com/elkanamol/uAT/atcore"
	"github.com/elkanamol/uAT/platform/hostuart"
)

func main() {
	log.SetFlags(0)

	device := flag.String("device", "/dev/ttyUSB0", "serial device or pty path")
	httpAddr := flag.String("http", "", "if set, serve debugcharts diagnostics on this address (e.g. :6060)")
	idleTimeout := flag.Duration("idle-timeout", hostuart.DefaultIdleTimeout, "poll timeout of the tty read loop")
	timeout := flag.Duration("timeout", time.Second, "per-command send-receive timeout")
	flag.Parse()

	if *httpAddr != "" {
		go func() {
			log.Printf("atcoresim: diagnostics listening on %s", *httpAddr)
			if err := http.ListenAndServe(*httpAddr, nil); err != nil {
				log.Printf("atcoresim: diagnostics server exited: %v", err)
			}
		}()
	}

	port, err := hostuart.Open(hostuart.Config{
		Path:        *device,
		IdleTimeout: *idleTimeout,
	})
	if err != nil {
		log.Fatalf("atcoresim: %v", err)
	}
	defer port.Close()

	cfg := atcore.DefaultConfig()
	disp, err := atcore.New(port, cfg)
	if err != nil {
		log.Fatalf("atcoresim: dispatcher init: %v", err)
	}
	defer disp.Close()

	port.SetReceiveCallback(func(data []byte) { disp.PushFromISR(data) })

	if err := disp.RegisterURC([]byte("+CREG:"), atcore.HandlerFunc(func(line []byte) {
		log.Printf("atcoresim: URC +CREG: %s", line)
	})); err != nil {
		log.Fatalf("atcoresim: register URC: %v", err)
	}

	bytesDropped := expvar.NewInt("atcore_bytes_dropped")
	handlersInUse := expvar.NewInt("atcore_handlers_in_use")
	go func() {
		for range time.Tick(time.Second) {
			s := disp.Stats()
			bytesDropped.Set(int64(s.BytesDropped))
			handlersInUse.Set(int64(s.HandlersInUse))
		}
	}()

	fmt.Println("atcoresim: type an AT command and press enter (blank line quits)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		if cmd == "" {
			break
		}

		out := make([]byte, cfg.RXBufferSize)
		if err := disp.SendReceive(cmd, "OK", out, *timeout); err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Print(string(out))
	}
}
