package driver

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type fakeResult struct {
	out   string
	err   error
	block bool
}

// fakeRunner answers commands from a table keyed by the full command line.
// Results queued with push are consumed in order before the table is used.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]fakeResult
	queued  map[string][]fakeResult
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results: make(map[string]fakeResult),
		queued:  make(map[string][]fakeResult),
	}
}

func (f *fakeRunner) set(cmd string, out string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[cmd] = fakeResult{out: out, err: err}
}

func (f *fakeRunner) push(cmd string, out string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued[cmd] = append(f.queued[cmd], fakeResult{out: out})
}

func (f *fakeRunner) hang(cmd string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[cmd] = fakeResult{block: true}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	var (
		res fakeResult
		ok  bool
	)
	if q := f.queued[cmd]; len(q) > 0 {
		res, ok = q[0], true
		f.queued[cmd] = q[1:]
	} else {
		res, ok = f.results[cmd]
	}
	f.mu.Unlock()

	if !ok {
		return []byte("command not found"), errors.New("exit status 1")
	}
	if res.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []byte(res.out), res.err
}

func (f *fakeRunner) history() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

const devInfoManaged = `Interface wlan0
	ifindex 3
	wdev 0x1
	addr 00:C0:CA:11:22:33
	type managed
	wiphy 0
	txpower 20.00 dBm
`

const devInfoMonitor = `Interface wlan0
	ifindex 3
	wdev 0x1
	addr 00:c0:ca:11:22:33
	type monitor
	wiphy 0
	channel 6 (2437 MHz), width: 20 MHz (no HT), center1: 2437 MHz
`

const phyInfo = `Wiphy phy0
	max # scan SSIDs: 4
	Supported Ciphers:
		* WEP40 (00-0f-ac:1)
		* CCMP-128 (00-0f-ac:4)
	Supported interface modes:
		 * IBSS
		 * managed
		 * AP
		 * monitor
	Band 1:
		Bitrates (non-HT):
			* 1.0 Mbps
			* 2.0 Mbps (short preamble supported)
		Frequencies:
			* 2412.0 MHz [1] (20.0 dBm)
			* 2437.0 MHz [6] (20.0 dBm)
			* 2484.0 MHz [14] (disabled)
	Band 2:
		Frequencies:
			* 5180.0 MHz [36] (23.0 dBm)
			* 5260.0 MHz [52] (20.0 dBm) (radar detection)
	Band 4:
		Frequencies:
			* 5955.0 MHz [1] (12.0 dBm)
	software interface modes (can always be added):
		 * monitor
`
