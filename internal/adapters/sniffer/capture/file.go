package capture

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket/pcapgo"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// FileSource replays a pcap file. It returns ports.ErrSourceExhausted once
// every packet has been delivered.
type FileSource struct {
	path string
	file *os.File
	pump *pump

	closeOnce sync.Once
}

func OpenFile(path string, decoder FrameDecoder) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read pcap header %s: %w", path, err)
	}
	return &FileSource{
		path: path,
		file: f,
		pump: &pump{
			label:    path,
			reader:   r,
			decoder:  decoder,
			classify: exhaustedOnEOF,
			now:      time.Now,
		},
	}, nil
}

func (s *FileSource) Capture(ctx context.Context, window time.Duration, fn func(domain.Frame)) error {
	return s.pump.run(ctx, window, fn)
}

func (s *FileSource) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.file.Close() })
	return err
}
