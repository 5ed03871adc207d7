// chanstress drives the csp channel package under configurable
// producer/consumer contention and verifies that the number of messages
// received equals the number sent. Only counts are compared; the received
// values themselves are not checked.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/thrasher-corp/csp/channel"
)

var (
	errInvalidWorkers  = errors.New("producers and consumers must be at least 1")
	errInvalidMessages = errors.New("messages must be at least 1")
	errInvalidChannels = errors.New("channels must be at least 1")
	errCountMismatch   = errors.New("received count does not match sent count")
)

type stressConfig struct {
	capacity   int
	producers  int
	consumers  int
	messages   int
	rate       float64
	selectMode bool
	channels   int
}

func (c *stressConfig) validate() error {
	if c.producers < 1 || c.consumers < 1 {
		return errInvalidWorkers
	}
	if c.messages < 1 {
		return errInvalidMessages
	}
	if !c.selectMode {
		c.channels = 1
	}
	if c.channels < 1 {
		return errInvalidChannels
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "chanstress",
		Usage: "soak test the csp channel implementation",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "capacity",
				Usage: "buffer capacity of each channel",
				Value: 16,
			},
			&cli.IntFlag{
				Name:  "producers",
				Usage: "number of producer goroutines",
				Value: 4,
			},
			&cli.IntFlag{
				Name:  "consumers",
				Usage: "number of consumer goroutines",
				Value: 4,
			},
			&cli.IntFlag{
				Name:  "messages",
				Usage: "total number of messages to exchange",
				Value: 100000,
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "aggregate send rate in messages per second, 0 for unlimited",
			},
			&cli.BoolFlag{
				Name:  "select",
				Usage: "consume via Select across a channel set instead of direct receives",
			},
			&cli.IntFlag{
				Name:  "channels",
				Usage: "size of the channel set when --select is enabled",
				Value: 4,
			},
		},
		Action: func(c *cli.Context) error {
			cfg := &stressConfig{
				capacity:   c.Int("capacity"),
				producers:  c.Int("producers"),
				consumers:  c.Int("consumers"),
				messages:   c.Int("messages"),
				rate:       c.Float64("rate"),
				selectMode: c.Bool("select"),
				channels:   c.Int("channels"),
			}
			return runStress(cfg, os.Stdout)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal("chanstress unable to run: ", err)
	}
}

func runStress(cfg *stressConfig, w io.Writer) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	runID, err := uuid.NewV4()
	if err != nil {
		return err
	}

	chans := make([]*channel.Channel[int], cfg.channels)
	for i := range chans {
		chans[i], err = channel.New[int](cfg.capacity)
		if err != nil {
			return err
		}
	}

	var limiter *rate.Limiter
	if cfg.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rate), 1)
	}

	var received atomic.Int64
	var wg sync.WaitGroup
	producerErrs := make(chan error, cfg.producers)
	consumerErrs := make(chan error, cfg.consumers)

	for p := 0; p < cfg.producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			producerErrs <- produce(cfg, chans, limiter, p)
		}(p)
	}
	for r := 0; r < cfg.consumers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumerErrs <- consume(cfg, chans, &received)
		}()
	}
	wg.Wait()
	close(producerErrs)
	close(consumerErrs)

	for err := range producerErrs {
		if err != nil {
			return err
		}
	}
	for err := range consumerErrs {
		if err != nil {
			return err
		}
	}

	for i := range chans {
		if err := chans[i].Release(); err != nil {
			return err
		}
	}

	total := int64(cfg.messages)
	fmt.Fprintf(w, "run %s: sent %d received %d across %d channel(s)\n",
		runID, total, received.Load(), cfg.channels)
	if received.Load() != total {
		return errCountMismatch
	}
	return nil
}

// produce sends producer p's share of the message sequence, spreading it
// round-robin across the channel set
func produce(cfg *stressConfig, chans []*channel.Channel[int], limiter *rate.Limiter, p int) error {
	ctx := context.Background()
	for seq := p; seq < cfg.messages; seq += cfg.producers {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := chans[seq%len(chans)].Send(seq); err != nil {
			return fmt.Errorf("producer %d: %w", p, err)
		}
	}
	return nil
}

// consume drains values until every message has been accounted for, then
// closes the channel set so blocked peers unwind
func consume(cfg *stressConfig, chans []*channel.Channel[int], received *atomic.Int64) error {
	cases := make([]channel.Case[int], len(chans))
	for i := range chans {
		cases[i] = channel.Case[int]{Chan: chans[i], Dir: channel.DirRecv}
	}

	for {
		var err error
		if cfg.selectMode {
			_, _, err = channel.Select(cases)
		} else {
			_, err = chans[0].Receive()
		}
		if errors.Is(err, channel.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if received.Add(1) == int64(cfg.messages) {
			closeAll(chans)
		}
	}
}

func closeAll(chans []*channel.Channel[int]) {
	for i := range chans {
		if err := chans[i].Close(); err != nil && !errors.Is(err, channel.ErrClosed) {
			log.Println("close:", err)
		}
	}
}
