package transcriber

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

var errSessionClosed = errors.New("whisper helper exited")

type helperRequest struct {
	ID    int64  `json:"id"`
	Audio string `json:"audio"`
}

// helperSession talks JSON lines to one long-lived helper process.
// The model inside is immutable after load; requests are served one at a time.
type helperSession struct {
	proc   executor.Process
	slot   chan struct{}
	lines  chan string
	done   chan struct{} // closed when stdout is drained
	quit   chan struct{} // closed by close
	nextID int64
}

func newHelperSession(proc executor.Process) *helperSession {
	s := &helperSession{
		proc:  proc,
		slot:  make(chan struct{}, 1),
		lines: make(chan string),
		done:  make(chan struct{}),
		quit:  make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *helperSession) readLoop() {
	defer close(s.done)
	scanner := bufio.NewScanner(s.proc.Stdout())
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		select {
		case s.lines <- line:
		case <-s.quit:
		}
	}
}

func (s *helperSession) next(ctx context.Context) (helperResponse, error) {
	select {
	case line := <-s.lines:
		var resp helperResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			return helperResponse{}, fmt.Errorf("parse helper response: %w", err)
		}
		return resp, nil
	case <-s.done:
		return helperResponse{}, errSessionClosed
	case <-ctx.Done():
		return helperResponse{}, ctx.Err()
	}
}

// awaitReady blocks until the helper reports the model is loaded
func (s *helperSession) awaitReady(ctx context.Context) error {
	for {
		resp, err := s.next(ctx)
		if err != nil {
			return fmt.Errorf("wait for whisper helper: %w", err)
		}
		if resp.Ready {
			return nil
		}
	}
}

func (s *helperSession) transcribe(ctx context.Context, audioPath string) (Result, error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { <-s.slot }()

	s.nextID++
	id := s.nextID

	payload, err := json.Marshal(helperRequest{ID: id, Audio: audioPath})
	if err != nil {
		return Result{}, err
	}
	if _, err := s.proc.Stdin().Write(append(payload, '\n')); err != nil {
		return Result{}, fmt.Errorf("send to whisper helper: %w", err)
	}

	// Responses to requests abandoned by a cancelled caller are skipped by id.
	for {
		resp, err := s.next(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("whisper transcribe %s: %w", audioPath, err)
		}
		if resp.ID != id {
			continue
		}
		if resp.Error != "" {
			return Result{}, fmt.Errorf("whisper transcribe %s: %s", audioPath, resp.Error)
		}
		return resp.result(), nil
	}
}

// close ends the request stream and waits for the helper to exit.
// stdout must be drained before Wait.
func (s *helperSession) close() error {
	close(s.quit)
	if err := s.proc.Stdin().Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close whisper helper stdin: %w", err)
	}
	<-s.done
	return s.proc.Wait()
}
