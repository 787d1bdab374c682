package interview

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/models"
)

type State string

const (
	StateIdle             State = "idle"
	StateConnecting       State = "connecting"
	StateConnected        State = "connected"
	StateQuestionPosed    State = "question_posed"
	StateAnswering        State = "answering"
	StateEvaluating       State = "evaluating"
	StateFeedbackReceived State = "feedback_received"
)

var (
	ErrNotConnected     = errors.New("interview session is not connected")
	ErrAlreadyConnected = errors.New("interview session is already connected")
	ErrNoQuestion       = errors.New("no question has been posed")
	ErrNotRecording     = errors.New("recording has not been started")
)

// Speaker reads questions aloud. Speak must return without waiting for
// playback to finish.
type Speaker interface {
	Speak(text string)
	Cancel()
}

// Recorder captures a spoken answer.
type Recorder interface {
	Start() error
	Stop() (transcript string, err error)
}

// Snapshot is a copy of the driver state for observers.
type Snapshot struct {
	State State
	// Turn counts the questions posed in this session, follow-ups included.
	Turn            int
	Question        *models.InterviewQuestion
	Answer          string
	AnswerSubmitted bool
	Evaluating      bool
	Progress        string
	Evaluation      *models.Evaluation
	LastError       string
	Recording       bool
}

type DriverConfig struct {
	URL      string
	Dial     Dialer
	Speaker  Speaker
	Recorder Recorder
	// OnChange is called after every state change, outside the driver lock.
	OnChange func(Snapshot)
	Logger   *zap.Logger
}

// Driver runs the client side of an interview session. All entry points are
// serialized; inbound messages go through HandleMessage.
type Driver struct {
	cfg DriverConfig

	mu        sync.Mutex
	transport Transport
	// generation changes on every connect and reset so a stale reader
	// cannot touch a newer session.
	generation uint64

	state           State
	turn            int
	question        *models.InterviewQuestion
	answer          string
	answerSubmitted bool
	evaluating      bool
	progress        string
	evaluation      *models.Evaluation
	lastError       string
	recording       bool
}

func NewDriver(cfg DriverConfig) *Driver {
	if cfg.Dial == nil {
		cfg.Dial = DialWebSocket
	}
	if cfg.Speaker == nil {
		cfg.Speaker = nopSpeaker{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Driver{cfg: cfg, state: StateIdle}
}

// Connect opens the connection and starts reading server messages.
func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateIdle {
		d.mu.Unlock()
		return ErrAlreadyConnected
	}
	d.state = StateConnecting
	d.lastError = ""
	d.generation++
	generation := d.generation
	d.mu.Unlock()
	d.notify()

	transport, err := d.cfg.Dial(ctx, d.cfg.URL)

	d.mu.Lock()
	if d.generation != generation {
		// End was called while dialing.
		d.mu.Unlock()
		if transport != nil {
			_ = transport.Close()
		}
		return ErrNotConnected
	}
	if err != nil {
		d.resetLocked()
		d.lastError = err.Error()
		d.mu.Unlock()
		d.notify()
		return err
	}
	d.transport = transport
	d.state = StateConnected
	d.mu.Unlock()

	d.cfg.Logger.Info("interview session connected", zap.String("url", d.cfg.URL))
	go d.readLoop(transport, generation)
	d.notify()

	return nil
}

func (d *Driver) readLoop(transport Transport, generation uint64) {
	for {
		msg, err := transport.Receive()
		if errors.Is(err, ErrMalformedMessage) {
			d.cfg.Logger.Warn("ignoring malformed server message", zap.Error(err))
			continue
		}
		if err != nil {
			d.handleDisconnect(generation, err)
			return
		}
		d.handle(generation, msg)
	}
}

// HandleMessage applies one inbound server message to the current session.
func (d *Driver) HandleMessage(msg ServerMessage) {
	d.mu.Lock()
	generation := d.generation
	d.mu.Unlock()
	d.handle(generation, msg)
}

func (d *Driver) handle(generation uint64, msg ServerMessage) {
	d.mu.Lock()
	if generation != d.generation || d.transport == nil {
		d.mu.Unlock()
		return
	}
	changed := d.applyLocked(msg)
	d.mu.Unlock()

	if changed {
		d.notify()
	}
}

func (d *Driver) applyLocked(msg ServerMessage) bool {
	switch msg.Type {
	case TypeQuestion, TypeFollowUp:
		category := msg.Category
		if msg.Type == TypeFollowUp && d.question != nil && category == "" {
			category = d.question.Category
		}
		if d.recording {
			d.stopRecordingLocked()
		}
		d.question = &models.InterviewQuestion{Category: category, Question: msg.Question}
		d.turn++
		d.answer = ""
		d.answerSubmitted = false
		d.evaluating = false
		d.progress = ""
		d.evaluation = nil
		d.lastError = ""
		d.state = StateQuestionPosed
		d.cfg.Speaker.Speak(msg.Question)

	case TypeEvaluating:
		if d.question == nil {
			return false
		}
		d.evaluating = true
		d.answerSubmitted = false
		d.progress = ""
		d.state = StateEvaluating

	case TypeEvaluationProgress:
		if d.question == nil {
			return false
		}
		d.progress = msg.Partial

	case TypeEvaluationComplete:
		if d.question == nil || msg.Data == nil {
			return false
		}
		if d.recording {
			d.stopRecordingLocked()
		}
		d.evaluation = msg.Data
		d.evaluating = false
		d.answerSubmitted = false
		d.lastError = ""
		d.state = StateFeedbackReceived

	case TypeError:
		d.evaluating = false
		d.answerSubmitted = false
		d.lastError = msg.Message
		if d.state == StateEvaluating {
			d.state = StateQuestionPosed
		}

	case TypePong:
		return false

	default:
		d.cfg.Logger.Debug("ignoring unknown server message", zap.String("type", msg.Type))
		return false
	}

	return true
}

// RequestQuestion asks the server for a question, optionally from a category.
func (d *Driver) RequestQuestion(category string) error {
	return d.send(ClientMessage{Type: TypeGetQuestion, Category: category})
}

// SubmitAnswer sends the answer for the current question. It is a no-op
// when no question has been posed; the state only changes once the server
// announces the evaluation.
func (d *Driver) SubmitAnswer(answer string) error {
	d.mu.Lock()
	if d.transport == nil {
		d.mu.Unlock()
		return ErrNotConnected
	}
	if d.question == nil {
		d.mu.Unlock()
		return nil
	}
	transport := d.transport
	msg := ClientMessage{Type: TypeSubmitAnswer, Question: d.question.Question, Answer: answer}
	d.answer = answer
	d.answerSubmitted = true
	d.lastError = ""
	d.mu.Unlock()

	if err := transport.Send(msg); err != nil {
		return err
	}
	d.notify()
	return nil
}

// RequestFollowUp asks for a follow-up to the last submitted answer.
func (d *Driver) RequestFollowUp() error {
	d.mu.Lock()
	if d.transport == nil {
		d.mu.Unlock()
		return ErrNotConnected
	}
	if d.question == nil || strings.TrimSpace(d.answer) == "" {
		d.mu.Unlock()
		return ErrNoQuestion
	}
	msg := ClientMessage{Type: TypeGetFollowUp, Question: d.question.Question, Answer: d.answer}
	transport := d.transport
	d.mu.Unlock()

	return transport.Send(msg)
}

func (d *Driver) Ping() error {
	return d.send(ClientMessage{Type: TypePing})
}

// StartRecording cancels any speech in progress and starts capturing an answer.
func (d *Driver) StartRecording() error {
	d.mu.Lock()
	if d.cfg.Recorder == nil {
		d.mu.Unlock()
		return errors.New("no recorder configured")
	}
	if d.state != StateQuestionPosed {
		d.mu.Unlock()
		return ErrNoQuestion
	}

	d.cfg.Speaker.Cancel()
	if err := d.cfg.Recorder.Start(); err != nil {
		d.mu.Unlock()
		return err
	}
	d.recording = true
	d.state = StateAnswering
	d.mu.Unlock()

	d.notify()
	return nil
}

// StopRecording ends the capture and returns the transcript.
func (d *Driver) StopRecording() (string, error) {
	d.mu.Lock()
	if !d.recording {
		d.mu.Unlock()
		return "", ErrNotRecording
	}
	transcript, err := d.stopRecordingLocked()
	d.mu.Unlock()

	d.notify()
	return transcript, err
}

func (d *Driver) stopRecordingLocked() (string, error) {
	d.recording = false
	if d.state == StateAnswering {
		d.state = StateQuestionPosed
	}
	return d.cfg.Recorder.Stop()
}

// End cancels speech and recording, closes the connection and resets the session.
func (d *Driver) End() error {
	d.mu.Lock()
	transport := d.transport
	d.resetLocked()
	d.mu.Unlock()

	var err error
	if transport != nil {
		err = transport.Close()
	}
	d.notify()
	return err
}

func (d *Driver) handleDisconnect(generation uint64, cause error) {
	d.mu.Lock()
	if generation != d.generation {
		d.mu.Unlock()
		return
	}
	d.cfg.Logger.Info("interview session disconnected", zap.Error(cause))
	transport := d.transport
	d.resetLocked()
	d.lastError = "connection closed"
	d.mu.Unlock()

	if transport != nil {
		_ = transport.Close()
	}
	d.notify()
}

func (d *Driver) resetLocked() {
	d.cfg.Speaker.Cancel()
	if d.recording {
		_, _ = d.stopRecordingLocked()
	}
	d.generation++
	d.transport = nil
	d.state = StateIdle
	d.turn = 0
	d.question = nil
	d.answer = ""
	d.answerSubmitted = false
	d.evaluating = false
	d.progress = ""
	d.evaluation = nil
	d.lastError = ""
}

func (d *Driver) send(msg ClientMessage) error {
	d.mu.Lock()
	transport := d.transport
	d.mu.Unlock()

	if transport == nil {
		return ErrNotConnected
	}
	return transport.Send(msg)
}

func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Driver) snapshotLocked() Snapshot {
	s := Snapshot{
		State:           d.state,
		Turn:            d.turn,
		Answer:          d.answer,
		AnswerSubmitted: d.answerSubmitted,
		Evaluating:      d.evaluating,
		Progress:        d.progress,
		Evaluation:      d.evaluation,
		LastError:       d.lastError,
		Recording:       d.recording,
	}
	if d.question != nil {
		q := *d.question
		s.Question = &q
	}
	return s
}

func (d *Driver) notify() {
	if d.cfg.OnChange != nil {
		d.cfg.OnChange(d.Snapshot())
	}
}

type nopSpeaker struct{}

func (nopSpeaker) Speak(string) {}
func (nopSpeaker) Cancel()      {}
