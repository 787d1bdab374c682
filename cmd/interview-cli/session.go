package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"alfredoptarigan/ats-analyzer/internal/interview"
	"alfredoptarigan/ats-analyzer/internal/logger"
	"alfredoptarigan/ats-analyzer/internal/models"
)

const (
	PromptNewQuestion = "New question"
	PromptAnswer      = "Answer the question"
	PromptFollowUp    = "Ask for a follow-up"
	PromptRepeat      = "Repeat the question"
	PromptQuit        = "Quit"
	PromptAnyCategory = "any"

	replyTimeout = 15 * time.Second
)

var errExit = errors.New("exit requested")

// terminalSpeaker prints questions instead of synthesizing speech.
type terminalSpeaker struct{}

func (terminalSpeaker) Speak(text string) {
	fmt.Printf("\n🎙️  %s\n\n", text)
}

func (terminalSpeaker) Cancel() {}

// typedRecorder takes the answer from the keyboard. Capture runs between
// Start and Stop so the prompt never blocks the session driver.
type typedRecorder struct {
	text string
}

func (r *typedRecorder) Start() error {
	r.text = ""
	return nil
}

func (r *typedRecorder) Capture() error {
	answerPrompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer cannot be empty")
			}
			return nil
		},
	}

	text, err := answerPrompt.Run()
	if err != nil {
		return err
	}
	r.text = text
	return nil
}

func (r *typedRecorder) Stop() (string, error) {
	return r.text, nil
}

type session struct {
	driver   *interview.Driver
	recorder *typedRecorder
	changed  chan struct{}
	opts     *options
	logger   *zap.Logger
}

func run(ctx context.Context, opts *options) error {
	zlog, err := logger.New("interview-cli", opts.json, opts.debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	s := &session{
		recorder: &typedRecorder{},
		changed:  make(chan struct{}, 1),
		opts:     opts,
		logger:   zlog,
	}
	s.driver = interview.NewDriver(interview.DriverConfig{
		URL:      opts.url,
		Speaker:  terminalSpeaker{},
		Recorder: s.recorder,
		OnChange: s.onChange,
		Logger:   zlog.Named("driver"),
	})

	if err := s.driver.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to the interview service: %w", err)
	}
	defer func() { _ = s.driver.End() }()

	zlog.Info("connected to the interview service", zap.String("url", opts.url))

	if err := s.askQuestion(ctx, opts.category); err != nil {
		return err
	}

	for {
		if err := s.step(ctx); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) {
				return nil
			}
			return err
		}
	}
}

func (s *session) onChange(interview.Snapshot) {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *session) step(ctx context.Context) error {
	snap := s.driver.Snapshot()
	if snap.State == interview.StateIdle {
		return errors.New("connection to the interview service was lost")
	}

	var items []string
	switch snap.State {
	case interview.StateQuestionPosed:
		items = []string{PromptAnswer, PromptRepeat}
	case interview.StateFeedbackReceived:
		items = []string{PromptFollowUp, PromptRepeat}
	}
	items = append(items, PromptNewQuestion, PromptQuit)

	menu := promptui.Select{Label: "What next?", Items: items}
	_, action, err := menu.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptNewQuestion:
		category, err := chooseCategory()
		if err != nil {
			return err
		}
		return s.askQuestion(ctx, category)
	case PromptAnswer:
		return s.answer(ctx)
	case PromptRepeat:
		terminalSpeaker{}.Speak(snap.Question.Question)
		return nil
	case PromptFollowUp:
		return s.followUp(ctx)
	case PromptQuit:
		return errExit
	}
	return nil
}

func chooseCategory() (string, error) {
	categoryPrompt := promptui.Select{
		Label: "Category",
		Items: append([]string{PromptAnyCategory}, interview.NewQuestionBank().Categories()...),
	}
	_, category, err := categoryPrompt.Run()
	if err != nil {
		return "", err
	}
	if category == PromptAnyCategory {
		return "", nil
	}
	return category, nil
}

func (s *session) askQuestion(ctx context.Context, category string) error {
	turn := s.driver.Snapshot().Turn
	if err := s.driver.RequestQuestion(category); err != nil {
		return err
	}
	_, err := s.waitFor(ctx, replyTimeout, func(snap interview.Snapshot) bool {
		return snap.Turn > turn
	})
	return err
}

func (s *session) followUp(ctx context.Context) error {
	turn := s.driver.Snapshot().Turn
	if err := s.driver.RequestFollowUp(); err != nil {
		return err
	}
	_, err := s.waitFor(ctx, s.opts.evaluateTimeout, func(snap interview.Snapshot) bool {
		return snap.Turn > turn
	})
	return err
}

func (s *session) answer(ctx context.Context) error {
	if err := s.driver.StartRecording(); err != nil {
		return err
	}
	captureErr := s.recorder.Capture()
	transcript, err := s.driver.StopRecording()
	if captureErr != nil {
		return captureErr
	}
	if err != nil {
		return err
	}

	if err := s.driver.SubmitAnswer(transcript); err != nil {
		return err
	}

	snap, err := s.waitFor(ctx, s.opts.evaluateTimeout, func(snap interview.Snapshot) bool {
		return snap.State == interview.StateFeedbackReceived || snap.LastError != ""
	})
	if err != nil {
		return err
	}
	if snap.LastError != "" {
		fmt.Printf("⚠️  %s\n", snap.LastError)
		return nil
	}

	printEvaluation(snap.Evaluation)
	return nil
}

// waitFor blocks until done reports true for the driver state, the session
// drops or timeout elapses.
func (s *session) waitFor(ctx context.Context, timeout time.Duration, done func(interview.Snapshot) bool) (interview.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	progress := ""
	for {
		snap := s.driver.Snapshot()
		if done(snap) {
			return snap, nil
		}
		if snap.State == interview.StateIdle {
			return snap, errors.New("connection to the interview service was lost")
		}
		if snap.Evaluating && snap.Progress != progress {
			progress = snap.Progress
			s.logger.Debug("evaluation progress", zap.String("partial", progress))
		}

		select {
		case <-s.changed:
		case <-ticker.C:
		case <-ctx.Done():
			return snap, fmt.Errorf("waiting for the interview service: %w", ctx.Err())
		}
	}
}

func printEvaluation(e *models.Evaluation) {
	if e == nil {
		return
	}

	fmt.Printf("\n📊 Score: %d/10\n\n", e.Score)
	star := []struct {
		name      string
		component models.StarComponent
	}{
		{"Situation", e.StarAnalysis.Situation},
		{"Task", e.StarAnalysis.Task},
		{"Action", e.StarAnalysis.Action},
		{"Result", e.StarAnalysis.Result},
	}
	for _, c := range star {
		mark := "❌"
		if c.component.Present {
			mark = "✅"
		}
		fmt.Printf("  %s %-9s %s\n", mark, c.name, c.component.Feedback)
	}

	printList("💪 Strengths", e.Strengths)
	printList("🔧 Improvements", e.Improvements)
	if e.ImprovedAnswerSnippet != "" {
		fmt.Printf("\n✨ Try: %s\n\n", e.ImprovedAnswerSnippet)
	}
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}
