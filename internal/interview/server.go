package interview

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Server exposes the question bank over HTTP and runs interview sessions
// over WebSocket.
type Server struct {
	bank   *QuestionBank
	coach  Coach
	logger *zap.Logger
}

func NewServer(bank *QuestionBank, coach Coach, logger *zap.Logger) *Server {
	return &Server{bank: bank, coach: coach, logger: logger}
}

// App builds the interview service with its middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ATS Interview Service",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	app.Get("/health", s.handleHealth)
	app.Get("/categories", s.handleCategories)
	app.Get("/question", s.handleQuestion)
	app.Get("/questions/:category", s.handleCategoryQuestions)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/interview", websocket.New(s.handleInterview, websocket.Config{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}))

	return app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "service": "interview"})
}

func (s *Server) handleCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": s.bank.Categories()})
}

func (s *Server) handleQuestion(c *fiber.Ctx) error {
	return c.JSON(s.bank.RandomQuestion(c.Query("category")))
}

func (s *Server) handleCategoryQuestions(c *fiber.Ctx) error {
	category := c.Params("category")
	questions, ok := s.bank.Questions(category)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Category not found"})
	}
	return c.JSON(fiber.Map{"category": category, "questions": questions})
}

// session is the per-connection state of one interview.
type session struct {
	conn            *websocket.Conn
	currentQuestion string
}

func (sess *session) send(msg ServerMessage) error {
	return sess.conn.WriteJSON(msg)
}

func (s *Server) handleInterview(conn *websocket.Conn) {
	// Scoped to the connection.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.logger.Info("interview websocket connected", zap.String("remote", conn.RemoteAddr().String()))
	sess := &session{conn: conn}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("interview websocket error", zap.Error(err))
			} else {
				s.logger.Info("interview websocket disconnected")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := sess.send(ServerMessage{Type: TypeError, Message: "Invalid message format"}); err != nil {
				return
			}
			continue
		}

		if err := s.dispatch(ctx, sess, msg); err != nil {
			s.logger.Warn("interview websocket write failed", zap.Error(err))
			return
		}
	}
}

// dispatch handles one client message. Only write failures are returned;
// evaluation problems are reported to the client as error messages.
func (s *Server) dispatch(ctx context.Context, sess *session, msg ClientMessage) error {
	switch msg.Type {
	case TypeGetQuestion:
		q := s.bank.RandomQuestion(msg.Category)
		sess.currentQuestion = q.Question
		return sess.send(ServerMessage{Type: TypeQuestion, Category: q.Category, Question: q.Question})

	case TypeSubmitAnswer:
		answer := strings.TrimSpace(msg.Answer)
		question := firstNonEmpty(msg.Question, sess.currentQuestion)

		if answer == "" {
			return sess.send(ServerMessage{Type: TypeError, Message: "Please provide an answer"})
		}
		if question == "" {
			return sess.send(ServerMessage{Type: TypeError, Message: "No question context available"})
		}

		if err := sess.send(ServerMessage{Type: TypeEvaluating, Message: "Analyzing your response..."}); err != nil {
			return err
		}

		var writeErr error
		evaluation, err := s.coach.Evaluate(ctx, question, answer, func(partial string) error {
			writeErr = sess.send(ServerMessage{Type: TypeEvaluationProgress, Partial: partial})
			return writeErr
		})
		if writeErr != nil {
			return writeErr
		}
		if err != nil {
			s.logger.Error("evaluation failed", zap.Error(err))
			message := "Evaluation failed, please try again"
			if errors.Is(err, ErrCoachUnavailable) {
				message = ErrCoachUnavailable.Error()
			}
			return sess.send(ServerMessage{Type: TypeError, Message: message})
		}

		return sess.send(ServerMessage{Type: TypeEvaluationComplete, Data: evaluation})

	case TypeGetFollowUp:
		answer := strings.TrimSpace(msg.Answer)
		question := firstNonEmpty(msg.Question, sess.currentQuestion)
		if question == "" || answer == "" {
			return nil
		}

		followUp := s.coach.FollowUp(ctx, question, answer)
		sess.currentQuestion = followUp
		return sess.send(ServerMessage{Type: TypeFollowUp, Question: followUp})

	case TypePing:
		return sess.send(ServerMessage{Type: TypePong})

	default:
		return sess.send(ServerMessage{Type: TypeError, Message: "Unknown message type: " + msg.Type})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
