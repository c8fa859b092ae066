package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/room4-2/OrderDesk/config"
	"github.com/room4-2/OrderDesk/dialog"
	"github.com/room4-2/OrderDesk/messages"
)

const unknownCallID = "unknown"

// call statuses after which Twilio sends no more webhooks for the call
var finalCallStatuses = map[string]bool{
	"":          true,
	"completed": true,
	"busy":      true,
	"failed":    true,
	"no-answer": true,
	"canceled":  true,
}

// SessionCounter reports live sessions for the health endpoint
type SessionCounter interface {
	Len() int
}

type TwilioServer struct {
	httpServer *http.Server
	engine     *dialog.Engine
	sessions   SessionCounter
	hub        *Hub
	metrics    http.Handler
	twiml      TwiML
	validator  *SignatureValidator
	config     *config.Config
	logger     *zap.Logger
}

// NewTwilioServer builds the webhook server. metrics may be nil.
func NewTwilioServer(cfg *config.Config, engine *dialog.Engine, sessions SessionCounter, hub *Hub, metrics http.Handler, logger *zap.Logger) *TwilioServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TwilioServer{
		engine:   engine,
		sessions: sessions,
		hub:      hub,
		metrics:  metrics,
		config:   cfg,
		logger:   logger,
		twiml: TwiML{
			Voice:      cfg.Voice,
			Language:   cfg.SpeechLanguage,
			GatherPath: "/gather",
		},
	}
	if cfg.TwilioAuthToken != "" {
		s.validator = NewSignatureValidator(cfg.TwilioAuthToken)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: the monitor feed is a long-lived websocket.
	}
	return s
}

// Routes returns the HTTP handler
func (s *TwilioServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Group(func(r chi.Router) {
		if s.validator != nil {
			r.Use(s.verifyTwilio)
		}
		r.Post("/voice", s.handleVoice)
		r.Post("/gather", s.handleGather)
		r.Post("/status", s.handleStatus)
	})

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	if s.hub != nil {
		r.Get("/events", s.hub.ServeHTTP)
	}
	return r
}

// Start begins listening for connections
func (s *TwilioServer) Start() error {
	s.logger.Info("twilio webhook server starting",
		zap.String("addr", s.httpServer.Addr),
		zap.Bool("signature_check", s.validator != nil))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *TwilioServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down twilio webhook server")
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func callID(r *http.Request) string {
	if id := r.PostFormValue("CallSid"); id != "" {
		return id
	}
	return unknownCallID
}

func (s *TwilioServer) handleVoice(w http.ResponseWriter, r *http.Request) {
	action := s.engine.Start(r.Context(), callID(r))
	s.writeTwiML(w, action)
}

func (s *TwilioServer) handleGather(w http.ResponseWriter, r *http.Request) {
	seq, _ := strconv.Atoi(r.URL.Query().Get("turn"))

	action := s.engine.Handle(r.Context(), dialog.Turn{
		CallID:         callID(r),
		Transcript:     r.PostFormValue("SpeechResult"),
		RequestedStage: r.URL.Query().Get("stage"),
		Seq:            seq,
	})
	s.writeTwiML(w, action)
}

func (s *TwilioServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := strings.ToLower(r.PostFormValue("CallStatus"))
	if id := r.PostFormValue("CallSid"); id != "" && finalCallStatuses[status] {
		s.engine.End(r.Context(), id)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *TwilioServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := messages.StatusPayload{
		Status:   "ok",
		Server:   "twilio",
		Sessions: s.sessions.Len(),
	}
	if s.hub != nil {
		payload.Monitors = s.hub.Count()
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *TwilioServer) writeTwiML(w http.ResponseWriter, action *messages.Action) {
	body, err := s.twiml.Render(action)
	if err != nil {
		s.logger.Error("failed to render twiml", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write(body)
}

// verifyTwilio rejects webhooks not signed with the account auth token
func (s *TwilioServer) verifyTwilio(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		fullURL := s.config.PublicBaseURL + r.URL.RequestURI()
		err := s.validator.Verify(r.Header.Get("X-Twilio-Signature"), fullURL, r.PostForm)
		if err != nil {
			s.logger.Warn("rejected webhook", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *TwilioServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
