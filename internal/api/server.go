// Package api wires tutord's HTTP surface: the chat, persona-creation and
// curriculum endpoints. Handler failures are logged with detail and surface
// to callers only as a generic 500.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/studyhall-ai/tutord/internal/chat"
	"github.com/studyhall-ai/tutord/internal/curriculum"
	"github.com/studyhall-ai/tutord/internal/deck"
	"github.com/studyhall-ai/tutord/internal/persona"
	"github.com/studyhall-ai/tutord/internal/workdir"
)

// ChatService answers one tutoring turn.
type ChatService interface {
	Respond(ctx context.Context, req chat.Request) (chat.Response, error)
}

// PersonaCreator registers a new persona.
type PersonaCreator interface {
	Create(ctx context.Context, name, description, template string, files []persona.FileInput) (persona.Persona, error)
}

// CurriculumRunner executes the curriculum pipeline into a working directory.
type CurriculumRunner interface {
	Run(ctx context.Context, req curriculum.Request, dir workdir.Dir) (curriculum.Result, error)
}

// SlideFormatter turns a slide-plan artifact into structured slides.
type SlideFormatter interface {
	FormatForSlides(ctx context.Context, markdown string) ([]deck.Slide, error)
}

type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	logger     *slog.Logger

	chat       ChatService
	personas   PersonaCreator
	curriculum CurriculumRunner
	formatter  SlideFormatter
	renderer   *deck.Renderer
	workRoot   string
}

func NewServer(port int, chatSvc ChatService, personas PersonaCreator,
	pipeline CurriculumRunner, formatter SlideFormatter, renderer *deck.Renderer,
	workRoot string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:     router,
		port:       port,
		logger:     logger,
		chat:       chatSvc,
		personas:   personas,
		curriculum: pipeline,
		formatter:  formatter,
		renderer:   renderer,
		workRoot:   workRoot,
	}

	router.Get("/health", s.health)
	router.Post("/assistantChat", s.assistantChat)
	router.Post("/createAssistant", s.createAssistant)
	router.Post("/createCourseCurriculum", s.createCourseCurriculum)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Prompt        string `json:"prompt"`
	ThreadID      string `json:"threadId"`
	AssistantName string `json:"assistantName"`
	UID           string `json:"uid"`
}

func (s *Server) assistantChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	resp, err := s.chat.Respond(r.Context(), chat.Request{
		Prompt:        req.Prompt,
		ThreadID:      req.ThreadID,
		AssistantName: req.AssistantName,
		UserID:        req.UID,
	})
	if err != nil {
		s.internalError(w, "assistantChat", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type createAssistantRequest struct {
	AssistantID string              `json:"assistantId"`
	Description string              `json:"description"`
	Files       []persona.FileInput `json:"files"`
	Prompt      string              `json:"prompt"`
}

func (s *Server) createAssistant(w http.ResponseWriter, r *http.Request) {
	var req createAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	p, err := s.personas.Create(r.Context(), req.AssistantID, req.Description, req.Prompt, req.Files)
	if err != nil {
		s.internalError(w, "createAssistant", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assistant": p})
}

type curriculumResponse struct {
	Curriculum string `json:"curriculum"`
	LessonPlan string `json:"lessonPlan"`
}

func (s *Server) createCourseCurriculum(w http.ResponseWriter, r *http.Request) {
	var req curriculum.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	dir, err := workdir.New(s.workRoot)
	if err != nil {
		s.internalError(w, "createCourseCurriculum", err)
		return
	}

	result, err := s.curriculum.Run(r.Context(), req, dir)
	if err != nil {
		s.internalError(w, "createCourseCurriculum", err)
		return
	}

	if result.SlidePlan != "" {
		slides, err := s.formatter.FormatForSlides(r.Context(), result.SlidePlan)
		if err != nil {
			s.internalError(w, "createCourseCurriculum", err)
			return
		}
		if err := s.renderer.Render(r.Context(), slides, dir.Path(deck.DeckFileName)); err != nil {
			s.internalError(w, "createCourseCurriculum", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, curriculumResponse{
		Curriculum: result.Curriculum,
		LessonPlan: result.LessonPlan,
	})
}

func (s *Server) internalError(w http.ResponseWriter, handler string, err error) {
	s.logger.Error("request failed", "handler", handler, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal Server Error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
