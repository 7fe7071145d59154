package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/conorfennell/cardfold/internal/app"
	"github.com/conorfennell/cardfold/internal/domain"
	"github.com/conorfennell/cardfold/internal/library"
	"github.com/conorfennell/cardfold/internal/study"
)

//go:embed all:templates
var templateFiles embed.FS

// Server renders the three screens over the application controller. It
// only reads controller state and posts user actions back; the
// controller stays the single source of truth.
type Server struct {
	ctrl      *app.Controller
	router    *http.ServeMux
	templates *template.Template
	logger    *slog.Logger
}

// NewServer creates and configures a new server.
func NewServer(ctrl *app.Controller, logger *slog.Logger) (*Server, error) {
	tpl, err := template.New("").Funcs(template.FuncMap{
		"add1": func(n int) int { return n + 1 },
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		ctrl:      ctrl,
		router:    http.NewServeMux(),
		templates: tpl,
		logger:    logger,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	s.router.HandleFunc("POST /folders", s.handleCreateFolder)
	s.router.HandleFunc("POST /folders/{id}/select", s.handleSelectFolder)
	s.router.HandleFunc("POST /folders/{id}/delete", s.handleDeleteFolder)
	s.router.HandleFunc("POST /back", s.handleBack)

	s.router.HandleFunc("POST /cards", s.handleCreateCard)
	s.router.HandleFunc("POST /cards/{id}/delete", s.handleDeleteCard)

	s.router.HandleFunc("POST /study/start", s.handleStudy(func() error { return s.ctrl.StartStudy() }))
	s.router.HandleFunc("POST /study/reveal", s.handleStudy(s.ctrl.Reveal))
	s.router.HandleFunc("POST /study/hide", s.handleStudy(s.ctrl.Hide))
	s.router.HandleFunc("POST /study/grade", s.handleGrade)
	s.router.HandleFunc("POST /study/advance", s.handleAdvance)
	s.router.HandleFunc("POST /study/restart", s.handleStudy(s.ctrl.RestartStudy))
	s.router.HandleFunc("POST /study/exit", func(w http.ResponseWriter, r *http.Request) {
		s.ctrl.ExitStudy()
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

// folderView pairs a folder with its derived card count for listing.
type folderView struct {
	domain.Folder
	CardCount int
}

type pageData struct {
	Screen  app.Screen
	Error   string
	Folders []folderView
	Cards   []domain.Card
	Study   app.StudyView
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, errMsg string) {
	data := pageData{
		Screen: s.ctrl.Screen(),
		Error:  errMsg,
	}

	switch data.Screen {
	case app.ScreenFolders:
		for _, f := range s.ctrl.Folders() {
			count, err := s.ctrl.CountCards(r.Context(), f.ID)
			if err != nil {
				s.logger.Error("failed to count cards", "folder_id", f.ID, "error", err)
			}
			data.Folders = append(data.Folders, folderView{Folder: f, CardCount: count})
		}
	case app.ScreenCards:
		data.Cards = s.ctrl.Cards()
	case app.ScreenStudy:
		view, ok := s.ctrl.Study()
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		data.Study = view
	}

	if err := s.templates.ExecuteTemplate(w, "index", data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.ctrl.Screen() == app.ScreenFolders {
		if err := s.ctrl.RefreshFolders(r.Context()); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	s.renderIndex(w, r, r.URL.Query().Get("error"))
}

// redirectOrReport sends the user back to the page, carrying
// recoverable validation failures as a message instead of a 500.
func (s *Server) redirectOrReport(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, library.ErrValidation), errors.Is(err, study.ErrEmptyDeck):
		http.Redirect(w, r, "/?error="+err.Error(), http.StatusSeeOther)
	case errors.Is(err, study.ErrInvalidTransition), errors.Is(err, app.ErrNoSession):
		s.logger.Warn("out-of-order study action", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		s.logger.Error("request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	_, err := s.ctrl.CreateFolder(r.Context(), r.PostFormValue("name"))
	s.redirectOrReport(w, r, err)
}

func (s *Server) handleSelectFolder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}
	s.redirectOrReport(w, r, s.ctrl.SelectFolder(r.Context(), id))
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}
	s.redirectOrReport(w, r, s.ctrl.DeleteFolder(r.Context(), id))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.ctrl.BackToFolders()
	if err := s.ctrl.RefreshFolders(r.Context()); err != nil {
		s.logger.Error("failed to refresh folders", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	_, err := s.ctrl.CreateCard(r.Context(), r.PostFormValue("front"), r.PostFormValue("back"))
	s.redirectOrReport(w, r, err)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid card ID", http.StatusBadRequest)
		return
	}
	s.redirectOrReport(w, r, s.ctrl.DeleteCard(r.Context(), id))
}

func (s *Server) handleStudy(op func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.redirectOrReport(w, r, op())
	}
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	correct := r.PostFormValue("correct") == "1"
	s.redirectOrReport(w, r, s.ctrl.Grade(r.Context(), correct))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	dir := study.Forward
	if r.PostFormValue("dir") == "back" {
		dir = study.Backward
	}
	s.redirectOrReport(w, r, s.ctrl.Advance(dir))
}
