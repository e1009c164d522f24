// Package server exposes the feedback pipeline over HTTP for the web
// dashboard.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tutorfeed/internal/feedback"
	"tutorfeed/internal/store"
)

// Server wires the store and the feedback service into HTTP handlers.
type Server struct {
	store *store.Store
	svc   *feedback.Service
}

// New creates a Server.
func New(st *store.Store, svc *feedback.Service) *Server {
	return &Server{store: st, svc: svc}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	api := router.Group("/api")
	{
		api.POST("/students", s.createStudent)
		api.GET("/students", s.listStudents)
		api.GET("/students/:id", s.getStudent)
		api.POST("/students/:id/sessions", s.recordSession)
		api.GET("/students/:id/sessions", s.listSessions)
		api.GET("/students/:id/trend", s.getTrend)
		api.POST("/students/:id/feedback", s.generateFeedback)
		api.GET("/students/:id/feedbacks", s.listFeedbacks)
	}

	return router
}

type createStudentRequest struct {
	Name  string `json:"name" binding:"required"`
	Grade string `json:"grade" binding:"required"`
}

func (s *Server) createStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and grade are required"})
		return
	}

	id, err := s.store.Students().Create(c.Request.Context(), "", req.Name, req.Grade)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create student"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name, "grade": req.Grade})
}

func (s *Server) listStudents(c *gin.Context) {
	students, err := s.store.Students().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list students"})
		return
	}
	out := make([]gin.H, 0, len(students))
	for _, st := range students {
		out = append(out, gin.H{"id": st.ID, "name": st.Name, "grade": st.Grade})
	}
	c.JSON(http.StatusOK, gin.H{"students": out})
}

func (s *Server) getStudent(c *gin.Context) {
	st, ok := s.lookupStudent(c)
	if !ok {
		return
	}
	n, err := s.store.Sessions().Count(c.Request.Context(), st.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": st.ID, "name": st.Name, "grade": st.Grade, "sessions": n})
}

type recordSessionRequest struct {
	Date          string `json:"date" binding:"required"`
	Attitude      int    `json:"attitude" binding:"required"`
	Understanding int    `json:"understanding" binding:"required"`
	Homework      int    `json:"homework" binding:"required"`
	QA            int    `json:"qa" binding:"required"`
	Progress      string `json:"progress"`
	Memo          string `json:"memo"`
}

func (s *Server) recordSession(c *gin.Context) {
	st, ok := s.lookupStudent(c)
	if !ok {
		return
	}

	var req recordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session payload"})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	for name, v := range map[string]int{
		"attitude": req.Attitude, "understanding": req.Understanding, "qa": req.QA,
	} {
		if v < 1 || v > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be between 1 and 5"})
			return
		}
	}
	if (req.Homework < 1 || req.Homework > 5) && req.Homework != feedback.ScoreNotApplicable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "homework must be 1-5, or 99 for no assignment"})
		return
	}

	id, err := s.store.Sessions().Append(c.Request.Context(), st.ID, feedback.Session{
		Date:          date,
		Attitude:      req.Attitude,
		Understanding: req.Understanding,
		Homework:      req.Homework,
		QA:            req.QA,
		Progress:      req.Progress,
		Memo:          req.Memo,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (s *Server) listSessions(c *gin.Context) {
	st, ok := s.lookupStudent(c)
	if !ok {
		return
	}
	rows, err := s.store.Sessions().HistoryRows(c.Request.Context(), st.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sessions"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"id":            r.ID,
			"date":          r.Date.Format("2006-01-02"),
			"attitude":      r.Attitude,
			"understanding": r.Understanding,
			"homework":      r.Homework,
			"qa":            r.QA,
			"progress":      r.Progress,
			"memo":          r.Memo,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) getTrend(c *gin.Context) {
	st, ok := s.lookupStudent(c)
	if !ok {
		return
	}
	history, err := s.store.Sessions().History(c.Request.Context(), st.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sessions"})
		return
	}

	trend, err := feedback.ComputeTrend(history)
	if errors.Is(err, feedback.ErrInsufficientHistory) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute trend"})
		return
	}

	metrics := gin.H{}
	for _, m := range feedback.Metrics {
		mt := trend.Metrics[m]
		if mt.Err != nil {
			metrics[string(m)] = gin.H{"error": mt.Err.Error()}
			continue
		}
		metrics[string(m)] = gin.H{
			"current":   mt.Current,
			"previous":  mt.Previous,
			"change":    mt.Change,
			"direction": mt.Direction.Symbol(),
		}
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

func (s *Server) generateFeedback(c *gin.Context) {
	st, ok := s.lookupStudent(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	rows, err := s.store.Sessions().HistoryRows(ctx, st.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sessions"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "student has no recorded sessions"})
		return
	}

	current := rows[len(rows)-1]
	past := make([]feedback.Session, 0, len(rows)-1)
	for _, r := range rows[:len(rows)-1] {
		past = append(past, r.Session())
	}

	raw, err := s.svc.Generate(ctx, st.Info(), current.Session(), past)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	sections := feedback.ParseSections(raw)

	id, err := s.store.Feedbacks().Save(ctx, current.ID, raw, sections)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          id,
		"session_id":  current.ID,
		"improvement": sections.Improvement,
		"attitude":    sections.Attitude,
		"overall":     sections.Overall,
		"degraded":    sections.Degraded,
	})
}

func (s *Server) listFeedbacks(c *gin.Context) {
	st, ok := s.lookupStudent(c)
	if !ok {
		return
	}
	rows, err := s.store.Feedbacks().ListByStudent(c.Request.Context(), st.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedbacks"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"id":          r.ID,
			"session_id":  r.SessionID,
			"improvement": r.Improvement,
			"attitude":    r.Attitude,
			"overall":     r.Overall,
			"degraded":    r.Degraded,
			"created_at":  r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": out})
}

// lookupStudent resolves the :id path parameter. On failure it writes
// the error response and returns ok=false.
func (s *Server) lookupStudent(c *gin.Context) (*store.Student, bool) {
	st, err := s.store.Students().Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load student"})
		return nil, false
	}
	return st, true
}
