package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/liver-risk-server/internal/domain"
	"github.com/liver-risk-server/internal/middleware"
	"github.com/liver-risk-server/internal/service"
)

const version = "1.0.0"

// sessionID reads the session cookie; an empty id starts a new session.
func (s *Server) sessionID(c *gin.Context) string {
	id, err := c.Cookie(s.cfg.Session.CookieName)
	if err != nil {
		return ""
	}
	return id
}

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.Session.CookieName, id, int(s.cfg.Session.TTL.Seconds()), "/", "", s.cfg.Session.SecureCookie, true)
}

func (s *Server) render(c *gin.Context, status int, data pageData) {
	data.CorrelationID = c.GetString(middleware.CorrelationIDKey)
	c.HTML(status, "index.html", data)
}

// handleHealth reports liveness and whether the classifier is in memory
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	if !s.service.ModelLoaded() {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"model_loaded": s.service.ModelLoaded(),
		"sessions":     s.sessions.Len(),
		"timestamp":    time.Now().UTC(),
		"version":      version,
	})
}

// handleIndex renders the form from the session record with its current warnings
func (s *Server) handleIndex(c *gin.Context) {
	id, record := s.sessions.Get(s.sessionID(c))
	s.setSessionCookie(c, id)

	s.render(c, http.StatusOK, newPageData(&record, s.service.Validate(&record), nil))
}

// handlePredictForm stores the submitted values in the session and runs the prediction
func (s *Server) handlePredictForm(c *gin.Context) {
	raw := formInput{}
	for _, f := range domain.NumericFields {
		if v, ok := c.GetPostForm(string(f)); ok {
			raw[f] = v
		}
	}
	options := map[domain.CategoricalField]string{}
	for _, f := range domain.CategoricalFields {
		if v, ok := c.GetPostForm(string(f)); ok {
			options[f] = v
		}
	}

	var (
		failures parseFailures
		bindErr  error
	)
	id, record := s.sessions.Apply(s.sessionID(c), func(r *domain.PatientRecord) {
		failures, bindErr = applyForm(r, raw, options)
	})
	s.setSessionCookie(c, id)

	validation := validateWithFailures(s.service, &record, failures)
	data := newPageData(&record, validation, raw)

	if bindErr != nil {
		appErr := asAppError(bindErr)
		data.Error = appErr.Message
		s.render(c, statusFor(appErr.Code), data)
		return
	}

	outcome, err := s.service.PredictWithValidation(c.Request.Context(), &record, validation)
	if err != nil {
		appErr := asAppError(err)
		data.Error = appErr.Message
		s.render(c, statusFor(appErr.Code), data)
		return
	}

	data.Outcome = outcome
	s.render(c, http.StatusOK, data)
}

// handleRefresh resets the session record to the form defaults
func (s *Server) handleRefresh(c *gin.Context) {
	id := s.sessions.Reset(s.sessionID(c))
	s.setSessionCookie(c, id)
	c.Redirect(http.StatusSeeOther, "/")
}

// categoricalField describes an option field for API clients
type categoricalField struct {
	Field   domain.CategoricalField `json:"field"`
	Label   string                  `json:"label"`
	Options []string                `json:"options"`
	Default string                  `json:"default"`
}

// handleFields returns the form hints: numeric ranges and categorical options
func (s *Server) handleFields(c *gin.Context) {
	defaults := domain.NewPatientRecord()
	fields := make([]categoricalField, 0, len(domain.CategoricalFields))
	for _, f := range domain.CategoricalFields {
		fields = append(fields, categoricalField{
			Field:   f,
			Label:   f.Label(),
			Options: f.Options(),
			Default: defaults.Categorical(f),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"numeric":     service.NumericRanges(),
		"categorical": fields,
	})
}

// bindRecord decodes a JSON patient record, defaulting omitted option fields.
func (s *Server) bindRecord(c *gin.Context) (*domain.PatientRecord, bool) {
	var record domain.PatientRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		s.respondError(c, domain.WrapAppError(domain.ErrInvalidInput, "Invalid patient record.", err))
		return nil, false
	}
	record.ApplyDefaults()
	return &record, true
}

// handleValidate returns the range checks of a JSON record
func (s *Server) handleValidate(c *gin.Context) {
	record, ok := s.bindRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.service.Validate(record))
}

// handlePredictJSON runs the prediction pipeline on a JSON record
func (s *Server) handlePredictJSON(c *gin.Context) {
	record, ok := s.bindRecord(c)
	if !ok {
		return
	}

	outcome, err := s.service.Predict(c.Request.Context(), record)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) respondError(c *gin.Context, err error) {
	appErr := asAppError(err)
	appErr.RequestID = c.GetString(middleware.CorrelationIDKey)
	status := statusFor(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"correlation_id": appErr.RequestID,
			"code":           appErr.Code,
		}).Error("Request failed")
	}
	_ = c.Error(err)
	c.JSON(status, appErr)
}
