package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushub/coursecat/internal/catalog"
	"github.com/campushub/coursecat/internal/infrastructure/logging"
	"github.com/campushub/coursecat/internal/infrastructure/monitoring"
	"github.com/campushub/coursecat/internal/infrastructure/tracing"
)

// Version is reported by the root and health endpoints.
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	store   *catalog.Store
	tracer  *tracing.Tracer
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(store *catalog.Store, tracer *tracing.Tracer, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	return &Handlers{
		store:   store,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": h.tracer.Service(),
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"version":      Version,
		"catalog_size": h.store.Count(c.Request.Context()),
	})
}

// Catalog lists every course in the catalog
func (h *Handlers) Catalog(c *gin.Context) {
	ctx, span := h.tracer.StartSpan(c.Request.Context(), "course_catalog",
		tracing.WithKind(tracing.KindServer))
	defer span.End()

	span.SetAttribute("http.method", c.Request.Method)
	span.SetAttribute("http.url", c.Request.URL.String())
	span.SetAttribute("user.ip", c.ClientIP())

	courses := h.store.Load(ctx)
	span.SetAttribute("course.count", len(courses))
	span.SetAttribute("http.status_code", http.StatusOK)

	h.metrics.SetCatalogSize(len(courses))

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"count":   len(courses),
	})
}

// AddCourseForm describes the add-course submission schema
func (h *Handlers) AddCourseForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": []string{
			"code", "name", "instructor", "semester", "schedule",
			"classroom", "prerequisites", "grading", "description",
		},
		"required": []string{"code", "name", "instructor"},
		"method":   http.MethodPost,
		"action":   "/add_course",
	})
}

// AddCourse appends a submitted course to the catalog. The body may be
// form-encoded or JSON. Storage failures are logged and recorded on the
// span but the client is still redirected; persistence problems are an
// operator concern.
func (h *Handlers) AddCourse(c *gin.Context) {
	ctx, span := h.tracer.StartSpan(c.Request.Context(), "add_course",
		tracing.WithKind(tracing.KindServer))
	defer span.End()

	span.SetAttribute("http.method", c.Request.Method)
	span.SetAttribute("http.url", c.Request.URL.String())
	span.SetAttribute("user.ip", c.ClientIP())

	var course catalog.Course
	if err := c.ShouldBind(&course); err != nil {
		span.RecordError(err)
		span.SetAttribute("http.status_code", http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if missing := course.MissingFields(); len(missing) > 0 {
		span.SetStatus(tracing.StatusError, "missing required fields")
		span.SetAttribute("http.status_code", http.StatusBadRequest)
		span.SetAttribute("course.missing_fields", fmt.Sprintf("%v", missing))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "missing required fields",
			"missing_fields": missing,
		})
		return
	}

	span.SetAttribute("course.code", course.Code)
	span.SetAttribute("course.name", course.Name)

	if err := h.store.Append(ctx, course); err != nil {
		h.logger.Error("course not persisted",
			zap.String("code", course.Code), zap.Error(err))
	} else {
		h.metrics.RecordCourseAdded()
		h.metrics.SetCatalogSize(h.store.Count(ctx))
	}

	span.SetAttribute("http.status_code", http.StatusFound)
	c.Redirect(http.StatusFound, "/catalog")
}

// CourseDetails looks one course up by code. An unknown code redirects
// back to the catalog instead of returning an error page.
func (h *Handlers) CourseDetails(c *gin.Context) {
	ctx, span := h.tracer.StartSpan(c.Request.Context(), "course_details",
		tracing.WithKind(tracing.KindServer))
	defer span.End()

	code := c.Param("code")
	span.SetAttribute("http.method", c.Request.Method)
	span.SetAttribute("http.url", c.Request.URL.String())
	span.SetAttribute("user.ip", c.ClientIP())

	course, ok := h.store.FindByCode(ctx, code)
	if !ok {
		span.RecordError(fmt.Errorf("course not found: %s", code))
		span.SetAttribute("http.status_code", http.StatusNotFound)
		c.Redirect(http.StatusFound, "/catalog")
		return
	}

	span.SetAttribute("http.status_code", http.StatusOK)
	span.SetAttribute("course.code", course.Code)
	span.SetAttribute("course.name", course.Name)

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// ManualTrace records a span by hand, the worked example of the span API
func (h *Handlers) ManualTrace(c *gin.Context) {
	_, span := h.tracer.StartSpan(c.Request.Context(), "manual-span",
		tracing.WithKind(tracing.KindServer))
	defer span.End()

	span.SetAttribute("http.method", c.Request.Method)
	span.SetAttribute("http.url", c.Request.URL.String())
	span.SetAttribute("http.status_code", http.StatusOK)
	span.AddEvent("Processing request", nil)

	c.String(http.StatusOK, "Manual trace recorded!")
}

// AutoInstrumented opens no span of its own; the tracing middleware
// covers it with the per-request server span.
func (h *Handlers) AutoInstrumented(c *gin.Context) {
	c.String(http.StatusOK, "This route is auto-instrumented!")
}

// Contact is one department contact record.
type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// Contacts returns the registrar's static contact list
func (h *Handlers) Contacts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"contacts": []Contact{
			{Name: "Registrar Office", Role: "enrollment", Email: "registrar@campushub.edu"},
			{Name: "Academic Advising", Role: "advising", Email: "advising@campushub.edu"},
			{Name: "IT Helpdesk", Role: "support", Email: "helpdesk@campushub.edu"},
		},
	})
}
