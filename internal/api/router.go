// internal/api/router.go
package api

import "net/http"

// RegisterRoutes wires all API endpoints onto the mux. Everything except
// registration, login and the health check sits behind the auth middleware.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Public
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)

	authed := func(fn http.HandlerFunc) http.Handler {
		return h.Authenticate(fn)
	}
	professor := func(fn http.HandlerFunc) http.Handler {
		return h.Authenticate(h.RequireProfessor(fn))
	}

	// Account
	mux.Handle("GET /me", authed(h.me))

	// Practice content
	mux.Handle("GET /questions", authed(h.listQuestions))
	mux.Handle("GET /questions/next", authed(h.nextQuestion))
	mux.Handle("GET /cases", authed(h.listCases))
	mux.Handle("GET /cases/next", authed(h.nextCase))
	mux.Handle("GET /cases/{caseID}", authed(h.getCase))
	mux.Handle("POST /cases/{caseID}/exams", authed(h.requestExams))

	// Submissions and progress
	mux.Handle("POST /submissions", authed(h.submit))
	mux.Handle("GET /submissions", authed(h.listSubmissions))
	mux.Handle("GET /progress", authed(h.getProgress))

	// Tutor chat
	mux.Handle("POST /chat", authed(h.chat))
	mux.Handle("GET /chat/history", authed(h.chatHistory))

	// Analytics
	mux.Handle("GET /analytics/me", authed(h.myStats))
	mux.Handle("GET /analytics/cohort", professor(h.cohort))
	mux.Handle("GET /analytics/cohort.xlsx", professor(h.cohortReport))
	mux.Handle("GET /analytics/students/{userID}", professor(h.studentStats))

	// Professor administration
	mux.Handle("GET /admin/export", professor(h.exportData))
	mux.Handle("GET /admin/catalog", professor(h.exportCatalog))
	mux.Handle("POST /admin/catalog/import", professor(h.importCatalog))
	mux.Handle("POST /admin/digest", professor(h.triggerDigest))
	mux.Handle("DELETE /admin/users/{userID}/data", professor(h.purgeUserData))
}
