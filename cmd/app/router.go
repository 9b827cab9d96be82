package main

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	registerLimiter := newIPRateLimiter(app.config.RegisterLimit, time.Duration(app.config.RegisterWindowMin)*time.Minute)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.rateLimit(registerLimiter, app.registerUserHandler))
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/me", app.requireAuthUser(app.getMeHandler))

	// blog service
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.getAllBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))

	// engagement
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id/like", app.requireAuthUser(app.toggleLikeHandler))
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id/save", app.requireAuthUser(app.toggleSaveHandler))

	// comment service
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/comments", app.requireAuthUser(app.addCommentHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPut, "/v1/comments/:id", app.requireAuthUser(app.editCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireAuthUser(app.deleteCommentHandler))

	// admin overrides
	router.HandlerFunc(http.MethodPut, "/v1/admin/users/:id/block", app.requireAdmin(app.toggleBlockUserHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/admin/blogs/:id", app.requireAdmin(app.adminDeleteBlogHandler))
	router.HandlerFunc(http.MethodPut, "/v1/admin/blogs/:id/feature", app.requireAdmin(app.setFeaturedHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/admin/comments/:id", app.requireAdmin(app.adminDeleteCommentHandler))

	return app.recoverPanic(app.logRequest(app.authenticate(router)))
}
