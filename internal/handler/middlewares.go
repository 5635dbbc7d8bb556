package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// loader 根据 URL 中的 id 加载实体并放入 context
func (h *Handler) loader(key ContextKey, label string, load func(id int64) (any, error)) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := parseIDParam(r, "id")
			if err != nil {
				h.errorResponse(w, r, label+"ID无效")
				return
			}

			entity, err := load(id)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, label+"不存在")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), key, entity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (h *Handler) employee(next http.Handler) http.Handler {
	return h.loader(EmployeeCtx, "员工", func(id int64) (any, error) {
		return h.repository.GetEmployeeByID(id)
	})(next)
}

func (h *Handler) project(next http.Handler) http.Handler {
	return h.loader(ProjectCtx, "项目", func(id int64) (any, error) {
		return h.repository.GetProjectByID(id)
	})(next)
}

func (h *Handler) task(next http.Handler) http.Handler {
	return h.loader(TaskCtx, "任务", func(id int64) (any, error) {
		return h.repository.GetTaskByID(id)
	})(next)
}
